package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NpcDef holds static data for an NPC type loaded from YAML.
type NpcDef struct {
	NpcID       int32  `yaml:"npc_id"`
	Name        string `yaml:"name"`
	Hitpoints   int32  `yaml:"hitpoints"`
	Accuracy    int32  `yaml:"accuracy"`
	Strength    int32  `yaml:"strength"`
	Defense     int32  `yaml:"defense"`
	Magic       int32  `yaml:"magic"`
	Range       int32  `yaml:"range"`
	Aggressive  bool   `yaml:"aggressive"`
	AggroRange  int32  `yaml:"aggro_range"`
	WanderRange int32  `yaml:"wander_range"`

	// On-death drop (0 = drops nothing).
	DropItemID int32 `yaml:"drop_item_id"`
	DropAmount int32 `yaml:"drop_amount"`
}

// NpcSpawn defines where and how many NPCs to spawn at world load.
type NpcSpawn struct {
	NpcID        int32 `yaml:"npc_id"`
	Level        int16 `yaml:"level"`
	X            int32 `yaml:"x"`
	Y            int32 `yaml:"y"`
	Count        int   `yaml:"count"`
	RespawnTicks int   `yaml:"respawn_ticks"`
}

type npcListFile struct {
	Npcs []NpcDef `yaml:"npcs"`
}

type npcSpawnFile struct {
	Spawns []NpcSpawn `yaml:"spawns"`
}

// NpcTable holds all NPC definitions indexed by NpcID.
type NpcTable struct {
	defs map[int32]*NpcDef
}

// LoadNpcTable loads NPC definitions from a YAML file.
func LoadNpcTable(path string) (*NpcTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc_list: %w", err)
	}
	var f npcListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse npc_list: %w", err)
	}
	t := &NpcTable{defs: make(map[int32]*NpcDef, len(f.Npcs))}
	for i := range f.Npcs {
		d := &f.Npcs[i]
		t.defs[d.NpcID] = d
	}
	return t, nil
}

// NewNpcTable builds a table from in-memory definitions (tests, tools).
func NewNpcTable(defs []NpcDef) *NpcTable {
	t := &NpcTable{defs: make(map[int32]*NpcDef, len(defs))}
	for i := range defs {
		d := &defs[i]
		t.defs[d.NpcID] = d
	}
	return t
}

// Get returns an NPC definition by id, or nil if not found.
func (t *NpcTable) Get(npcID int32) *NpcDef {
	return t.defs[npcID]
}

// Count returns the number of loaded definitions.
func (t *NpcTable) Count() int {
	return len(t.defs)
}

// LoadNpcSpawns loads spawn entries from a YAML file.
func LoadNpcSpawns(path string) ([]NpcSpawn, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc_spawns: %w", err)
	}
	var f npcSpawnFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse npc_spawns: %w", err)
	}
	return f.Spawns, nil
}
