package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemDef holds static data for an item type loaded from YAML. Catalogs are
// loaded once at startup and never mutated.
type ItemDef struct {
	ItemID    int32  `yaml:"item_id"`
	Name      string `yaml:"name"`
	Stackable bool   `yaml:"stackable"`
	Noteable  bool   `yaml:"noteable"`
	Tradeable bool   `yaml:"tradeable"`
	Value     int32  `yaml:"value"`
}

type itemListFile struct {
	Items []ItemDef `yaml:"items"`
}

// ItemTable holds all item definitions indexed by ItemID.
type ItemTable struct {
	defs map[int32]*ItemDef
}

// LoadItemTable loads item definitions from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item_list: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item_list: %w", err)
	}
	t := &ItemTable{defs: make(map[int32]*ItemDef, len(f.Items))}
	for i := range f.Items {
		d := &f.Items[i]
		t.defs[d.ItemID] = d
	}
	return t, nil
}

// NewItemTable builds a table from in-memory definitions (tests, tools).
func NewItemTable(defs []ItemDef) *ItemTable {
	t := &ItemTable{defs: make(map[int32]*ItemDef, len(defs))}
	for i := range defs {
		d := &defs[i]
		t.defs[d.ItemID] = d
	}
	return t
}

// Get returns an item definition by id, or nil if not found.
func (t *ItemTable) Get(itemID int32) *ItemDef {
	return t.defs[itemID]
}

// Count returns the number of loaded definitions.
func (t *ItemTable) Count() int {
	return len(t.defs)
}

// ItemSpawn is a static world-spawn ground item. Its id is assigned in the
// catalog and must stay below the dynamic-drop partition (100000).
type ItemSpawn struct {
	ID           int32 `yaml:"id"`
	ItemID       int32 `yaml:"item_id"`
	Amount       int32 `yaml:"amount"`
	Level        int16 `yaml:"level"`
	X            int32 `yaml:"x"`
	Y            int32 `yaml:"y"`
	RespawnTicks int   `yaml:"respawn_ticks"`
}

type itemSpawnFile struct {
	Spawns []ItemSpawn `yaml:"item_spawns"`
}

// LoadItemSpawns loads world-spawn ground items from a YAML file.
func LoadItemSpawns(path string) ([]ItemSpawn, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item_spawns: %w", err)
	}
	var f itemSpawnFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item_spawns: %w", err)
	}
	return f.Spawns, nil
}
