package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObjectDef holds static data for a world-entity type (tree, rock, furnace).
type ObjectDef struct {
	ObjectID    int32  `yaml:"object_id"`
	Name        string `yaml:"name"`
	Length      uint8  `yaml:"length"` // footprint in tiles
	Width       uint8  `yaml:"width"`
	Harvestable bool   `yaml:"harvestable"`
	Resources   int32  `yaml:"resources"`    // initial resource counter
	YieldItemID int32  `yaml:"yield_item_id"` // item produced per harvest
}

// ObjectSpawn places one static world entity at world load.
type ObjectSpawn struct {
	ObjectID     int32 `yaml:"object_id"`
	Level        int16 `yaml:"level"`
	X            int32 `yaml:"x"`
	Y            int32 `yaml:"y"`
	RespawnTicks int   `yaml:"respawn_ticks"` // resource replenish window
}

type objectListFile struct {
	Objects []ObjectDef `yaml:"objects"`
}

type objectSpawnFile struct {
	Spawns []ObjectSpawn `yaml:"object_spawns"`
}

// ObjectTable holds all world-entity definitions indexed by ObjectID.
type ObjectTable struct {
	defs map[int32]*ObjectDef
}

// LoadObjectTable loads world-entity definitions from a YAML file.
func LoadObjectTable(path string) (*ObjectTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object_list: %w", err)
	}
	var f objectListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse object_list: %w", err)
	}
	t := &ObjectTable{defs: make(map[int32]*ObjectDef, len(f.Objects))}
	for i := range f.Objects {
		d := &f.Objects[i]
		t.defs[d.ObjectID] = d
	}
	return t, nil
}

// NewObjectTable builds a table from in-memory definitions (tests, tools).
func NewObjectTable(defs []ObjectDef) *ObjectTable {
	t := &ObjectTable{defs: make(map[int32]*ObjectDef, len(defs))}
	for i := range defs {
		d := &defs[i]
		t.defs[d.ObjectID] = d
	}
	return t
}

// Get returns a world-entity definition by id, or nil if not found.
func (t *ObjectTable) Get(objectID int32) *ObjectDef {
	return t.defs[objectID]
}

// Count returns the number of loaded definitions.
func (t *ObjectTable) Count() int {
	return len(t.defs)
}

// LoadObjectSpawns loads world-entity placements from a YAML file.
func LoadObjectSpawns(path string) ([]ObjectSpawn, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object_spawns: %w", err)
	}
	var f objectSpawnFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse object_spawns: %w", err)
	}
	return f.Spawns, nil
}
