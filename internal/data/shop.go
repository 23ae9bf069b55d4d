package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ShopStock is one baseline line in a shop inventory.
type ShopStock struct {
	ItemID   int32 `yaml:"item_id"`
	Baseline int32 `yaml:"baseline"` // stock drifts back toward this amount
}

// ShopDef describes one shop and its baseline stock.
type ShopDef struct {
	ShopID int32       `yaml:"shop_id"`
	Name   string      `yaml:"name"`
	Stock  []ShopStock `yaml:"stock"`
}

type shopListFile struct {
	Shops []ShopDef `yaml:"shops"`
}

// ShopTable holds all shop definitions indexed by ShopID.
type ShopTable struct {
	defs map[int32]*ShopDef
}

// LoadShopTable loads shop definitions from a YAML file.
func LoadShopTable(path string) (*ShopTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shop_list: %w", err)
	}
	var f shopListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse shop_list: %w", err)
	}
	t := &ShopTable{defs: make(map[int32]*ShopDef, len(f.Shops))}
	for i := range f.Shops {
		d := &f.Shops[i]
		t.defs[d.ShopID] = d
	}
	return t, nil
}

// NewShopTable builds a table from in-memory definitions (tests, tools).
func NewShopTable(defs []ShopDef) *ShopTable {
	t := &ShopTable{defs: make(map[int32]*ShopDef, len(defs))}
	for i := range defs {
		d := &defs[i]
		t.defs[d.ShopID] = d
	}
	return t
}

// Get returns a shop definition by id, or nil if not found.
func (t *ShopTable) Get(shopID int32) *ShopDef {
	return t.defs[shopID]
}

// Count returns the number of loaded definitions.
func (t *ShopTable) Count() int {
	return len(t.defs)
}

// All returns every shop definition. Iteration order is unspecified.
func (t *ShopTable) All() []*ShopDef {
	out := make([]*ShopDef, 0, len(t.defs))
	for _, d := range t.defs {
		out = append(out, d)
	}
	return out
}
