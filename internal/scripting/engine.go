package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for game formula execution.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Load core scripts first, then feature scripts
	for _, sub := range []string{"core", "combat", "ai", "skill"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// CombatContext holds pre-packed data for a melee attack calculation.
type CombatContext struct {
	AttackerAccuracy int
	AttackerStrength int
	TargetDefense    int
}

// CombatResult is returned by the Lua combat function.
type CombatResult struct {
	IsHit  bool
	Damage int
}

// CalcMeleeAttack calls the Lua calc_melee_attack function. Falls back to a
// fixed-formula roll when no script provides one.
func (e *Engine) CalcMeleeAttack(ctx CombatContext) CombatResult {
	fn := e.vm.GetGlobal("calc_melee_attack")
	if fn == lua.LNil {
		return DefaultMeleeAttack(ctx)
	}

	t := e.vm.NewTable()

	atk := e.vm.NewTable()
	atk.RawSetString("accuracy", lua.LNumber(ctx.AttackerAccuracy))
	atk.RawSetString("strength", lua.LNumber(ctx.AttackerStrength))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("defense", lua.LNumber(ctx.TargetDefense))
	t.RawSetString("target", tgt)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_melee_attack error", zap.Error(err))
		return DefaultMeleeAttack(ctx)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_melee_attack returned non-table")
		return DefaultMeleeAttack(ctx)
	}

	return CombatResult{
		IsHit:  rt.RawGetString("is_hit") == lua.LTrue,
		Damage: int(lua.LVAsNumber(rt.RawGetString("damage"))),
	}
}

// AggroRadius calls Lua aggro_radius(npc_id, base_radius). Returns the base
// radius unchanged when no script overrides it.
func (e *Engine) AggroRadius(npcID int32, base int) int {
	fn := e.vm.GetGlobal("aggro_radius")
	if fn == lua.LNil {
		return base
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(npcID), lua.LNumber(base)); err != nil {
		e.log.Error("lua aggro_radius error", zap.Error(err), zap.Int32("npc_id", npcID))
		return base
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	r := int(lua.LVAsNumber(result))
	if r < 0 {
		return base
	}
	return r
}

// HarvestYield calls Lua harvest_yield(object_id, player_strength). Returns 1
// when no script provides a formula.
func (e *Engine) HarvestYield(objectID int32, strength int) int {
	fn := e.vm.GetGlobal("harvest_yield")
	if fn == lua.LNil {
		return 1
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(objectID), lua.LNumber(strength)); err != nil {
		e.log.Error("lua harvest_yield error", zap.Error(err))
		return 1
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n := int(lua.LVAsNumber(result))
	if n < 1 {
		return 1
	}
	return n
}

// DefaultMeleeAttack is the built-in formula used when scripts are absent.
// Attack always lands; damage scales with strength against defense.
func DefaultMeleeAttack(ctx CombatContext) CombatResult {
	dmg := 1 + (ctx.AttackerStrength+ctx.AttackerAccuracy/2-ctx.TargetDefense/2)/4
	if dmg < 1 {
		dmg = 1
	}
	return CombatResult{IsHit: true, Damage: dmg}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
