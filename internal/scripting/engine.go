package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding tunable spawn formulas.
// Single-goroutine access only (game loop). Every hook is optional: when a
// script does not define it, callers get ok=false and use the Go formula.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "spawn"} {
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

// SpawnChanceContext is handed to calc_spawn_chance.
type SpawnChanceContext struct {
	Profile      string
	EntityKind   string
	BaseChance   float64
	TrackedTotal int // rows of this profile currently tracked, all attractors
	Attractors   int // registered attractors of this profile
}

// SpawnChance calls Lua calc_spawn_chance(ctx). The result is clamped to
// [0,1]. ok is false when the hook is missing or failed.
func (e *Engine) SpawnChance(ctx SpawnChanceContext) (float64, bool) {
	fn := e.vm.GetGlobal("calc_spawn_chance")
	if fn == lua.LNil {
		return 0, false
	}

	t := e.vm.NewTable()
	t.RawSetString("profile", lua.LString(ctx.Profile))
	t.RawSetString("entity_kind", lua.LString(ctx.EntityKind))
	t.RawSetString("base", lua.LNumber(ctx.BaseChance))
	t.RawSetString("tracked", lua.LNumber(ctx.TrackedTotal))
	t.RawSetString("attractors", lua.LNumber(ctx.Attractors))

	v, ok := e.callNumber("calc_spawn_chance", fn, t)
	if !ok {
		return 0, false
	}
	return clamp01(v), true
}

// EnhancementContext is handed to calc_enhancement.
type EnhancementContext struct {
	Bonus         int // qualifying attractors beyond the prerequisite
	Step          float64
	CapCount      int
	MaxMultiplier float64
}

// Enhancement calls Lua calc_enhancement(ctx). Results below 1.0 are raised
// to 1.0 and results above the configured maximum are capped.
func (e *Engine) Enhancement(ctx EnhancementContext) (float64, bool) {
	fn := e.vm.GetGlobal("calc_enhancement")
	if fn == lua.LNil {
		return 0, false
	}

	t := e.vm.NewTable()
	t.RawSetString("bonus", lua.LNumber(ctx.Bonus))
	t.RawSetString("step", lua.LNumber(ctx.Step))
	t.RawSetString("cap_count", lua.LNumber(ctx.CapCount))
	t.RawSetString("max_multiplier", lua.LNumber(ctx.MaxMultiplier))

	v, ok := e.callNumber("calc_enhancement", fn, t)
	if !ok {
		return 0, false
	}
	if v < 1.0 {
		v = 1.0
	}
	if ctx.MaxMultiplier > 0 && v > ctx.MaxMultiplier {
		v = ctx.MaxMultiplier
	}
	return v, true
}

// callNumber calls fn with one argument and reads a numeric result.
func (e *Engine) callNumber(name string, fn lua.LValue, arg lua.LValue) (float64, bool) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("func", name), zap.String("type", result.Type().String()))
		return 0, false
	}
	return float64(n), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
