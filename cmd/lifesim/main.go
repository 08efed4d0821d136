package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hearthmod/attract/internal/config"
	"github.com/hearthmod/attract/internal/data"
	"github.com/hearthmod/attract/internal/engine"
	"github.com/hearthmod/attract/internal/persist"
	"github.com/hearthmod/attract/internal/rules"
	"github.com/hearthmod/attract/internal/scripting"
	"github.com/hearthmod/attract/internal/voxel"
	"github.com/hearthmod/attract/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ────────────────────────────────────────────────

func printBanner(name string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        hearthmod lifesim  v0.1.0          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     attraction lifecycle simulation       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mWorld:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", name, seed)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int64) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Simulation ─────────────────────────────────────────────────────

func run() error {
	cfgPath := "config/lifesim.toml"
	if p := os.Getenv("LIFESIM_CONFIG"); p != "" {
		cfgPath = p
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the TOML config")
	ticks := flag.Int64("ticks", 24000, "ticks to simulate; 0 runs until interrupted")
	realtime := flag.Bool("realtime", false, "pace ticks at the configured tick rate")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.WorldSeed)

	// 3. Open store and run migrations
	printSection("Storage")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := persist.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	printOK(fmt.Sprintf("%s store ready", cfg.Database.Backend))

	// 4. Load static tables
	printSection("Tables")
	profiles, err := data.LoadProfiles(filepath.Join(cfg.Engine.DataDir, "kind_profiles.yaml"))
	if err != nil {
		return fmt.Errorf("load kind profiles: %w", err)
	}
	printStat("Kind profiles", int64(profiles.Count()))
	entries, err := data.LoadAttractorList(filepath.Join(cfg.Engine.DataDir, "attractors.yaml"))
	if err != nil {
		return fmt.Errorf("load attractors: %w", err)
	}
	printStat("Attractors", int64(len(entries)))

	// 5. Scripts
	lua, err := scripting.NewEngine(cfg.Engine.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("init lua: %w", err)
	}
	defer lua.Close()
	printOK("Lua hooks loaded")

	// 6. Build world
	printSection("World")
	overworld := voxel.Generate(cfg.Database.WorldName, cfg.Server.WorldSeed, cfg.Terrain)
	universe := voxel.NewUniverse(overworld, rules.DeriveSeed(cfg.Server.WorldSeed, "entity-ids"))
	universe.AddWorld(voxel.NewFlat("nether", cfg.Terrain.Size, cfg.Terrain.BaseHeight, voxel.Stone), false)
	structures := voxel.NewStructures()

	eng, err := engine.New(engine.Options{
		Config:   cfg,
		Profiles: profiles,
		Host:     universe,
		Owners:   structures,
		Store:    store,
		Scripts:  lua,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	placed := 0
	for _, e := range entries {
		y, ok := overworld.SurfaceY(e.X, e.Z)
		if !ok {
			log.Warn("attractor site under water or outside the world, skipped",
				zap.Int64("attractor", int64(e.ID)), zap.Int("x", e.X), zap.Int("z", e.Z))
			continue
		}
		pos := world.Coord{X: e.X, Y: y, Z: e.Z}
		overworld.Build(pos)
		structures.Add(&voxel.Structure{ID: e.ID, Kind: e.Kind, Pos: pos, Activated: e.Activated})
		if err := eng.RegisterAttractor(e.ID, e.Kind, e.CapOverride); err != nil {
			return err
		}
		placed++
	}
	printStat("Structures built", int64(placed))

	if err := eng.Load(ctx); err != nil {
		return err
	}
	// The demo world is regenerated on every start, so restored rows point at
	// entities that no longer exist; the first prune sweep drops them.
	printStat("Tracked rows restored", int64(eng.State().Registry().Len()))
	printStat("Resume tick", eng.CurrentTick())
	fmt.Println()

	// 7. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	var tickC <-chan time.Time
	if *realtime {
		ticker := time.NewTicker(cfg.Engine.TickRate)
		defer ticker.Stop()
		tickC = ticker.C
	}

	printSection("Simulation")
	printReady(fmt.Sprintf("running %d ticks (tick: %s, realtime: %v)", *ticks, cfg.Engine.TickRate, *realtime))
	fmt.Println()

	wild := newWanderers(universe, overworld, eng, cfg.Enhancement.TargetEntityKind,
		rand.New(rand.NewSource(rules.DeriveSeed(cfg.Server.WorldSeed, "wanderers"))), log)
	start := eng.CurrentTick()
	step := func() {
		wild.tick(eng.CurrentTick())
		eng.Tick()
		universe.Step()
	}

loop:
	for *ticks == 0 || eng.CurrentTick()-start < *ticks {
		if tickC == nil {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal received", zap.String("signal", sig.String()))
				break loop
			default:
			}
			step()
			continue
		}
		select {
		case <-tickC:
			step()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			break loop
		}
	}

	// 8. Save and report
	if err := eng.Save(); err != nil {
		log.Error("final save failed", zap.Error(err))
	}
	report(eng, universe, structures)
	log.Info("simulation stopped", zap.Int64("tick", eng.CurrentTick()))
	return nil
}

func report(eng *engine.Engine, u *voxel.Universe, structures *voxel.Structures) {
	title := cases.Title(language.English)
	fmt.Println()
	printSection("Report")
	for _, r := range eng.Stats() {
		label := title.String(strings.ReplaceAll(string(r.Kind), "_", " "))
		fmt.Printf("  \033[1m%s\033[0m\n", label)
		printStat("  attractors", int64(r.Attractors))
		printStat("  tracked now", int64(r.Tracked))
		printStat("  live in world", int64(u.Count(r.Kind)))
		printStat("  spawned", r.Spawned)
		printStat("  stayed", r.Graduated)
		printStat("  left", r.Departed)
		printStat("  pruned", r.Pruned)
		printStat("  steered", r.Steered)
		printStat("  arrivals", r.Arrived)
		printStat("  search failures", r.SearchFailures)
		printStat("  create failures", r.CreateFailures)
	}
	residents := 0
	for _, a := range eng.State().Attractors() {
		if st, ok := structures.Get(a.ID); ok {
			residents += len(st.Joined)
		}
	}
	printStat("Residents joined", int64(residents))
	fmt.Println()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
