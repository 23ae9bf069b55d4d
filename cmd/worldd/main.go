package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mistveil/server/internal/config"
	"github.com/mistveil/server/internal/core/event"
	"github.com/mistveil/server/internal/core/fsm"
	coresys "github.com/mistveil/server/internal/core/system"
	"github.com/mistveil/server/internal/data"
	"github.com/mistveil/server/internal/engine"
	gonet "github.com/mistveil/server/internal/net"
	"github.com/mistveil/server/internal/net/packet"
	"github.com/mistveil/server/internal/persist"
	"github.com/mistveil/server/internal/scripting"
	"github.com/mistveil/server/internal/system"
	"github.com/mistveil/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, shardID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           Mistveil  worldd  v0.1.0        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mworld:\033[0m %s \033[90m(shard: %d)\033[0m\n\n", serverName, shardID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
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

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("MISTVEIL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	shardID := int16(cfg.Server.ShardID)

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ShardID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	db, err := persist.NewDB(bootCtx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(bootCtx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Create repositories
	accountRepo := persist.NewAccountRepo(db)
	playerRepo := persist.NewPlayerRepo(db)
	banRepo := persist.NewBanRepo(db)

	// 5. Load catalogs and populate the world
	printSection("data")

	worldState := world.NewState()

	itemTable, err := data.LoadItemTable("data/yaml/item_list.yaml")
	if err != nil {
		return fmt.Errorf("load item table: %w", err)
	}
	printStat("item templates", itemTable.Count())

	npcTable, err := data.LoadNpcTable("data/yaml/npc_list.yaml")
	if err != nil {
		return fmt.Errorf("load npc table: %w", err)
	}
	printStat("npc templates", npcTable.Count())

	npcSpawns, err := data.LoadNpcSpawns("data/yaml/npc_spawns.yaml")
	if err != nil {
		return fmt.Errorf("load npc spawns: %w", err)
	}

	itemSpawns, err := data.LoadItemSpawns("data/yaml/item_spawns.yaml")
	if err != nil {
		return fmt.Errorf("load item spawns: %w", err)
	}

	// Objects and shops are optional content: a world without trees or
	// merchants still runs.
	var objectTable *data.ObjectTable
	var objectSpawns []data.ObjectSpawn
	if _, statErr := os.Stat("data/yaml/object_list.yaml"); statErr == nil {
		objectTable, err = data.LoadObjectTable("data/yaml/object_list.yaml")
		if err != nil {
			return fmt.Errorf("load object table: %w", err)
		}
		objectSpawns, err = data.LoadObjectSpawns("data/yaml/object_spawns.yaml")
		if err != nil {
			return fmt.Errorf("load object spawns: %w", err)
		}
		printStat("object templates", objectTable.Count())
	}

	var shopTable *data.ShopTable
	if _, statErr := os.Stat("data/yaml/shop_list.yaml"); statErr == nil {
		shopTable, err = data.LoadShopTable("data/yaml/shop_list.yaml")
		if err != nil {
			return fmt.Errorf("load shop table: %w", err)
		}
		printStat("shops", shopTable.Count())
	}

	// 5a. Lua formula scripts, optional
	var luaEngine *scripting.Engine
	if _, statErr := os.Stat("scripts"); statErr == nil {
		luaEngine, err = scripting.NewEngine("scripts", log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		printOK("Lua scripts loaded")
	}

	// 6. Core kernel pieces
	bus := event.NewBus()
	machine := fsm.NewMachine()
	delays := system.NewDelayCoordinator(machine, log)
	out := engine.NewOutgoing()

	deps := &system.Deps{
		World:   worldState,
		Bus:     bus,
		FSM:     machine,
		Delays:  delays,
		Out:     out,
		Items:   itemTable,
		Npcs:    npcTable,
		Objects: objectTable,
		Lua:     luaEngine,
		Tuning:  system.TuningFromConfig(cfg.World),
		Log:     log,
	}

	// 7. Populate the world from the spawn lists
	groundSys := system.NewGroundItemSystem(deps)

	npcCount := spawnNpcs(worldState, npcTable, npcSpawns, log)
	printStat("npcs spawned", npcCount)

	itemSpawnCount := 0
	for _, sp := range itemSpawns {
		if groundSys.PlaceWorldSpawn(sp) != nil {
			itemSpawnCount++
		}
	}
	printStat("world item spawns", itemSpawnCount)

	if objectTable != nil {
		objCount := spawnObjects(worldState, objectTable, objectSpawns, log)
		printStat("objects spawned", objCount)
	}
	fmt.Println()

	// 8. Network server
	pktPerSec := 0
	if cfg.RateLimit.Enabled {
		pktPerSec = cfg.RateLimit.PacketsPerSecond
	}
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		pktPerSec,
		cfg.Network.WriteTimeout,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 9. Systems, in construction-dependency order; the runner sorts them
	// into phase order itself.
	registry := packet.NewRegistry(log)
	broadcaster := system.NewBroadcaster(deps)
	cleanupSys := system.NewCleanupSystem(deps, playerRepo, accountRepo, shardID)
	skillingSys := system.NewSkillingSystem(deps, groundSys)
	cleanupSys.BindSkilling(skillingSys)
	persistSys := system.NewPersistenceSystem(deps, playerRepo, shardID)
	inputSys := system.NewInputSystem(
		deps, netServer, registry,
		accountRepo, playerRepo, shardID,
		broadcaster, skillingSys, groundSys, cleanupSys,
		cfg.Network.MaxPacketsPerTick,
	)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	runner := coresys.NewRunner()
	runner.Register(inputSys)
	runner.Register(system.NewDeathSystem(deps, skillingSys, groundSys))
	runner.Register(system.NewDelaySystem(delays))
	runner.Register(system.NewAggroSystem(deps))
	runner.Register(system.NewPlayerMoveSystem(deps))
	runner.Register(system.NewPlayerCombatSystem(deps))
	runner.Register(system.NewNpcMoveSystem(deps, rng))
	runner.Register(system.NewNpcCombatSystem(deps))
	runner.Register(system.NewRespawnSystem(deps))
	runner.Register(system.NewEnvironmentSystem(deps))
	runner.Register(skillingSys)
	runner.Register(groundSys)
	runner.Register(system.NewDayNightSystem(deps))
	runner.Register(system.NewRegenSystem(deps))
	if shopTable != nil {
		runner.Register(system.NewShopSystem(deps, shopTable))
	}
	runner.Register(system.NewEnforceSystem(deps, banRepo, cleanupSys))
	runner.Register(system.NewOutputSystem(deps))
	runner.Register(persistSys)
	runner.Register(cleanupSys)

	// 10. Game loop until SIGINT/SIGTERM
	scheduler := engine.NewScheduler(runner, out, cfg.World.TickInterval, log)

	printSection("server ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.World.TickInterval))
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Run(ctx)

	// 11. Shutdown: stop accepting, then save everyone under the deadline.
	log.Info("shutdown signal received")
	netServer.Shutdown()

	saveCtx, saveCancel := context.WithTimeout(context.Background(), cfg.World.ShutdownDeadline)
	defer saveCancel()
	persistSys.SaveAll(saveCtx)

	log.Info("server stopped")
	return nil
}

// spawnNpcs creates NPC instances from the spawn list and adds them to world
// state.
func spawnNpcs(ws *world.State, npcTable *data.NpcTable, spawns []data.NpcSpawn, log *zap.Logger) int {
	total := 0
	for _, spawn := range spawns {
		def := npcTable.Get(spawn.NpcID)
		if def == nil {
			log.Warn("spawn references unknown npc", zap.Int32("npc_id", spawn.NpcID))
			continue
		}
		count := spawn.Count
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			n := &world.NpcInfo{
				ID:           world.NextNpcID(),
				DefID:        def.NpcID,
				Name:         def.Name,
				Level:        spawn.Level,
				X:            spawn.X,
				Y:            spawn.Y,
				SpawnLevel:   spawn.Level,
				SpawnX:       spawn.X,
				SpawnY:       spawn.Y,
				Stats:        npcStats(def),
				RespawnTicks: spawn.RespawnTicks,
			}
			ws.AddNpc(n)
			total++
		}
	}
	return total
}

func npcStats(def *data.NpcDef) world.Stats {
	return world.NewStats([world.StatCount]int32{
		world.StatHitpoints: def.Hitpoints,
		world.StatAccuracy:  def.Accuracy,
		world.StatStrength:  def.Strength,
		world.StatDefense:   def.Defense,
		world.StatMagic:     def.Magic,
		world.StatRange:     def.Range,
	})
}

// spawnObjects creates harvestable and scenery objects from the spawn list.
func spawnObjects(ws *world.State, objectTable *data.ObjectTable, spawns []data.ObjectSpawn, log *zap.Logger) int {
	total := 0
	for _, spawn := range spawns {
		def := objectTable.Get(spawn.ObjectID)
		if def == nil {
			log.Warn("spawn references unknown object", zap.Int32("object_id", spawn.ObjectID))
			continue
		}
		o := &world.ObjectInfo{
			ID:           world.NextObjectID(),
			DefID:        def.ObjectID,
			Name:         def.Name,
			Level:        spawn.Level,
			X:            spawn.X,
			Y:            spawn.Y,
			Length:       def.Length,
			Width:        def.Width,
			Harvestable:  def.Harvestable,
			Resources:    def.Resources,
			MaxResources: def.Resources,
			RespawnTicks: spawn.RespawnTicks,
		}
		ws.AddObject(o)
		total++
	}
	return total
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
