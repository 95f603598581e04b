// Command ahbot runs the auction house bot: it keeps the venues stocked
// with listings and bids on what other participants put up.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/auctionbot/internal/api"
	"github.com/talgya/auctionbot/internal/catalog"
	"github.com/talgya/auctionbot/internal/config"
	"github.com/talgya/auctionbot/internal/engine"
	"github.com/talgya/auctionbot/internal/entropy"
	"github.com/talgya/auctionbot/internal/logging"
	"github.com/talgya/auctionbot/internal/persistence"
)

// saveEvery is how many ticks pass between saves of the tick counter.
const saveEvery = 60

func main() {
	configPath := flag.String("config", "configs/ahbot.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg.Logging))
	slog.Info("auction house bot starting", "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	// ── Catalog seed ──────────────────────────────────────────────────
	if cfg.Catalog.SeedFile != "" {
		seed, err := catalog.LoadSeed(cfg.Catalog.SeedFile)
		if err != nil {
			slog.Error("failed to read catalog seed", "error", err)
			os.Exit(1)
		}
		if err := seed.Import(ctx, db); err != nil {
			slog.Error("failed to import catalog seed", "error", err)
			os.Exit(1)
		}
		slog.Info("catalog seed imported", "items", len(seed.Items), "overrides", len(seed.Overrides))
	}

	// ── Bot ───────────────────────────────────────────────────────────
	rng := entropy.NewSeeded()
	if cfg.Bot.Seed != 0 {
		rng = entropy.New(cfg.Bot.Seed)
	}

	bot := engine.NewBot(db, rng, engine.Options{
		EnableSeller:         cfg.Bot.EnableSeller,
		EnableBuyer:          cfg.Bot.EnableBuyer,
		UseBuyPriceForSeller: cfg.Bot.UseBuyPriceForSeller,
		UseBuyPriceForBuyer:  cfg.Bot.UseBuyPriceForBuyer,
		Account:              cfg.Bot.Account,
		GUID:                 cfg.Bot.GUID,
		ItemsPerCycle:        cfg.Bot.ItemsPerCycle,
		AllowTwoSide:         cfg.Bot.AllowTwoSideInteraction,
	})
	if err := bot.Load(ctx); err != nil {
		slog.Error("failed to load bot", "error", err)
		os.Exit(1)
	}

	// Resume the tick counter from metadata.
	var startTick uint64
	if tickStr, err := db.GetMeta(ctx, "last_tick"); err == nil && tickStr != "" {
		if t, err := strconv.ParseUint(tickStr, 10, 64); err == nil {
			startTick = t
		}
	}

	saveTick := func(tick uint64) {
		if err := db.SaveMeta(context.Background(), "last_tick", strconv.FormatUint(tick, 10)); err != nil {
			slog.Error("tick save failed", "error", err)
		}
	}

	// ── Tick engine ───────────────────────────────────────────────────
	eng := engine.NewEngine(cfg.Bot.TickInterval, startTick)
	eng.SweepEvery = cfg.Bot.ExpirySweepTicks
	eng.OnTick = func(ctx context.Context, tick uint64) {
		bot.Tick(ctx, tick)
		if tick%saveEvery == 0 {
			saveTick(tick)
		}
	}
	eng.OnSweep = func(ctx context.Context, tick uint64) {
		if _, err := bot.Sweep(ctx); err != nil {
			slog.Warn("expiry sweep failed", "tick", tick, "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.Enabled {
		if cfg.API.AdminKey == "" {
			slog.Warn("AHBOT_ADMIN_KEY not set, admin POST endpoints will be disabled")
		}
		apiServer := &api.Server{
			Bot:       bot,
			Eng:       eng,
			Port:      cfg.API.Port,
			AdminKey:  cfg.API.AdminKey,
			RateLimit: cfg.API.RateLimit,
		}
		apiServer.Start(ctx)
	}

	if startTick > 0 {
		slog.Info("resuming", "tick", startTick)
	}

	eng.Run(ctx)

	// Let in-flight candidate queries finish before closing the database.
	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := bot.Wait(waitCtx); err != nil {
		slog.Warn("candidate queries still running at shutdown", "error", err)
	}
	cancel()

	saveTick(eng.Tick())
	slog.Info("auction house bot stopped", "tick", eng.Tick())
}
