package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/crimecore/server/internal/config"
	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/handler"
	"github.com/crimecore/server/internal/imaging"
	"github.com/crimecore/server/internal/loot"
	"github.com/crimecore/server/internal/persist"
	"github.com/crimecore/server/internal/sched"
	"github.com/crimecore/server/internal/scripting"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/transport/telegram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           Crimecore  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      survival RPG · Telegram server       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
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
	if p := os.Getenv("CRIMECORE_CONFIG"); p != "" {
		cfgPath = p
	}
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

	printBanner()

	// 3. Open the store and run migrations
	printSection("Storage")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeDB, err := persist.Open(ctx, cfg.Database, log)
	cancel()
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeDB()
	printOK("store ready (" + cfg.Database.Engine + ")")

	// 4. Load static data
	printSection("Data")

	catalog, err := data.LoadCatalog(cfg.Data.ItemsFile, cfg.Data.ImagesFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("item templates", catalog.Count())

	scripts, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer scripts.Close()
	printStat("story events", len(scripts.StoryEvents()))
	printStat("danger scenarios", len(scripts.DangerScenarios()))

	// 5. Load the world
	printSection("World")

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	state, err := store.LoadAll(loadCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}
	printStat("players", len(state.Players))
	printStat("clans", len(state.Clans))

	// 6. Telegram transport
	bot, err := telegram.New(cfg.Bot.Token, log)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	printOK("telegram connected as @" + bot.Username())

	// 7. Wire the engine
	loop := sched.NewLoop(log)
	timers := sched.NewTimers(loop)
	saver := persist.NewSaver(store, log)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	deps := &handler.Deps{
		Cfg:         cfg,
		Log:         log,
		World:       state,
		Catalog:     catalog,
		Loot:        loot.NewPicker(rng),
		Rng:         rng,
		Saver:       saver,
		Msg:         bot,
		Loop:        loop,
		Timers:      timers,
		Scripts:     scripts,
		Composer:    imaging.NewChain(log),
		Restart:     &processRestarter{log: log},
		Now:         time.Now,
		BotUsername: bot.Username(),
		Sessions:    handler.NewSessions(),
	}
	tickers := deps.StartSweepers()
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// 8. Run everything until a signal lands
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error {
		return bot.Run(gctx, func(ev transport.Event) {
			loop.Post(func() { deps.HandleEvent(ev) })
		})
	})
	g.Go(func() error { return runHealthServer(gctx, cfg.HTTP.Port, log) })
	if cfg.KeepAlive.URL != "" {
		g.Go(func() error { return runKeepAlive(gctx, cfg.KeepAlive, log) })
	}

	printReady(fmt.Sprintf("serving (health on :%d)", cfg.HTTP.Port))
	err = g.Wait()

	// 9. Flush the save chain before exit
	log.Info("shutting down, flushing state")
	loop.Drain()
	if saveErr := <-saver.Save(state.Clone()); saveErr != nil {
		log.Error("final save failed", zap.Error(saveErr))
	}
	saver.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runHealthServer(ctx context.Context, port int, log *zap.Logger) error {
	started := time.Now()
	mux := http.NewServeMux()
	ok := func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"status":"ok","uptime":"%s"}`, time.Since(started).Round(time.Second))
	}
	mux.HandleFunc("/", ok)
	mux.HandleFunc("/healthz", ok)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	log.Info("health server listening", zap.Int("port", port))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runKeepAlive pings the configured URL so free-tier hosts do not idle the
// process out.
func runKeepAlive(ctx context.Context, cfg config.KeepAliveConfig, log *zap.Logger) error {
	client := &http.Client{Timeout: 15 * time.Second}
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			resp, err := client.Get(cfg.URL)
			if err != nil {
				log.Debug("keepalive ping failed", zap.Error(err))
				continue
			}
			resp.Body.Close()
		}
	}
}

// processRestarter exits with a distinct code for /reboot (the supervisor
// brings the process back) and shells out to git for /pull.
type processRestarter struct {
	log *zap.Logger
}

func (r *processRestarter) Reboot() error {
	r.log.Warn("reboot requested")
	go func() {
		time.Sleep(500 * time.Millisecond)
		os.Exit(64)
	}()
	return nil
}

func (r *processRestarter) Pull() error {
	out, err := exec.Command("git", "pull", "--ff-only").CombinedOutput()
	if err != nil {
		return fmt.Errorf("git pull: %v: %s", err, strings.TrimSpace(string(out)))
	}
	r.log.Info("git pull", zap.String("output", strings.TrimSpace(string(out))))
	return nil
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
