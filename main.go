package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/akozlov/reelcore/internal/api"
	"github.com/akozlov/reelcore/internal/audit"
	"github.com/akozlov/reelcore/internal/auth"
	"github.com/akozlov/reelcore/internal/config"
	"github.com/akozlov/reelcore/internal/control"
	"github.com/akozlov/reelcore/internal/domain"
	"github.com/akozlov/reelcore/internal/engine"
	"github.com/akozlov/reelcore/internal/freespin"
	"github.com/akozlov/reelcore/internal/jackpot"
	"github.com/akozlov/reelcore/internal/ledger"
	"github.com/akozlov/reelcore/internal/logger"
	"github.com/akozlov/reelcore/internal/record"
	"github.com/akozlov/reelcore/internal/reel"
	"github.com/akozlov/reelcore/internal/rng"
	"github.com/akozlov/reelcore/internal/sim"
)

func main() {
	root := &cobra.Command{
		Use:   "reelcore",
		Short: "Casino game outcome and payout engine",
	}

	var debug bool
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger.Init(&logger.Options{Level: level, TimeFormat: time.RFC3339})
	}

	root.AddCommand(serveCmd(), simulateCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gaming server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(logger.L(), config.Load())
		},
	}
}

func serve(log *slog.Logger, cfg *config.Config) error {
	math := reel.DefaultMath()
	if cfg.Game.MathPath != "" {
		var err error
		if math, err = reel.LoadMath(cfg.Game.MathPath); err != nil {
			return fmt.Errorf("failed to load reel math: %w", err)
		}
	}

	records, err := openStore(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer records.Close()

	auditSvc, err := audit.New(log, cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}
	defer auditSvc.Close()

	led := ledger.New()
	gate := control.NewSwitch()
	spins := freespin.NewTracker(math.FreeSpinCap, math.FreeSpinMultiplier)
	src := rng.NewCrypto()

	slotGame := domain.Game{
		ID: "g-slot", Name: "Fruit Reels", Type: "fruit-reels",
		MinBet: 5, MaxBet: 500, Enabled: true,
	}
	pool := jackpot.NewPool(jackpot.DefaultConfig(slotGame.MaxBet), cfg.Game.JackpotOpening)

	resolver := engine.NewResolver(led, records, auditSvc, gate, spins, src, log)
	resolver.Register(engine.NewSlotEngine(slotGame, math, pool))

	suits, err := engine.NewSuitsEngine(domain.Game{
		ID: "g-suits", Name: "Four Suits", Type: "four-suits",
		MinBet: 10, MaxBet: 1000, Enabled: true,
	}, engine.DefaultSuits())
	if err != nil {
		return err
	}
	resolver.Register(suits)

	authSvc := auth.New(&cfg.Auth, led, cfg.Game.OpeningBalance)
	handler := api.New(log, authSvc, led, records, resolver, pool, gate, auditSvc, src)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.SetupRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Server.Port, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func openStore(cfg *config.StoreConfig) (record.Store, error) {
	switch cfg.Backend {
	case "memory":
		return record.NewMemoryStore(), nil
	case "badger":
		return record.NewBadgerStore(cfg.Dir)
	case "postgres":
		return record.NewPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func simulateCmd() *cobra.Command {
	var (
		spins int
		bet   int64
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a return-to-player simulation of the slot math",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			math := reel.DefaultMath()
			if cfg.Game.MathPath != "" {
				var err error
				if math, err = reel.LoadMath(cfg.Game.MathPath); err != nil {
					return fmt.Errorf("failed to load reel math: %w", err)
				}
			}

			bar := pb.StartNew(spins)
			res, err := sim.Run(math, jackpot.DefaultConfig(500), sim.Options{
				Spins: spins,
				Bet:   bet,
				Seed:  seed,
				Progress: func(done, total int) {
					bar.SetCurrent(int64(done))
				},
			})
			if err != nil {
				return err
			}
			bar.Finish()

			fmt.Printf("spins:              %d (+%d free)\n", res.Spins, res.FreeSpins)
			fmt.Printf("total bet:          %d\n", res.TotalBet)
			fmt.Printf("total win:          %d\n", res.TotalWin)
			fmt.Printf("rtp:                %s\n", res.RTP)
			fmt.Printf("hit rate:           %.4f\n", res.HitRate)
			fmt.Printf("win stddev:         %.2f\n", res.WinStdDev)
			fmt.Printf("jackpot hits:       %d\n", res.JackpotHits)
			fmt.Printf("free spin triggers: %d\n", res.FreeSpinTriggers)
			return nil
		},
	}
	cmd.Flags().IntVar(&spins, "spins", 1_000_000, "number of paid spins")
	cmd.Flags().Int64Var(&bet, "bet", 100, "bet per spin in cents")
	cmd.Flags().Int64Var(&seed, "seed", 1, "rng seed")
	return cmd
}
