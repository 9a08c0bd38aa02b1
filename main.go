package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pushkar2103/parkezy-new/config"
	"github.com/Pushkar2103/parkezy-new/cron"
	"github.com/Pushkar2103/parkezy-new/database"
	"github.com/Pushkar2103/parkezy-new/handlers"
	"github.com/Pushkar2103/parkezy-new/middleware"
	"github.com/Pushkar2103/parkezy-new/routes"
	"github.com/Pushkar2103/parkezy-new/services/tasks"
	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "parkezy",
		Short: "Parking slot reservation engine",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			config.LoadConfig()
			return config.Validate()
		},
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newSweepCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the release scheduler",
		RunE: func(*cobra.Command, []string) error {
			return serve()
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sweep holds|expired",
		Short:     "Run one release sweep and exit",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{tasks.KindHolds, tasks.KindExpired},
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.UsesMemoryStore() {
				return fmt.Errorf("a one-off sweep needs a shared store; STORE_DRIVER is memory")
			}
			a, err := buildApp(false)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			sweep := a.engine.SweepHeldTimeouts
			if args[0] == tasks.KindExpired {
				sweep = a.engine.SweepExpiredActive
			}
			report, err := sweep(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("sweep finished", zap.String("sweep", args[0]), zap.Any("report", report))
			return nil
		},
	}
}

func serve() error {
	a, err := buildApp(true)
	if err != nil {
		return err
	}
	logger := a.logger

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var mongoClient *mongo.Client
	if !config.UsesMemoryStore() {
		mongoClient = database.MongoClient
	}
	healthClients := append([]*redis.Client{}, a.redis...)

	stopSweeps, err := startSweeps(a)
	if err != nil {
		return err
	}
	if config.AppConfig.SweepMode == "asynq" {
		queue := utils.NewQueueClient()
		defer queue.Close()
		healthClients = append(healthClients, queue)
	}
	utils.StartHealthMonitor(ctx, healthClients, mongoClient)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	hb := handlers.NewHandlerBundle(
		handlers.NewAreaHandler(a.areas),
		handlers.NewBookingHandler(a.engine, logger.Named("http")),
		handlers.NewOwnerHandler(a.engine),
		handlers.NewPaymentHandler(a.engine, logger.Named("http")),
		handlers.HealthHandler,
	)
	routes.RegisterRoutes(router, hb)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stopSweeps()
	stop()
	a.close(shutdownCtx)

	logger.Sugar().Info("main: server stopped gracefully")
	return nil
}

// startSweeps launches the release scheduler selected by SWEEP_MODE and returns its stop function.
func startSweeps(a *app) (func(), error) {
	cfg := cron.WorkerConfig{
		HoldEvery:   config.AppConfig.HoldSweepInterval,
		ExpiryEvery: config.AppConfig.ExpirySweepInterval,
	}
	log := a.logger.Named("sweeps")

	switch config.AppConfig.SweepMode {
	case "asynq":
		if config.UsesMemoryStore() {
			return nil, fmt.Errorf("SWEEP_MODE=asynq needs a shared store; use local with STORE_DRIVER=memory")
		}
		w, err := cron.NewSweepWorker(cron.RedisOpt(), a.engine, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := w.Start(); err != nil {
			return nil, err
		}
		return w.Shutdown, nil
	case "local":
		ls, err := cron.NewLocalScheduler(a.engine, cfg, log)
		if err != nil {
			return nil, err
		}
		ls.Start()
		log.Info("in-process sweeps started",
			zap.Duration("holdEvery", cfg.HoldEvery), zap.Duration("expiryEvery", cfg.ExpiryEvery))
		return ls.Stop, nil
	case "off":
		log.Warn("release sweeps are disabled in this process")
		return func() {}, nil
	}
	return nil, fmt.Errorf("unknown SWEEP_MODE %q", config.AppConfig.SweepMode)
}
