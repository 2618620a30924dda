package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sahayakseva/backend/chat"
	"sahayakseva/backend/config"
	"sahayakseva/backend/controllers"
	"sahayakseva/backend/database"
	"sahayakseva/backend/identity"
	"sahayakseva/backend/logger"
	"sahayakseva/backend/metrics"
	"sahayakseva/backend/middlewares"
	"sahayakseva/backend/routes"
	"sahayakseva/backend/schemes"
	"sahayakseva/backend/store"
	"sahayakseva/backend/utils"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sahayak",
	Short: "Sahayak Seva welfare scheme backend",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, config.Load())
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the Postgres tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set")
		}
		if err := database.Connect(cmd.Context(), cfg.DatabaseURL); err != nil {
			return err
		}
		defer database.Close()
		return database.EnsureSchema(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(serveCmd, schemaCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	var accounts identity.AccountStore = identity.NewMemoryAccounts()
	if database.Pool != nil {
		accounts = identity.NewPostgresAccounts(database.Pool)
	}
	provider := identity.NewLocal(accounts, cfg.JWTSecret, cfg.SessionTTL, log)

	profiles, err := profileBackend(ctx, cfg)
	if err != nil {
		return err
	}

	var chats chat.Store = chat.NewMemoryStore()
	if cfg.ChatStore == "postgres" {
		if database.Pool == nil {
			return errors.New("CHAT_STORE=postgres needs DATABASE_URL")
		}
		chats = chat.NewPostgresStore(database.Pool)
	}

	mock, err := schemes.NewMock(cfg.MockLatency)
	if err != nil {
		return err
	}
	var svc schemes.Service = mock
	if cfg.GeminiAPIKey != "" {
		g, err := schemes.NewGemini(ctx, mock, utils.AIConfig{
			APIKey:          cfg.GeminiAPIKey,
			GenModel:        cfg.GeminiModel,
			Temperature:     cfg.GeminiTemperature,
			MaxOutputTokens: cfg.GeminiMaxTokens,
		})
		if err != nil {
			return err
		}
		defer g.Close()
		svc = g
		log.Info("assistant replies from gemini", zap.String("model", cfg.GeminiModel))
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(log), middlewares.CORS())
	routes.Register(r, &controllers.Deps{
		Cfg:      cfg,
		Auth:     provider,
		Profiles: profiles,
		Schemes:  svc,
		Chats:    chats,
		Metrics:  metrics.New(prometheus.DefaultRegisterer),
		Log:      log,
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := provider.Start(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func profileBackend(ctx context.Context, cfg config.Config) (store.KV, error) {
	switch cfg.ProfileStore {
	case "redis":
		client, err := store.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, errors.New("PROFILE_STORE=redis needs REDIS_URL")
		}
		return store.NewRedisKV(client), nil
	case "postgres":
		if database.Pool == nil {
			return nil, errors.New("PROFILE_STORE=postgres needs DATABASE_URL")
		}
		return store.NewPostgresKV(database.Pool), nil
	case "memory", "":
		return store.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown PROFILE_STORE %q", cfg.ProfileStore)
	}
}
