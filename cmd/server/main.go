package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/iliyamo/cinematch/internal/config"
	"github.com/iliyamo/cinematch/internal/database"
	"github.com/iliyamo/cinematch/internal/handler"
	"github.com/iliyamo/cinematch/internal/logging"
	"github.com/iliyamo/cinematch/internal/mail"
	"github.com/iliyamo/cinematch/internal/metrics"
	"github.com/iliyamo/cinematch/internal/middleware"
	"github.com/iliyamo/cinematch/internal/queue"
	"github.com/iliyamo/cinematch/internal/repository"
	"github.com/iliyamo/cinematch/internal/router"
	"github.com/iliyamo/cinematch/internal/service"
	"github.com/iliyamo/cinematch/internal/tmdb"
	"github.com/iliyamo/cinematch/internal/utils"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:          "cinematch",
		Short:        "CineMatch API server",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.DotEnv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to seed the environment from")
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.Setup("cinematch", version, cfg.LogFormat, os.Stdout)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.Setup("cinematch", version, cfg.LogFormat, os.Stdout)

			db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Redis is optional: the rate limiter and cache pass requests through
	// without it.
	var rdb *redis.Client
	if cfg.RateLimit.Enabled || cfg.Cache.Enabled {
		rdb, err = config.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting and caching disabled", "addr", cfg.Redis.Addr, "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	m := metrics.New()
	var wg sync.WaitGroup
	mailer, err := buildMailer(ctx, cfg, logger, &wg)
	if err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	codec := utils.NewSessionCodec(cfg.JWTSecret, cfg.SessionTTL)
	auth, err := service.NewAuthService(users, utils.NewHasher(cfg.BcryptCost), codec, mailer, service.AuthOptions{
		ClientURL:   cfg.ClientURL,
		ResetTTL:    cfg.ResetTTL,
		MailTimeout: cfg.MailTimeout,
	}, logger, m)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)

	guard := middleware.SessionGuard(codec)
	router.Global(e, logger, cfg.ClientURL, m)
	router.RegisterRoutes(e, db, m)
	router.RegisterAuth(e,
		handler.NewAuthHandler(auth, logger, cfg.IsProduction(), cfg.SessionTTL),
		middleware.NewTokenBucket(cfg.RateLimit, rdb, logger))
	router.RegisterMovies(e,
		handler.NewMovieHandler(tmdb.New(cfg.TMDBBaseURL, cfg.TMDBAPIKey, cfg.TMDBTimeout), repository.NewReviewRepo(db), logger),
		middleware.NewRedisCache(cfg.Cache, rdb, logger),
		guard)
	router.RegisterUsers(e,
		handler.NewUserHandler(users, repository.NewFavoriteRepo(db), repository.NewWatchlistRepo(db), logger),
		guard)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Env, "mail_transport", cfg.MailTransport)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	wg.Wait()
	return err
}

// buildMailer selects the reset-email transport. With amqp it also starts
// the queue consumer, which sends through SMTP, unless disabled.
func buildMailer(ctx context.Context, cfg config.Config, logger *slog.Logger, wg *sync.WaitGroup) (mail.Mailer, error) {
	smtpCfg := mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	}
	switch cfg.MailTransport {
	case "smtp":
		return mail.NewSMTPMailer(smtpCfg), nil
	case "amqp":
		if cfg.MailConsumer {
			var delivery mail.Mailer = mail.NewLogMailer(logger)
			if cfg.SMTPHost != "" {
				delivery = mail.NewSMTPMailer(smtpCfg)
			}
			consumer := queue.NewConsumer(cfg.RabbitMQURL, delivery, cfg.MailTimeout, logger)
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = consumer.Run(ctx)
				logger.Info("mail consumer stopped")
			}()
		}
		return queue.NewPublisher(cfg.RabbitMQURL), nil
	case "log", "":
		return mail.NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.MailTransport)
	}
}
