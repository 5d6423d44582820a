// Command authd serves the admin authentication API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/moviebox/adminauth"
	"github.com/moviebox/adminauth/httpapi"
	"github.com/moviebox/adminauth/internal/config"
	"github.com/moviebox/adminauth/mail"
	"github.com/moviebox/adminauth/pgstore"
)

func main() {
	configPath := flag.String("config", "authd.yaml", "path to the YAML configuration file")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := run(*configPath, &logger); err != nil {
		logger.Fatal().Err(err).Msg("authd exited")
	}
}

func run(configPath string, logger *zerolog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	*logger = logger.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts := pgstore.NewAccountStore(pool)
	if err := accounts.Migrate(ctx); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	sender, err := mail.NewSMTPSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return err
	}

	engineCfg := adminauth.DefaultConfig()
	engineCfg.JWT.Secret = []byte(cfg.JWT.Secret)
	if cfg.JWT.AccessTTL > 0 {
		engineCfg.JWT.AccessTTL = cfg.JWT.AccessTTL
	}
	if cfg.JWT.RefreshTTL > 0 {
		engineCfg.JWT.RefreshTTL = cfg.JWT.RefreshTTL
	}
	if cfg.Redis.KeyPrefix != "" {
		engineCfg.Redis.KeyPrefix = cfg.Redis.KeyPrefix
	}
	if cfg.Redis.OpTimeout > 0 {
		engineCfg.Redis.OpTimeout = cfg.Redis.OpTimeout
	}
	engineCfg.Verification.LinkBase = cfg.Verification.LinkBase
	if cfg.Verification.MailSubject != "" {
		engineCfg.Verification.MailSubject = cfg.Verification.MailSubject
	}

	engine, err := adminauth.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithAccountProvider(accounts).
		WithMailSender(sender).
		WithLogger(*logger).
		Build()
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	handler := httpapi.NewHandler(engine, *logger)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("authd listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
