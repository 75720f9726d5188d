package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/waichatt/console/internal/config"
	"github.com/waichatt/console/internal/db"
	"github.com/waichatt/console/internal/exchange"
	"github.com/waichatt/console/internal/http/api/admin"
	"github.com/waichatt/console/internal/http/api/front"
	"github.com/waichatt/console/internal/ratelimit"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the console API server with database-backed components.
// It blocks until ctx is cancelled, then shuts down gracefully.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, _ := config.LoadJWTConfig(configPath)
	if jwtCfg.Secret == "" {
		return errors.New("jwt secret is not configured (set jwt.secret or env JWT_SECRET)")
	}

	exchangeCfg, _ := config.LoadExchangeConfig(configPath)
	metricsCfg, errMetrics := config.LoadMetricsConfig(configPath)
	if errMetrics != nil {
		return errMetrics
	}
	rateLimitCfg, _ := config.LoadRateLimitConfig(configPath)

	fx := exchange.NewWithHTTPClient(exchangeCfg.URL, &http.Client{Timeout: exchangeCfg.Timeout})
	limiter := ratelimit.NewManager(rateLimitCfg, nil, nil)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	admin.RegisterAdminRoutes(engine, conn, jwtCfg, fx)
	front.RegisterFrontRoutes(engine, conn, jwtCfg, metricsCfg, limiter)

	if port <= 0 {
		port = 8318
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting console with config=%s port=%d", configPath, port)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}
