package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/inventory-store/internal/adapter/handler"
	"github.com/rl1809/inventory-store/internal/adapter/handler/rpc"
	"github.com/rl1809/inventory-store/internal/adapter/storage"
	"github.com/rl1809/inventory-store/internal/config"
	"github.com/rl1809/inventory-store/internal/core/service"
	"github.com/rl1809/inventory-store/internal/logging"
	"github.com/rl1809/inventory-store/internal/port"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve bounded inventory counters over HTTP and gRPC",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	defaults := config.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a config file (yaml, toml or json)")
	flags.String("http-addr", defaults.HTTP.Addr, "HTTP listen address")
	flags.String("grpc-addr", defaults.GRPC.Addr, "gRPC listen address")
	flags.String("backend", defaults.Keyspace.Backend, "keyspace backend: memory or redis")
	flags.String("redis-addr", defaults.Redis.Addr, "Redis address")
	flags.String("snapshot-driver", defaults.Snapshot.Driver, "snapshot store: none, file, mysql or sqlite3")
	flags.String("snapshot-path", defaults.Snapshot.Path, "snapshot file for the file driver")
	flags.String("snapshot-dsn", defaults.Snapshot.DSN, "data source name for the mysql and sqlite3 drivers")
	flags.Duration("snapshot-interval", defaults.Snapshot.Interval, "time between snapshots")
	flags.String("log-level", defaults.Log.Level, "log level")

	for key, flag := range map[string]string{
		"http.addr":         "http-addr",
		"grpc.addr":         "grpc-addr",
		"keyspace.backend":  "backend",
		"redis.addr":        "redis-addr",
		"snapshot.driver":   "snapshot-driver",
		"snapshot.path":     "snapshot-path",
		"snapshot.dsn":      "snapshot-dsn",
		"snapshot.interval": "snapshot-interval",
		"log.level":         "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keyspace, closeKeyspace, err := openKeyspace(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeKeyspace()

	snapshots, closeSnapshots, err := openSnapshotStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	inventoryService := service.NewInventoryService(keyspace, snapshots, logger)

	// Redis persists on its own; snapshots only seed the in-memory keyspace.
	if snapshots != nil && cfg.Keyspace.Backend == config.BackendMemory {
		if _, err := inventoryService.Restore(ctx); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}

	var wg sync.WaitGroup
	snapshotCtx, stopSnapshots := context.WithCancel(context.Background())
	defer stopSnapshots()
	if snapshots != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inventoryService.RunSnapshotter(snapshotCtx, cfg.Snapshot.Interval)
		}()
		logger.Info("snapshotter started", zap.Duration("interval", cfg.Snapshot.Interval))
	}

	// gRPC server
	grpcServer := grpc.NewServer()
	rpc.RegisterInventoryServiceServer(grpcServer, handler.NewGRPCHandler(inventoryService))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP server
	mux := http.NewServeMux()
	handler.NewHTTPHandler(inventoryService).Routes(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// the snapshotter takes a final snapshot before returning
	stopSnapshots()
	wg.Wait()
	logger.Info("snapshotter stopped")

	return nil
}

func openKeyspace(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.Keyspace, func(), error) {
	if cfg.Keyspace.Backend == config.BackendMemory {
		logger.Info("using in-memory keyspace")
		return storage.NewMemoryAdapter(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	return storage.NewRedisAdapter(rdb, cfg.Redis.KeyPrefix), func() { rdb.Close() }, nil
}

func openSnapshotStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.SnapshotRepository, func(), error) {
	switch cfg.Snapshot.Driver {
	case config.SnapshotNone:
		logger.Info("snapshots disabled")
		return nil, func() {}, nil
	case config.SnapshotFile:
		logger.Info("using file snapshots", zap.String("path", cfg.Snapshot.Path))
		return storage.NewFileAdapter(cfg.Snapshot.Path), func() {}, nil
	}

	db, err := sql.Open(cfg.Snapshot.Driver, cfg.Snapshot.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", cfg.Snapshot.Driver, err)
	}
	if cfg.Snapshot.Driver == config.SnapshotSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping %s: %w", cfg.Snapshot.Driver, err)
	}

	store := storage.NewSQLAdapter(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("using sql snapshots", zap.String("driver", cfg.Snapshot.Driver))

	return store, func() { db.Close() }, nil
}
