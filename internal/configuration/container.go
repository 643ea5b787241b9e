package configuration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yashveerji/LinkedIn-B/internal/auth"
	"github.com/yashveerji/LinkedIn-B/internal/db"
	"github.com/yashveerji/LinkedIn-B/internal/handler"
	"github.com/yashveerji/LinkedIn-B/internal/hub"
	"github.com/yashveerji/LinkedIn-B/internal/presence"
	"github.com/yashveerji/LinkedIn-B/internal/repo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const bootTimeout = 10 * time.Second

type Container struct {
	Hub            *hub.Hub
	MonitorHandler handler.MonitorHandler
	RTCHandler     handler.RTCHandler
	Config         Config
	Logger         *zap.Logger

	// private - for cleanup
	mongoDB     *mongo.Database
	sqliteStore *repo.SQLiteStore
	redisClient *redis.Client
}

// BuildContainer loads the config at configPath and wires every component.
func BuildContainer(configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(config.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	c := &Container{Config: *config, Logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), bootTimeout)
	defer cancel()

	store, err := c.openStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	var mirror presence.Mirror
	if config.Redis.URL != "" {
		redisMirror, err := c.openRedisMirror(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
		mirror = redisMirror
	}

	var verifier auth.Verifier
	if config.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier(config.Auth.JWTSecret, config.Auth.CookieName)
	} else {
		logger.Warn("auth.jwtSecret not set: socket upgrades are not authenticated")
	}

	c.Hub = hub.NewHub(hub.Options{
		Store:          store,
		Directory:      presence.NewDirectory(),
		Logger:         logger.Named("hub"),
		Mirror:         mirror,
		Verifier:       verifier,
		Workers:        config.Server.Workers,
		AllowedOrigins: config.Server.AllowedOrigins,
	})
	c.MonitorHandler = handler.NewMonitorHandler(hub.NewMonitorService(c.Hub))
	c.RTCHandler = handler.NewRTCHandler(config.RTC.ICEServers)

	logger.Info("container ready",
		zap.String("store", config.Store.Driver),
		zap.Bool("presence_mirror", mirror != nil),
		zap.Bool("auth", verifier != nil),
	)
	return c, nil
}

func newLogger(cfg LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (c *Container) openStore(ctx context.Context) (hub.Store, error) {
	switch c.Config.Store.Driver {
	case StoreSQLite:
		store, err := repo.OpenSQLite(c.Config.SQLite.Path, c.Logger.Named("sqlite"))
		if err != nil {
			return nil, err
		}
		c.sqliteStore = store
		return store, nil

	default:
		cfg := c.Config.Mongo
		con, err := db.OpenConnection(cfg.Uri, cfg.Database)
		if err != nil {
			return nil, err
		}
		c.mongoDB = con

		if err := repo.EnsureMessageIndexes(ctx, con, cfg.MessagesCollection); err != nil {
			c.Logger.Warn("failed to ensure message indexes", zap.Error(err))
		}
		if err := repo.EnsureCallLogIndexes(ctx, con, cfg.CallLogsCollection); err != nil {
			c.Logger.Warn("failed to ensure call log indexes", zap.Error(err))
		}

		repoLogger := c.Logger.Named("repo")
		return repo.NewStore(
			repo.NewMessageRepository(con, cfg.MessagesCollection, repoLogger),
			repo.NewCallLogRepository(con, cfg.CallLogsCollection, repoLogger),
			repo.NewUserRepository(con, cfg.UsersCollection, repoLogger),
		), nil
	}
}

func (c *Container) openRedisMirror(ctx context.Context) (*presence.RedisMirror, error) {
	opts, err := redis.ParseURL(c.Config.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}
	c.redisClient = client

	mirror := presence.NewRedisMirror(client)
	// a restart dropped every socket
	if err := mirror.Reset(ctx); err != nil {
		c.Logger.Warn("failed to reset presence mirror", zap.Error(err))
	}
	return mirror, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	var errs []error

	// Stop the hub first (closes all WebSocket connections, drains pending writes)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if c.sqliteStore != nil {
		if err := c.sqliteStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close sqlite store: %w", err))
		}
	}

	// Close MongoDB connection pool
	if c.mongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoDB.Client().Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MongoDB connection: %w", err))
		}
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	return errors.Join(errs...)
}
