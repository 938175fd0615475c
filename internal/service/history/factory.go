package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
	BackendMongo    Backend = "mongo"
)

// Config selects and parameterizes the history backend.
type Config struct {
	Backend Backend
	// DSN is a redis:// URL, a SQL DSN or a mongodb:// URI depending on Backend.
	DSN string
	// DBName is only used by the mongo backend.
	DBName string
	// TTL expires sessions idle for that long; zero keeps them forever.
	TTL time.Duration
}

// NewStore builds the configured backend.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil

	case BackendRedis:
		opts, err := redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return NewRedisStore(client, cfg.TTL), nil

	case BackendSQLite:
		return openGorm(sqlite.Open(cfg.DSN))

	case BackendPostgres:
		return openGorm(postgres.Open(cfg.DSN))

	case BackendMySQL:
		return openGorm(mysql.Open(cfg.DSN))

	case BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		dbName := cfg.DBName
		if dbName == "" {
			dbName = "assistentes"
		}
		return NewMongoStore(ctx, client, dbName)

	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.Backend)
	}
}

func openGorm(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dialector.Name(), err)
	}
	return NewGormStore(db)
}
