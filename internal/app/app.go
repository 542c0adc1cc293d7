package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qualiobra/internal/config"
	"qualiobra/internal/repository"
)

const pingTimeout = 5 * time.Second

// App holds the stores shared by the server and the seed CLI
type App struct {
	ItemRepo   repository.ItemRepo
	AnswerRepo repository.AnswerRepo
	Redis      *redis.Client

	closers []func()
}

// OpenStores connects the configured item and answer store
func OpenStores(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	var err error
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		err = a.openPostgres(ctx, cfg.DatabaseURL)
	default:
		err = a.openMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	}
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openMongo(ctx context.Context, uri, dbName string) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.closers = append(a.closers, func() { client.Disconnect(context.Background()) })

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")

	db := client.Database(dbName)
	if err := repository.EnsureAnswerIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to create answer indexes: %w", err)
	}
	a.ItemRepo = repository.NewItemRepo(db)
	a.AnswerRepo = repository.NewAnswerRepo(db)
	return nil
}

func (a *App) openPostgres(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open Postgres: %w", err)
	}
	a.closers = append(a.closers, func() { db.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping Postgres: %w", err)
	}
	log.Println("Connected to Postgres")

	if err := repository.EnsurePGSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	a.ItemRepo = repository.NewPGItemRepo(db)
	a.AnswerRepo = repository.NewPGAnswerRepo(db)
	return nil
}

// OpenRedis connects the session and item cache
func (a *App) OpenRedis(ctx context.Context, addr string) error {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	a.closers = append(a.closers, func() { rdb.Close() })

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Println("Connected to Redis")
	a.Redis = rdb
	return nil
}

// Close releases every connection in reverse order
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
