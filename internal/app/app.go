package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"league-app-go/internal/config"
	"league-app-go/internal/domain/authz"
	"league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
	"league-app-go/internal/domain/relationship"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/domain/user"
	"league-app-go/internal/events"
	"league-app-go/internal/lock"
	"league-app-go/internal/repository/inmemory"
	"league-app-go/internal/transport/httpserver"
	"league-app-go/internal/transport/httpserver/handler"
	"league-app-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	stores     *stores
	closers    []func() error
	log        logger.Logger
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(context.Background(), cfg, log)
}

// NewWithConfig wires every component for cfg. Store connections are closed
// again if a later step fails.
func NewWithConfig(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: loading policies", "file", cfg.PolicyFile)
	policies, err := LoadPolicies(cfg)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing store", "driver", cfg.DB.Driver)
	st, err := openStores(ctx, cfg, log, cfg.DB.AutoMigrate)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, stores: st, log: log}

	locker, err := a.newLocker(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	publisher := a.newPublisher()

	resolver := authz.NewResolver(policies)
	if cfg.ProfileCacheTTL > 0 && cfg.DB.Driver != config.DriverMemory {
		log.Warn("app: profile cache enabled, role changes reach other replicas only after the ttl", "ttl", cfg.ProfileCacheTTL)
	}
	users := user.NewService(st.Users, user.WithCache(inmemory.NewProfileCache(), cfg.ProfileCacheTTL))
	leagueService := league.NewService(st.League)
	relationships := relationship.NewService(st.Relationships, relationship.Deps{
		Resolver:  resolver,
		Locker:    locker,
		Publisher: publisher,
		Log:       log,
	})
	editRequests := editrequest.NewService(st.EditRequests, editrequest.Deps{
		Policies:      policies,
		Resolver:      resolver,
		Relationships: relationships,
		Publisher:     publisher,
		Log:           log,
		Counting:      editrequest.ParseCounting(cfg.ApprovalCounting),
	})

	log.Info("app: initializing router")
	handlers := handler.New(handler.Services{
		Users:         users,
		League:        leagueService,
		Relationships: relationships,
		EditRequests:  editRequests,
		Policies:      policies,
	}, log)
	router := httpserver.NewRouter(cfg, handlers, users, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)
	return a, nil
}

// LoadPolicies reads POLICY_FILE when set and the built-in table otherwise.
func LoadPolicies(cfg config.Config) (*policy.Table, error) {
	if cfg.PolicyFile == "" {
		return policy.Default()
	}
	table, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policies %s: %w", cfg.PolicyFile, err)
	}
	return table, nil
}

func (a *App) newLocker(ctx context.Context) (shared.Locker, error) {
	if a.cfg.Redis.Addr == "" {
		a.log.Info("app: using in-process pair lock")
		return lock.NewLocal(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	a.log.Info("app: using redis pair lock", "addr", a.cfg.Redis.Addr, "ttl", a.cfg.Redis.LockTTL)
	return lock.NewRedis(client, a.cfg.Redis.LockTTL, a.log), nil
}

func (a *App) newPublisher() shared.Publisher {
	brokers := events.ParseBrokers(a.cfg.Kafka.Brokers)
	if len(brokers) == 0 {
		a.log.Info("app: event publishing disabled")
		return events.Noop{}
	}
	publisher := events.NewKafka(brokers, a.cfg.Kafka.Topic)
	a.closers = append(a.closers, publisher.Close)
	a.log.Info("app: publishing events to kafka", "brokers", brokers, "topic", a.cfg.Kafka.Topic)
	return publisher
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.stores != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.stores.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
