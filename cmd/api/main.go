package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kumarshivu12/advanced-todo/internal/config"
	"github.com/kumarshivu12/advanced-todo/internal/db"
	httpx "github.com/kumarshivu12/advanced-todo/internal/http"
	"github.com/kumarshivu12/advanced-todo/internal/observability"
	"github.com/kumarshivu12/advanced-todo/internal/repo/memory"
	"github.com/kumarshivu12/advanced-todo/internal/repo/mongodb"
	"github.com/kumarshivu12/advanced-todo/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// stores bundles the configured backend and its teardown.
type stores struct {
	users httpx.UserStore
	todos httpx.TodoStore
	close func(ctx context.Context)
}

func openStores(ctx context.Context, cfg config.Config, obs observability.DBObserver) (stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return stores{}, fmt.Errorf("connect mongo: %w", err)
		}

		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return stores{}, fmt.Errorf("ensure indexes: %w", err)
		}

		return stores{
			users: mongodb.NewUsersRepo(database, obs),
			todos: mongodb.NewTodosRepo(database, obs),
			close: func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}

		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("ensure schema: %w", err)
		}

		return stores{
			users: postgres.NewUsersRepo(pool, obs),
			todos: postgres.NewTodosRepo(pool, obs),
			close: func(context.Context) { pool.Close() },
		}, nil

	default:
		return stores{
			users: memory.NewUsersRepo(),
			todos: memory.NewTodosRepo(),
			close: func(context.Context) {},
		}, nil
	}
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, "advanced-todo", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	st, err := openStores(startCtx, cfg, prom)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}

	seeded, err := db.EnsureSeedUser(startCtx, st.users, cfg)
	if err != nil {
		log.Error("seed user failed", "err", err)
		os.Exit(1)
	}
	if seeded {
		log.Info("seed user created", "email", cfg.SeedUserEmail)
	}

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Config:   cfg,
		Users:    st.users,
		Todos:    st.todos,
		Prom:     prom,
		Gatherer: reg,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		st.close(ctx)

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
