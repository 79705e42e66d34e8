package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/booklibrary/internal/api"
	"github.com/mmynk/booklibrary/internal/auth"
	"github.com/mmynk/booklibrary/internal/config"
	"github.com/mmynk/booklibrary/internal/library"
	"github.com/mmynk/booklibrary/internal/lock"
	"github.com/mmynk/booklibrary/internal/metrics"
	"github.com/mmynk/booklibrary/internal/middleware"
	"github.com/mmynk/booklibrary/internal/seed"
	"github.com/mmynk/booklibrary/internal/service"
	"github.com/mmynk/booklibrary/internal/storage"
	"github.com/mmynk/booklibrary/internal/storage/memory"
	"github.com/mmynk/booklibrary/internal/storage/postgres"
	"github.com/mmynk/booklibrary/internal/storage/sqlite"
	"github.com/mmynk/booklibrary/pkg/libraryv1/libraryv1connect"
	"github.com/mmynk/booklibrary/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Seed {
		if _, err := seed.Run(ctx, store); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	lib := library.New(store,
		library.WithLocker(locker, cfg.LockWait),
		library.WithTransitionHook(metrics.ObserveTransition),
	)

	router := mux.NewRouter()
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// Connect RPC
	var interceptors []connect.Interceptor
	var restAuth []mux.MiddlewareFunc
	if cfg.AuthEnabled() {
		jwtManager := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL)
		interceptors = append(interceptors, middleware.RequireLibrarian(jwtManager, libraryv1connect.MutatingProcedures))
		restAuth = append(restAuth, middleware.RequireLibrarianHTTP(jwtManager))
		slog.Info("Librarian authorization enabled")
	} else {
		slog.Warn("AUTH_SECRET not set, mutating operations are open")
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor())

	rpcPath, rpcHandler := libraryv1connect.NewLibraryServiceHandler(
		service.NewLibraryService(lib),
		connect.WithInterceptors(interceptors...),
	)
	router.PathPrefix(rpcPath).Handler(rpcHandler)

	// REST API
	api.NewHandler(lib).Register(router, restAuth...)

	handler := middleware.RequestID(
		middleware.AccessLog(
			metrics.InstrumentHandler(
				middleware.CORS(cfg.CORSOrigin)(router),
			),
		),
	)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Addr(), "url", fmt.Sprintf("http://localhost%s", cfg.Addr()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver)
		return store, nil
	case config.DriverMemory:
		slog.Info("Storage initialized", "driver", cfg.DBDriver)
		return memory.New(), nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver, "database", cfg.DBPath)
		return store, nil
	}
}

func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func(), error) {
	switch cfg.LockBackend {
	case config.LockNone:
		return lock.Nop{}, func() {}, nil
	case config.LockRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("Redis locker initialized", "address", cfg.RedisAddr, "ttl", cfg.LockTTL)
		return lock.NewRedisLocker(client, cfg.LockTTL), func() { client.Close() }, nil
	default:
		return lock.NewMemoryLocker(), func() {}, nil
	}
}
