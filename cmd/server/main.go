package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	gcsstorage "cloud.google.com/go/storage"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/atomtax/backoffice/internal/auth"
	"github.com/atomtax/backoffice/internal/config"
	"github.com/atomtax/backoffice/internal/service"
	"github.com/atomtax/backoffice/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the server config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := config.InitializeLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx := context.Background()

	st, err := openStore(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to open store", "backend", cfg.Store.Backend, "error", err)
	}
	defer st.Close()

	svc := service.New(st, sugar)

	if bucket := cfg.Storage.DocumentsBucket; bucket != "" {
		gcsClient, err := gcsstorage.NewClient(ctx)
		if err != nil {
			sugar.Fatalw("failed to create storage client", "error", err)
		}
		defer gcsClient.Close()
		svc.SetDocumentArchive(service.NewGCSArchive(gcsClient.Bucket(bucket)))
		sugar.Infow("document archive enabled", "bucket", bucket)
	}

	var handler http.Handler = svc.Routes()

	if cfg.Auth.Disabled {
		sugar.Warnw("authentication disabled, using local dev identity")
		handler = auth.LocalDevMiddleware()(handler)
	} else {
		verifier, err := auth.NewFirebaseAuth(ctx)
		if err != nil {
			sugar.Fatalw("failed to initialize firebase auth", "error", err)
		}
		handler = auth.Middleware(verifier)(handler)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
		},
		AllowCredentials: true,
	})
	handler = c.Handler(handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	go func() {
		sugar.Infow("starting server",
			"port", cfg.Server.Port,
			"backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	sugar.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}

// openStore builds the authoritative store for this deployment. Exactly
// one backend holds the data; there are no dual writes.
func openStore(ctx context.Context, cfg *config.Configuration, log *zap.SugaredLogger) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Infow("using in-memory store, data will not survive a restart")
		return store.NewMemoryStore(), nil
	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.Store.FirestoreProject)
		if err != nil {
			return nil, fmt.Errorf("create firestore client: %w", err)
		}
		return store.NewFirestoreStore(client), nil
	case config.BackendPostgres:
		return store.NewPostgresStore(ctx, cfg.Store.PostgresDSN)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
