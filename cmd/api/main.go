package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/bryanwahyu/agentic-rag/internal/application"
	appdocs "github.com/bryanwahyu/agentic-rag/internal/application/documents"
	apppipe "github.com/bryanwahyu/agentic-rag/internal/application/pipeline"
	"github.com/bryanwahyu/agentic-rag/internal/config"
	"github.com/bryanwahyu/agentic-rag/internal/domain/documents"
	"github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
	"github.com/bryanwahyu/agentic-rag/internal/infra/blob"
	fscatalog "github.com/bryanwahyu/agentic-rag/internal/infra/catalog/fs"
	mysqlcatalog "github.com/bryanwahyu/agentic-rag/internal/infra/catalog/mysql"
	pgcatalog "github.com/bryanwahyu/agentic-rag/internal/infra/catalog/postgres"
	sqlitecatalog "github.com/bryanwahyu/agentic-rag/internal/infra/catalog/sqlite"
	"github.com/bryanwahyu/agentic-rag/internal/infra/httpserver"
	"github.com/bryanwahyu/agentic-rag/internal/infra/nlp/keyword"
	openainlp "github.com/bryanwahyu/agentic-rag/internal/infra/nlp/openai"
	"github.com/bryanwahyu/agentic-rag/internal/middleware"
)

func main() {
	// .env kalau ada, environment tetap menang
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	checkers := map[string]middleware.HealthChecker{}

	// init blob store
	var blobs documents.BlobStore
	switch cfg.Blobs.Backend {
	case "minio":
		store, err := blob.NewMinioStore(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		blobs = store
	case "fs":
		store, err := blob.NewFSStore(cfg.Blobs.Path)
		if err != nil {
			log.Fatalf("blob store init error: %v", err)
		}
		blobs = store
		checkers["storage"] = &middleware.StorageHealthChecker{Path: cfg.Blobs.Path}
	default:
		log.Fatalf("unknown blob backend %q", cfg.Blobs.Backend)
	}

	// init catalog
	var catalog documents.Catalog
	switch cfg.Catalog.Backend {
	case "mysql":
		db, err := mysqlcatalog.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		cat := mysqlcatalog.NewCatalog(db)
		if err := cat.InitSchema(ctx); err != nil {
			log.Fatalf("mysql schema error: %v", err)
		}
		catalog = cat
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := pgcatalog.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		cat := pgcatalog.NewCatalog(db)
		if err := cat.InitSchema(ctx); err != nil {
			log.Fatalf("postgres schema error: %v", err)
		}
		catalog = cat
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "sqlite":
		c, err := sqlitecatalog.New(cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("sqlite catalog error: %v", err)
		}
		defer c.Close()
		catalog = c
	case "fs":
		c, err := fscatalog.New(cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("fs catalog error: %v", err)
		}
		catalog = c
	default:
		log.Fatalf("unknown catalog backend %q", cfg.Catalog.Backend)
	}

	// init document service
	docsSvc := appdocs.NewService(blobs, catalog, application.SystemClock{}, logger)

	// init NLP stack
	var (
		classifier pipeline.QueryClassifier
		analyzer   pipeline.ContentAnalyzer
		synth      pipeline.Synthesizer
	)
	switch cfg.NLP.Backend {
	case "openai":
		client := openainlp.NewClient(cfg.NLP.APIKey, cfg.NLP.Model)
		classifier = keyword.NewClassifier()
		analyzer = openainlp.NewAnalyzer(client, docsSvc)
		synth = openainlp.NewSynthesizer(client)
	case "keyword":
		classifier = keyword.NewClassifier()
		analyzer = keyword.NewAnalyzer(docsSvc)
		synth = keyword.NewSynthesizer()
	default:
		log.Fatalf("unknown nlp backend %q", cfg.NLP.Backend)
	}

	// init coordinator
	coord := apppipe.NewCoordinator(docsSvc, classifier, analyzer, synth, application.SystemClock{}, logger, nil)
	coord.MaxConcurrency = cfg.Pipeline.MaxConcurrency
	coord.QueryTimeout = time.Duration(cfg.Pipeline.QueryTimeout)

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware(logger))
	mux.Use(middleware.MetricsMiddleware)
	if cfg.RateLimit.Enabled {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Mount("/", httpserver.NewRouter(docsSvc, coord, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
