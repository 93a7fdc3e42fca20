// Package app builds the object graph shared by the API server and the worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/database"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/documents"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/extract"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/generated"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/generation"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/jobs"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/latex"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/llm"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/storage"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/templates"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

const (
	mongoConnectAttempts = 5
	mongoConnectBackoff  = time.Second
)

// Collection names.
const (
	FilesCollection     = "files"
	TemplatesCollection = "templates"
	GeneratedCollection = "generated_documents"
	JobsCollection      = "generation_jobs"
)

// App holds the long-lived services.
type App struct {
	Config *config.Config

	Mongo *mongo.Client // nil with STORAGE_BACKEND=memory
	Redis *redis.Client // nil when REDIS_HOST is unset or unreachable

	Blobs        storage.BlobStore
	Files        *documents.Service
	Templates    *templates.Service
	Seeder       *templates.Seeder
	Generated    *generated.Store
	JobStore     jobs.Store
	Orchestrator *generation.Orchestrator

	// Pipeline components in use.
	Extractor  generation.Extractor
	Customizer generation.Customizer
	Compiler   generation.Compiler
}

// Options replaces pipeline components, mostly for tests.
type Options struct {
	Extractor  generation.Extractor
	Customizer generation.Customizer
	Compiler   generation.Compiler
}

// New connects to the configured backends and wires every service.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}

	var (
		fileRepo documents.Repository
		tplRepo  templates.Repository
		genRepo  generated.Repository
		db       *mongo.Database
	)
	if cfg.Storage.Backend == "memory" {
		logger.Warn("STORAGE_BACKEND=memory: metadata and files are kept in process memory")
		fileRepo = documents.NewMemoryRepo()
		tplRepo = templates.NewMemoryRepo()
		genRepo = generated.NewMemoryRepo()
		a.JobStore = jobs.NewMemoryStore()
	} else {
		client, err := database.ConnectWithRetry(ctx, mongoConnectAttempts, mongoConnectBackoff, func(ctx context.Context) (*mongo.Client, error) {
			return database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		})
		if err != nil {
			return nil, err
		}
		a.Mongo = client
		db = client.Database(cfg.MongoDB.Database)
		fileRepo = documents.NewMongoRepo(db.Collection(FilesCollection))
		tplRepo = templates.NewMongoRepo(db.Collection(TemplatesCollection))
		genRepo = generated.NewMongoRepo(db.Collection(GeneratedCollection))
		a.JobStore = jobs.NewMongoStore(db.Collection(JobsCollection))
	}

	blobs, err := storage.New(cfg, db)
	if err != nil {
		if a.Mongo != nil {
			_ = a.Mongo.Disconnect(context.Background())
		}
		return nil, fmt.Errorf("blob store: %w", err)
	}
	a.Blobs = blobs
	logger.Infof("blob store: %s", cfg.Storage.Backend)

	a.Redis = connectRedis(ctx, cfg.Redis)

	a.Files = documents.NewService(fileRepo, blobs, cfg.Storage.MaxUploadBytes)
	a.Templates = templates.NewService(tplRepo, a.Files)
	a.Seeder = templates.NewSeeder(tplRepo, a.Files)
	a.Generated = generated.NewStore(genRepo, blobs)

	a.Extractor = opts.Extractor
	if a.Extractor == nil {
		a.Extractor = extract.NewPDFExtractor()
	}
	a.Customizer = opts.Customizer
	if a.Customizer == nil {
		a.Customizer = llm.NewCustomizer(llm.NewClient(cfg.LLM), cfg.LLM)
	}
	a.Compiler = opts.Compiler
	if a.Compiler == nil {
		if err := latex.BinaryAvailable(cfg.Latex.Binary); err != nil {
			logger.Warnf("LaTeX binary %q not found: %v", cfg.Latex.Binary, err)
		}
		a.Compiler = latex.NewCompiler(cfg.Latex, latex.ExecRunner{})
	}
	a.Orchestrator = generation.NewOrchestrator(
		a.Files,
		templates.NewResolver(tplRepo, a.Files),
		a.Extractor,
		a.Customizer,
		a.Compiler,
		a.Generated,
	)
	return a, nil
}

func connectRedis(ctx context.Context, rc config.RedisConfig) *redis.Client {
	if rc.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr(), Password: rc.Password, DB: rc.DB})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", rc.Addr(), err)
		_ = client.Close()
		return nil
	}
	logger.Infof("connected to Redis: %s", rc.Addr())
	return client
}

// SeedTemplates imports the bundled templates when enabled. Failures are logged only.
func (a *App) SeedTemplates(ctx context.Context) {
	if !a.Config.Templates.Seed {
		return
	}
	if _, err := a.Seeder.Seed(ctx, a.Config.Templates.Dir); err != nil {
		logger.Warnf("template seeding skipped: %v", err)
	}
}

// Ready reports the health of each dependency.
func (a *App) Ready(ctx context.Context) map[string]bool {
	deps := map[string]bool{"storage": a.Blobs != nil}
	if a.Mongo != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		deps["mongo"] = a.Mongo.Ping(pctx, nil) == nil
		cancel()
	}
	deps["latex"] = latex.BinaryAvailable(a.Config.Latex.Binary) == nil
	if (a.Config.RateLimit.Enabled && a.Config.RateLimit.UseRedis) || a.Config.Kafka.Enabled() {
		ok := a.Redis != nil
		if ok {
			pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			ok = a.Redis.Ping(pctx).Err() == nil
			cancel()
		}
		deps["redis"] = ok
	}
	return deps
}

// Close releases the connections opened by New.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Mongo != nil {
		errs = append(errs, a.Mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
