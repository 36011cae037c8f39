package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/rabbitmq/amqp091-go"

	"github.com/FaiyazAwsaf/space-biology-engine/internal/queue"
	mid "github.com/FaiyazAwsaf/space-biology-engine/internal/server/middleware"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/storage"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/util"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai/gemini"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai/ollama"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/ai/openai"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/extractor"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/kg"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/query"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/retriever"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// Init loads every collaborator once, wires the query engine, and serves the
// API until interrupted. A collaborator that fails to load is logged and left
// out; the matching health flag stays false and requests degrade instead of
// crashing the process.
func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components := mid.Components{}

	generator, keyConfigured := NewGenerationClient()
	components.GenerationKey = keyConfigured

	var retrieverClient retriever.Client
	if dbURL := util.GetEnv("DATABASE_URL"); dbURL != "" {
		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			logger.Error("Invalid database URL", "err", err)
		} else {
			cfg.AfterConnect = func(ctx context.Context, conn *pgxv5.Conn) error {
				return pgxvec.RegisterTypes(ctx, conn)
			}
			conn, err := pgxpool.NewWithConfig(ctx, cfg)
			if err != nil {
				logger.Error("Failed to connect to database", "err", err)
			} else {
				defer conn.Close()
				retrieverClient = retriever.NewPGStore(retriever.PGStoreParams{
					Conn:     conn,
					AIClient: generator,
				})
				components.RAGSystem = true
			}
		}
	} else {
		logger.Warn("DATABASE_URL not set, retrieval disabled")
	}

	var extractorClient extractor.Client
	if endpoint := util.GetEnv("NER_ENDPOINT"); endpoint != "" {
		extractorClient = extractor.NewHTTPClient(extractor.NewHTTPClientParams{
			Endpoint: endpoint,
			Token:    util.GetEnv("NER_TOKEN"),
		})
		components.NERModel = true
	} else if generator != nil {
		logger.Warn("NER_ENDPOINT not set, falling back to LLM extraction")
		extractorClient = extractor.NewLLMClient(generator)
		components.NERModel = keyConfigured
	}

	var graphStore kg.Store
	if graph := loadGraphSnapshot(ctx); graph != nil {
		graphStore = graph
		components.KnowledgeGraph = true
	}

	engine := query.NewEngine(query.EngineParams{
		Extractor: extractorClient,
		Retriever: retrieverClient,
		Graph:     graphStore,
		Generator: generator,
	})

	var queueCh *amqp091.Channel
	if util.GetEnv("RABBITMQ_HOST") != "" {
		que := queue.Init()
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SetupQueues(ch); err != nil {
			logger.Fatal("Failed to setup queues", "err", err)
		}
		queueCh = ch
	} else {
		logger.Warn("RABBITMQ_HOST not set, document indexing disabled")
	}

	var key *keyfunc.Keyfunc
	if jwksURL := util.GetEnv("AUTH_JWKS_URL"); jwksURL != "" {
		k, err := keyfunc.NewDefault([]string{jwksURL})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		key = &k
	}

	app := &mid.App{
		Engine:     engine,
		Key:        key,
		Queue:      queueCh,
		Components: components,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(corsMiddleware())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e, key != nil)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// NewGenerationClient builds the retrying generation client for the adapter
// selected by AI_ADAPTER (gemini by default). The second return reports
// whether an API key is configured.
func NewGenerationClient() (ai.GenerationClient, bool) {
	adapter := util.GetEnvString("AI_ADAPTER", "gemini")

	var backend ai.GenerationClient
	keyConfigured := false

	switch adapter {
	case "openai":
		chatKey := util.GetEnv("AI_CHAT_KEY")
		backend = openai.NewClient(openai.NewClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			ChatURL:        util.GetEnv("AI_CHAT_URL"),
			ChatKey:        chatKey,
			EmbeddingURL:   util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey:   util.GetEnv("AI_EMBED_KEY"),
		})
		keyConfigured = chatKey != ""
	case "ollama":
		client, err := ollama.NewClient(ollama.NewClientParams{
			ChatModel:             util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel:        util.GetEnv("AI_EMBED_MODEL"),
			BaseURL:               util.GetEnv("AI_CHAT_URL"),
			ApiKey:                util.GetEnv("AI_CHAT_KEY"),
			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		backend = client
		keyConfigured = true
	default:
		apiKey := util.GetEnv("AI_CHAT_KEY")
		backend = gemini.NewClient(gemini.NewClientParams{
			Model:          util.GetEnvString("AI_CHAT_MODEL", "gemini-1.5-flash-latest"),
			EmbeddingModel: util.GetEnvString("AI_EMBED_MODEL", "text-embedding-004"),
			BaseURL:        util.GetEnv("AI_CHAT_URL"),
			APIKey:         apiKey,
		})
		keyConfigured = apiKey != ""
	}

	return ai.NewRetryingClient(ai.RetryingClientParams{Backend: backend}), keyConfigured
}

// NewArtifactStore picks S3 when an endpoint is configured, a local directory
// otherwise.
func NewArtifactStore(ctx context.Context) storage.ArtifactStore {
	if util.GetEnv("AWS_ENDPOINT") != "" {
		if client := storage.NewS3Client(ctx); client != nil {
			return storage.NewS3ArtifactStore(client)
		}
		logger.Warn("Failed to create S3 client, using local artifact store")
	}
	return storage.NewLocalArtifactStore(util.GetEnvString("ARTIFACTS_DIR", "data"))
}

func loadGraphSnapshot(ctx context.Context) *kg.Graph {
	artifacts := NewArtifactStore(ctx)
	data, err := artifacts.Get(ctx, storage.GraphSnapshotKey)
	if err != nil {
		logger.Warn("Knowledge graph snapshot not available", "err", err)
		return nil
	}

	graph, err := kg.UnmarshalNodeLink(data)
	if err != nil {
		logger.Error("Failed to parse knowledge graph snapshot", "err", err)
		return nil
	}

	logger.Info("Loaded knowledge graph snapshot", "nodes", graph.NodeCount(), "edges", graph.EdgeCount())
	return graph
}

func corsMiddleware() echo.MiddlewareFunc {
	origins := util.GetEnv("CORS_ORIGINS")
	if origins == "" {
		return middleware.CORS()
	}
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(origins, ","),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	})
}
