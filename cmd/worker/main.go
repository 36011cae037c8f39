package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/FaiyazAwsaf/space-biology-engine/internal/db"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/queue"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/server"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/storage"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/util"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/extractor"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/kg"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger/console"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/retriever"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	dbURL := util.GetEnv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	if err := db.Migrate(dbURL, util.GetEnvString("MIGRATIONS_PATH", "migrations")); err != nil {
		logger.Fatal("Failed to migrate database", "err", err)
	}

	aiClient, _ := server.NewGenerationClient()

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		logger.Fatal("Invalid database URL", "err", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgxv5.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pgConn, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	store := retriever.NewPGStore(retriever.PGStoreParams{
		Conn:     pgConn,
		AIClient: aiClient,
	})
	indexer := retriever.NewIndexer(retriever.IndexerParams{
		Store:       store,
		AIClient:    aiClient,
		ChunkTokens: int(util.GetEnvNumeric("WORKER_CHUNK_TOKENS", retriever.DefaultChunkTokens)),
		Overlap:     int(util.GetEnvNumeric("WORKER_CHUNK_OVERLAP", retriever.DefaultChunkOverlap)),
	})

	var extractorClient extractor.Client
	if endpoint := util.GetEnv("NER_ENDPOINT"); endpoint != "" {
		extractorClient = extractor.NewHTTPClient(extractor.NewHTTPClientParams{
			Endpoint: endpoint,
			Token:    util.GetEnv("NER_TOKEN"),
		})
	} else {
		logger.Warn("NER_ENDPOINT not set, falling back to LLM extraction")
		extractorClient = extractor.NewLLMClient(aiClient)
	}

	artifacts := server.NewArtifactStore(ctx)
	graph := loadOrCreateGraph(ctx, artifacts)

	if path := util.GetEnv("LABEL_MAP_PATH"); path != "" {
		publishLabelMap(ctx, artifacts, path)
	}

	processor := queue.NewIndexProcessor(queue.IndexProcessorParams{
		Indexer:   indexer,
		Extractor: extractorClient,
		Graph:     graph,
		Artifacts: artifacts,
	})

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.IndexQueue,
		"index_queue_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.IndexQueue, "err", err)
	}

	logger.Info("Listening for messages")

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed")
					return
				}

				startTime := time.Now()
				logger.Info("Received message", "queue", queue.IndexQueue)

				if err := processor.ProcessIndexMessage(ctx, string(msg.Body)); err != nil {
					logger.Error("Error processing message", "queue", queue.IndexQueue, "err", err)
					handleProcessingError(consumerCh, msg, queue.IndexQueue)
				} else {
					if err := msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "duration", time.Since(startTime).Round(time.Millisecond))
				}
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

// publishLabelMap mirrors the training pipeline's labels.json into the
// artifact store so consumers don't need the training filesystem.
func publishLabelMap(ctx context.Context, artifacts storage.ArtifactStore, path string) {
	labelMap, err := extractor.LoadLabelMap(path)
	if err != nil {
		logger.Warn("Failed to load label map", "path", path, "err", err)
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read label map", "path", path, "err", err)
		return
	}
	if err := artifacts.Put(ctx, storage.LabelMapKey, raw); err != nil {
		logger.Warn("Failed to publish label map artifact", "err", err)
		return
	}
	logger.Info("Published label map", "tags", len(labelMap))
}

func loadOrCreateGraph(ctx context.Context, artifacts storage.ArtifactStore) *kg.Graph {
	data, err := artifacts.Get(ctx, storage.GraphSnapshotKey)
	if err != nil {
		logger.Info("No existing graph snapshot, starting fresh")
		return kg.NewGraph()
	}

	graph, err := kg.UnmarshalNodeLink(data)
	if err != nil {
		logger.Warn("Failed to parse existing graph snapshot, starting fresh", "err", err)
		return kg.NewGraph()
	}

	logger.Info("Resuming from graph snapshot", "nodes", graph.NodeCount(), "edges", graph.EdgeCount())
	return graph
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
