package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/polderlab/actornet/internal/db"
	"github.com/polderlab/actornet/internal/queue"
	"github.com/polderlab/actornet/internal/storage"
	"github.com/polderlab/actornet/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/polderlab/actornet/pkg/ai"
	oai "github.com/polderlab/actornet/pkg/ai/ollama"
	gai "github.com/polderlab/actornet/pkg/ai/openai"
	"github.com/polderlab/actornet/pkg/logger"
	"github.com/polderlab/actornet/pkg/logger/console"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Init s3 client
	s3Client := storage.NewS3Client(ctx)

	// Embedding client, per adapter
	maxConcurrent := int64(util.GetEnvInt("AI_PARALLEL_REQ", 8))
	var embedder ai.EmbeddingClient
	var chat ai.ChatClient

	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		client, err := oai.NewScorerOllamaClient(oai.NewScorerOllamaClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			BaseURL:        util.GetEnv("AI_EMBED_URL"),
			ApiKey:         util.GetEnv("AI_EMBED_KEY"),

			MaxConcurrentRequests: maxConcurrent,
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		embedder = client

	default:
		client := gai.NewScorerOpenAIClient(gai.NewScorerOpenAIClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: maxConcurrent,
		})
		embedder = client
		chat = client
	}

	scorer := ai.SimilarityScorer(ai.NewEmbeddingScorer(embedder))
	if util.GetEnv("SCORER_MODE") == "judge" {
		if chat == nil {
			logger.Fatal("SCORER_MODE=judge requires the openai adapter")
		}
		var judgeOpts []ai.GenerateOption
		if model := util.GetEnv("AI_JUDGE_MODEL"); model != "" {
			judgeOpts = append(judgeOpts, ai.WithModel(model))
		}
		scorer = ai.NewJudgeScorer(chat, judgeOpts...)
	}

	// Migrations, then pgx pool
	databaseURL := util.GetEnv("DATABASE_URL")
	if err := db.Migrate(databaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	pgConn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	pgConn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	queues := []string{queue.RunQueue}
	if err := queue.SetupQueues(ch, queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	logger.Info("Listening for messages")

	// Single consumer channel with prefetch=1 so one run is processed at a time
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queues {
		go func(qName string) {
			consumerTag := fmt.Sprintf("%s_consumer", qName)
			msgs, err := consumerCh.Consume(
				qName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: qName}
				}
			}
		}(queueName)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("Received message", "queue", qm.queueName)

				var processingErr error
				switch qm.queueName {
				case queue.RunQueue:
					processingErr = queue.ProcessRun(ctx, s3Client, scorer, embedder, pgConn, string(qm.msg.Body))
				}

				// On failure route to retry or dead-letter, otherwise ack
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					handleProcessingError(consumerCh, qm.msg, qm.queueName)
				} else {
					if err := qm.msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", qm.queueName)
				}

				m := embedder.GetMetrics()
				aiDuration := time.Duration(m.DurationMs) * time.Millisecond
				logger.Info(
					"AI Metrics",
					"input_tokens", m.InputTokens,
					"total_tokens", m.TotalTokens,
					"duration", formatDuration(aiDuration),
				)

				logger.Info(
					"Processing time",
					"duration", formatDuration(time.Since(startTime)),
				)
				logger.Info("Waiting for next message")
				embedder.ResetMetrics()
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// After 10 attempts the message goes to the dead-letter queue
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
	headers["x-retries"] = retries + 1

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
