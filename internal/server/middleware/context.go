package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/ai"
	oai "github.com/polderlab/actornet/pkg/ai/ollama"
	gai "github.com/polderlab/actornet/pkg/ai/openai"
	"github.com/polderlab/actornet/pkg/logger"
	"github.com/polderlab/actornet/pkg/store"
	pgxstore "github.com/polderlab/actornet/pkg/store/pgx"
)

type App struct {
	DBConn   *pgxpool.Pool
	Queue    *amqp091.Channel
	S3       *s3.Client
	Embedder ai.EmbeddingClient
	Storage  store.ResultStorage
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	s3Client *s3.Client,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var embedder ai.EmbeddingClient

			switch util.GetEnv("AI_ADAPTER") {
			case "ollama":
				client, err := oai.NewScorerOllamaClient(oai.NewScorerOllamaClientParams{
					EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
					BaseURL:        util.GetEnv("AI_EMBED_URL"),
					ApiKey:         util.GetEnv("AI_EMBED_KEY"),

					MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQ", 8)),
				})
				if err != nil {
					logger.Fatal("Failed to create Ollama client", "err", err)
				}
				embedder = client
			default:
				embedder = gai.NewScorerOpenAIClient(gai.NewScorerOpenAIClientParams{
					EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
					EmbeddingURL:   util.GetEnv("AI_EMBED_URL"),
					EmbeddingKey:   util.GetEnv("AI_EMBED_KEY"),

					MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQ", 8)),
				})
			}

			resultStore, err := pgxstore.NewResultDBStorageWithConnection(c.Request().Context(), db)
			if err != nil {
				logger.Error("Failed to create result storage", "err", err)
				return err
			}

			app := &App{
				DBConn:   db,
				Queue:    queue,
				S3:       s3Client,
				Embedder: embedder,
				Storage:  resultStore,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
