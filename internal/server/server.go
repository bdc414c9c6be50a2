package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/polderlab/actornet/internal/db"
	"github.com/polderlab/actornet/internal/queue"
	mid "github.com/polderlab/actornet/internal/server/middleware"
	"github.com/polderlab/actornet/internal/storage"
	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/logger"
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

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := db.Migrate(databaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	conn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	conn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	if err := queue.SetupQueues(ch, []string{queue.RunQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	e.Use(mid.AppContextMiddleware(conn, ch, s3))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
