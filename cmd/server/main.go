package main

import (
	"github.com/polderlab/actornet/internal/server"
	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/logger"
	"github.com/polderlab/actornet/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
	})
	logger.Init(consoleLogger)

	server.Init()
}
