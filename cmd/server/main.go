package main

import (
	"github.com/ontoreview/backend/internal/server"
	"github.com/ontoreview/backend/internal/util"
	"github.com/ontoreview/backend/pkg/logger"
	"github.com/ontoreview/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
