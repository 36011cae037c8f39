package main

import (
	"github.com/FaiyazAwsaf/space-biology-engine/internal/server"
	"github.com/FaiyazAwsaf/space-biology-engine/internal/util"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger"
	"github.com/FaiyazAwsaf/space-biology-engine/pkg/logger/console"
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
