package main

import (
	"fortune-backend/internal/cli"
	"fortune-backend/internal/config"
	"fortune-backend/internal/logger"
)

func init() {
	config.LoadEnvFiles(".env", ".env.local")
}

func main() {
	logger.Init(logger.FromEnv())
	cli.ExecuteCorrectionGen()
}
