package main

import (
	"fortune-backend/internal/cli"
	"fortune-backend/internal/config"
)

func init() {
	config.LoadEnvFiles(".env", ".env.local")
}

func main() {
	cli.Execute()
}
