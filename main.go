package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"blobtool/cmd"
	"blobtool/config"
	"blobtool/internal/logging"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Init(cnf.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cmd.Execute(ctx, cnf, version)
	stop()

	os.Exit(cmd.ExitCode(err))
}
