package main

import (
	"context"
	"os/signal"
	"syscall"

	cmd "github.com/rohmanhakim/cobweb/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd.Execute(ctx)
}
