package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AbelMSG89/json-synchronized/internal/cli"
	jerrors "github.com/AbelMSG89/json-synchronized/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.Execute(ctx, os.Args[1:], os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		os.Exit(130) // Standard shell convention for SIGINT
	case cli.IsReported(err), errors.Is(err, cli.ErrCheckFailed):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, jerrors.UserMessage(err))
		os.Exit(1)
	}
}
