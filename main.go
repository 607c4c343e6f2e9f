package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"binpack_go/bpp"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := newCLI(os.Stdout, os.Stderr)
	err := c.rootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	cancel()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, bpp.ErrInput):
		return 2
	case errors.Is(err, bpp.ErrInfeasibleMaster):
		return 3
	case errors.Is(err, bpp.ErrOracle):
		return 4
	}
	return 1
}
