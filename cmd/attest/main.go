// Package main provides the attest CLI over the attestation core.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	attestcmd "github.com/verum-omnis/attest/internal/cmd/attest"
	"github.com/verum-omnis/attest/internal/platform/config"
	"github.com/verum-omnis/attest/internal/platform/otel"
)

func main() {
	cfg, err := attestcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "attest")
	if err != nil {
		config.Exitf("setup telemetry: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if err := attestcmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("%s: %v", cfg.Command, err)
	}
}
