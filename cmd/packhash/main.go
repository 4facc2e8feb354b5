// Package main provides a one-shot utility that fingerprints the
// reference artifact packs.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/verum-omnis/attest/internal/platform/config"
	"github.com/verum-omnis/attest/internal/tools/packhash"
)

func main() {
	cfg, err := packhash.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := packhash.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("compute pack digests: %v", err)
	}
}
