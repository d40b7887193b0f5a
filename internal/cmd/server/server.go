// Package server wires the bridge command: configuration, the demo
// service contract and the HTTP serving lifecycle.
package server

import (
	"context"
	"flag"
	"fmt"

	"github.com/omnibridge/omnibridge/internal/contract"
	"github.com/omnibridge/omnibridge/internal/demo"
	platformcmd "github.com/omnibridge/omnibridge/internal/platform/cmd"
	bridge "github.com/omnibridge/omnibridge/internal/server"
)

// Config holds the bridge server configuration.
type Config struct {
	// HTTPAddr is the listen address.
	HTTPAddr string `env:"OMNIBRIDGE_HTTP_ADDR" envDefault:"localhost:8080"`
	// Endpoint is the canonical URL advertised in the WSDL, the
	// descriptor page and the generated clients.
	Endpoint string `env:"OMNIBRIDGE_ENDPOINT" envDefault:"http://localhost:8080/api"`
}

// ParseConfig loads environment defaults and then parses flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := platformcmd.ParseConfigFromArgs(&cfg, fs, args, func(cfg *Config, fs *flag.FlagSet) {
		fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
		fs.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "canonical endpoint URL advertised to clients")
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run exposes the demo calculator over every protocol until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceServer, func(ctx context.Context) error {
		c, err := contract.Build(&demo.Calculator{}, contract.WithEndpoint(cfg.Endpoint))
		if err != nil {
			return fmt.Errorf("build service contract: %w", err)
		}

		srv, err := bridge.NewServer(bridge.Config{HTTPAddr: cfg.HTTPAddr}, bridge.NewBridge(c, nil, nil))
		if err != nil {
			return fmt.Errorf("init bridge server: %w", err)
		}
		if err := srv.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve bridge: %w", err)
		}
		return nil
	})
}
