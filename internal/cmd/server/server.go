// Package server parses gate service flags and launches the service.
package server

import (
	"context"
	"flag"

	entrypoint "github.com/kmavego/diagnostic-gate/internal/platform/cmd"
	server "github.com/kmavego/diagnostic-gate/internal/services/gate/app"
)

// Config holds gate command configuration.
type Config struct {
	Port        int    `env:"DIAGNOSTIC_GATE_PORT" envDefault:"8080"`
	StoragePath string `env:"DIAGNOSTIC_GATE_STORAGE_PATH"`
	RulesDir    string `env:"DIAGNOSTIC_GATE_RULES_DIR"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The gate HTTP server port")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "The SQLite database path")
	fs.StringVar(&cfg.RulesDir, "rules-dir", cfg.RulesDir, "Directory overriding the embedded rule documents")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the gate HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGate, func(context.Context) error {
		return server.Run(ctx, cfg.Port, server.Options{
			StoragePath: cfg.StoragePath,
			RulesDir:    cfg.RulesDir,
		})
	})
}
