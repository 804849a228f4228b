// Package commands implements CLI command handlers for opcode.
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/opcode-dev/opcode-index/internal/config"
	"github.com/opcode-dev/opcode-index/internal/engine"
	"github.com/opcode-dev/opcode-index/internal/observability"
)

// openEngine resolves projectPath to an absolute root, loads its config
// (configFile overrides discovery when non-empty), and opens an Engine
// against it. project defaults to the root directory's base name.
func openEngine(projectPath, configFile string) (*engine.Engine, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	providers, err := observability.Init(observability.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewIndexMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	project := filepath.Base(root)

	return engine.Open(project, root, *cfg, metrics)
}
