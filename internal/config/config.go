// Package config loads the engine's configuration: which chunk types to
// extract, extractor limits, ignore patterns, storage location, and the
// Git signatures used for snapshot commits.
package config

import (
	"fmt"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
)

const (
	// DefaultMaxCommits bounds the commit-history extractor pass.
	DefaultMaxCommits = 100

	// DefaultDBPath is the default SQLite database file, relative to the
	// project root, when none is configured.
	DefaultDBPath = ".opcode/index.db"
)

// DefaultIgnorePatterns is the default ignore-pattern list applied by the
// raw-source extractor (spec.md §6 ChunkingOptions).
var DefaultIgnorePatterns = []string{
	"node_modules/**", "target/**", "dist/**", "build/**", ".git/**",
}

// GitSignature identifies an author/committer for snapshot commits.
type GitSignature struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// ChunkingOptions controls a single full or incremental indexing pass
// (spec.md §6).
type ChunkingOptions struct {
	// ChunkTypes is the subset of chunktype.Chunk an indexing run
	// produces. Defaults to chunktype.DefaultExtractorTypes.
	ChunkTypes []chunktype.Chunk `mapstructure:"chunk_types"`

	// MaxASTDepth is reserved; the AST extractor currently uses a fixed
	// cap of 50 regardless of this value.
	MaxASTDepth int `mapstructure:"max_ast_depth"`

	// IncludeDynamicCallgraph is reserved; the call-graph extractor is
	// currently always static.
	IncludeDynamicCallgraph bool `mapstructure:"include_dynamic_callgraph"`

	// MaxCommits bounds the commit-history extractor pass.
	MaxCommits int `mapstructure:"max_commits"`

	// IgnorePatterns is matched against relative file paths by naive
	// substring matching after stripping "*"/"**" (spec.md §4.2).
	IgnorePatterns []string `mapstructure:"ignore_patterns"`
}

// Config is the engine's full runtime configuration.
type Config struct {
	// DBPath is the SQLite database file path.
	DBPath string `mapstructure:"db_path"`

	// Chunking is the default ChunkingOptions for process_project and
	// reindex_changed_files calls that don't override it explicitly.
	Chunking ChunkingOptions `mapstructure:"chunking"`

	// UserSignature signs master-timeline snapshot commits.
	UserSignature GitSignature `mapstructure:"user_signature"`

	// AgentSignature signs agent-timeline snapshot commits.
	AgentSignature GitSignature `mapstructure:"agent_signature"`
}

// DefaultUserSignature is the signature spec.md §6 requires for master
// snapshot commits.
var DefaultUserSignature = GitSignature{Name: "Opcode User", Email: "user@opcode.local"}

// DefaultAgentSignature is the signature spec.md §6 requires for agent
// snapshot commits and the Git bootstrap commit.
var DefaultAgentSignature = GitSignature{Name: "Opcode Agent", Email: "agent@opcode.local"}

// DefaultChunkingOptions returns the zero-config ChunkingOptions.
func DefaultChunkingOptions() ChunkingOptions {
	return ChunkingOptions{
		ChunkTypes:     chunktype.DefaultExtractorTypes,
		MaxASTDepth:    50,
		MaxCommits:     DefaultMaxCommits,
		IgnorePatterns: append([]string{}, DefaultIgnorePatterns...),
	}
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		DBPath:         DefaultDBPath,
		Chunking:       DefaultChunkingOptions(),
		UserSignature:  DefaultUserSignature,
		AgentSignature: DefaultAgentSignature,
	}
}

// ErrEmptyDBPath is returned when Validate finds no database path configured.
var ErrEmptyDBPath = fmt.Errorf("config: db_path must not be empty")

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return ErrEmptyDBPath
	}

	for _, ct := range c.Chunking.ChunkTypes {
		if !ct.Valid() {
			return fmt.Errorf("%w: %q", chunktype.ErrUnknownChunkType, ct)
		}
	}

	if c.Chunking.MaxCommits <= 0 {
		c.Chunking.MaxCommits = DefaultMaxCommits
	}

	return nil
}
