package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".opcode"
	configType      = "yaml"
	envPrefix       = "OPCODE"
	envKeySeparator = "_"
)

// LoadConfig loads configuration from configPath if non-empty, otherwise
// searches the current directory and the user's home directory for
// ".opcode.yaml". Values may be overridden by OPCODE_* environment
// variables (e.g. OPCODE_DB_PATH, OPCODE_CHUNKING_MAX_COMMITS). Missing
// config files are not an error; defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DBPathRelativeTo resolves cfg.DBPath against projectRoot when it is not
// already absolute.
func DBPathRelativeTo(projectRoot, dbPath string) string {
	if filepath.IsAbs(dbPath) {
		return dbPath
	}

	return filepath.Join(projectRoot, dbPath)
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("chunking.max_ast_depth", 50)
	v.SetDefault("chunking.include_dynamic_callgraph", false)
	v.SetDefault("chunking.max_commits", DefaultMaxCommits)
	v.SetDefault("chunking.ignore_patterns", DefaultIgnorePatterns)
	v.SetDefault("user_signature.name", DefaultUserSignature.Name)
	v.SetDefault("user_signature.email", DefaultUserSignature.Email)
	v.SetDefault("agent_signature.name", DefaultAgentSignature.Name)
	v.SetDefault("agent_signature.email", DefaultAgentSignature.Email)
}
