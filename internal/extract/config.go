package extract

import (
	"path/filepath"
	"strings"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
)

// configFilenames is the closed base-name set recognized as configuration
// (spec.md §4.2 config extractor).
var configFilenames = map[string]bool{
	".env":             true,
	"config.json":      true,
	"config.yaml":      true,
	"config.yml":       true,
	"appsettings.json": true,
}

// configSuffixes are additional base-name/suffix matches for the config
// extractor beyond the exact-name set above.
var configSuffixes = []string{".config.js", ".config.ts", "rc.json"}

// Config builds a state_config chunk for relPath if its base name
// identifies it as a configuration file.
func Config(project, relPath string, content []byte) (chunk *model.Chunk, ok bool) {
	base := filepath.Base(relPath)

	if !isConfigFilename(base) {
		return nil, false
	}

	return newChunk(project, chunktype.StateConfig, relPath, "", string(content), ""), true
}

func isConfigFilename(base string) bool {
	if configFilenames[base] {
		return true
	}

	if strings.HasPrefix(base, ".env.") {
		return true
	}

	if strings.HasPrefix(base, "settings.") {
		return true
	}

	for _, suffix := range configSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	return false
}
