package extract

import (
	"path/filepath"
	"strings"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
)

// codeExtensions is the raw-source whitelist (spec.md Glossary).
var codeExtensions = map[string]bool{
	".rs": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".py": true,
	".java": true, ".cpp": true, ".c": true, ".h": true, ".hpp": true, ".cs": true,
	".go": true, ".rb": true, ".php": true, ".swift": true, ".kt": true, ".scala": true,
	".r": true, ".m": true, ".mm": true, ".vue": true, ".svelte": true, ".dart": true,
	".lua": true, ".sh": true, ".bash": true, ".zsh": true, ".fish": true, ".sql": true,
	".graphql": true, ".proto": true, ".toml": true, ".yaml": true, ".yml": true,
	".json": true, ".xml": true, ".html": true, ".css": true, ".scss": true,
	".sass": true, ".less": true,
}

// RawSource builds a raw_source chunk for relPath if its extension is on
// the code whitelist and it does not match any ignore pattern. ok is false
// when the file was filtered out and no chunk should be emitted.
func RawSource(project, relPath string, content []byte, ignorePatterns []string) (chunk *model.Chunk, ok bool) {
	if !codeExtensions[strings.ToLower(filepath.Ext(relPath))] {
		return nil, false
	}

	if shouldIgnore(relPath, ignorePatterns) {
		return nil, false
	}

	return newChunk(project, chunktype.RawSource, relPath, "", string(content), ""), true
}

// shouldIgnore reports whether relPath matches any of patterns using naive
// substring matching after stripping "**" and "*" wildcards. This mirrors
// the source implementation's should_ignore behavior exactly (a flagged
// correctness risk, preserved for behavioral compatibility rather than
// replaced with real glob semantics).
func shouldIgnore(relPath string, patterns []string) bool {
	for _, p := range patterns {
		stripped := strings.ReplaceAll(strings.ReplaceAll(p, "**", ""), "*", "")
		if stripped == "" {
			continue
		}

		if strings.Contains(relPath, stripped) {
			return true
		}
	}

	return false
}
