package extract

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
)

var (
	rustUseRe       = regexp.MustCompile(`use\s+([\w:]+)`)
	jsImportRe      = regexp.MustCompile(`import\s+.*?\s+from\s+['"]([^'"]+)['"]`)
	jsRequireRe     = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	pyImportRe      = regexp.MustCompile(`^\s*import\s+([\w.]+)`)
	pyFromImportRe  = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import`)
	callIdentifierRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

// callGraphKeywords excludes control-flow and declaration keywords from
// being misidentified as function calls, per language.
var callGraphKeywords = map[string]map[string]bool{
	"rust": {
		"if": true, "while": true, "for": true, "match": true, "fn": true,
		"let": true, "return": true, "loop": true, "else": true,
	},
	"javascript": {
		"if": true, "while": true, "for": true, "switch": true, "function": true,
		"return": true, "catch": true, "else": true, "new": true,
	},
	"typescript": {
		"if": true, "while": true, "for": true, "switch": true, "function": true,
		"return": true, "catch": true, "else": true, "new": true,
	},
	"python": {
		"if": true, "while": true, "for": true, "def": true, "return": true,
		"elif": true, "else": true, "class": true, "with": true, "except": true,
	},
}

type callGraphMetadata struct {
	IsStatic      bool     `json:"is_static"`
	ExternalCalls []string `json:"external_calls"`
	CallCount     int      `json:"call_count"`
}

// CallGraph performs a static, per-language regex extraction of imports
// and call-site identifiers. ok is false for languages outside the
// supported set (rust, javascript family, typescript family, python).
func CallGraph(project, relPath string, content []byte) (chunk *model.Chunk, ok bool) {
	lang := languageForCallGraph(relPath)
	if lang == "" {
		return nil, false
	}

	text := string(content)
	imports := extractImports(lang, text)
	calls := extractCalls(lang, text)

	meta := callGraphMetadata{
		IsStatic:      true,
		ExternalCalls: imports,
		CallCount:     len(calls),
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, false
	}

	var b strings.Builder

	b.WriteString("Imports:\n")

	for _, imp := range imports {
		fmt.Fprintf(&b, "  %s\n", imp)
	}

	b.WriteString("Calls:\n")

	for _, c := range calls {
		fmt.Fprintf(&b, "  %s\n", c)
	}

	return newChunk(project, chunktype.CallGraph, relPath, "", b.String(), string(metaJSON)), true
}

func languageForCallGraph(relPath string) string {
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".rs":
		return "rust"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".tsx", ".mts", ".cts":
		return "typescript"
	case ".py":
		return "python"
	default:
		return ""
	}
}

func extractImports(lang, text string) []string {
	set := map[string]bool{}

	switch lang {
	case "rust":
		for _, m := range rustUseRe.FindAllStringSubmatch(text, -1) {
			set[m[1]] = true
		}
	case "javascript", "typescript":
		for _, m := range jsImportRe.FindAllStringSubmatch(text, -1) {
			set[m[1]] = true
		}

		for _, m := range jsRequireRe.FindAllStringSubmatch(text, -1) {
			set[m[1]] = true
		}
	case "python":
		for _, line := range strings.Split(text, "\n") {
			if m := pyImportRe.FindStringSubmatch(line); m != nil {
				set[m[1]] = true
			}

			if m := pyFromImportRe.FindStringSubmatch(line); m != nil {
				set[m[1]] = true
			}
		}
	}

	return sortedKeys(set)
}

func extractCalls(lang, text string) []string {
	keywords := callGraphKeywords[lang]
	set := map[string]bool{}

	for _, m := range callIdentifierRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if keywords[name] {
			continue
		}

		set[name] = true
	}

	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
