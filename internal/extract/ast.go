package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/python"
	"github.com/alexaandru/go-sitter-forest/rust"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
)

// maxASTDepth caps the recursive tree walk: nodes deeper than this are
// dropped from the serialized text, though ancestor stats still reflect
// their existence (spec.md §9 "Recursive tree walk").
const maxASTDepth = 50

// leafInlineByteLimit is the byte-length threshold under which a leaf
// node's kind is appended inline to its serialized line.
const leafInlineByteLimit = 100

var (
	languagesOnce sync.Once
	languages     map[string]*sitter.Language
)

func initLanguages() {
	languages = map[string]*sitter.Language{
		"rust":       sitter.NewLanguage(rust.GetLanguage()),
		"javascript": sitter.NewLanguage(javascript.GetLanguage()),
		"typescript": sitter.NewLanguage(typescript.GetLanguage()),
		"tsx":        sitter.NewLanguage(tsx.GetLanguage()),
		"python":     sitter.NewLanguage(python.GetLanguage()),
	}
}

// languageName returns the canonical grammar name for relPath's extension,
// or "" if unsupported. Per spec.md's Open Question resolution this
// derives the name from the same extension routing used to select the
// grammar, rather than the unconditional "unknown" the source returned.
func languageName(relPath string) string {
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".rs":
		return "rust"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "tsx"
	case ".py":
		return "python"
	default:
		return ""
	}
}

// grammarName maps a canonical language name to the grammar used to parse
// it; tsx files use the tsx grammar but are reported as "typescript" in
// metadata per the canonical-name set in spec.md §9.
func grammarName(lang string) string {
	if lang == "tsx" {
		return "tsx"
	}

	return lang
}

// canonicalLanguageName folds the tsx grammar key back onto "typescript",
// the only language name spec.md §9 names for TypeScript/TSX sources.
func canonicalLanguageName(lang string) string {
	if lang == "tsx" {
		return "typescript"
	}

	return lang
}

type astMetadata struct {
	Language        string `json:"language"`
	NodeCount       int    `json:"node_count"`
	MaxDepth        int    `json:"max_depth"`
	HasSyntaxErrors bool   `json:"has_syntax_errors"`
}

// AST parses relPath with the grammar selected by its extension and
// serializes the resulting concrete syntax tree. ok is false for
// unsupported extensions.
func AST(project, relPath string, content []byte) (chunk *model.Chunk, ok bool, err error) {
	lang := languageName(relPath)
	if lang == "" {
		return nil, false, nil
	}

	languagesOnce.Do(initLanguages)

	grammar, found := languages[grammarName(lang)]
	if !found {
		return nil, false, nil
	}

	parser := sitter.NewParser()
	if err := parser.SetLanguage(grammar); err != nil {
		return nil, true, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, true, fmt.Errorf("parse %s: %w", relPath, err)
	}
	defer tree.Close()

	root := tree.RootNode()

	var (
		b         strings.Builder
		nodeCount int
		maxDepth  int
	)

	walkNode(&b, root, 0, &nodeCount, &maxDepth)

	meta := astMetadata{
		Language:        canonicalLanguageName(lang),
		NodeCount:       nodeCount,
		MaxDepth:        maxDepth,
		HasSyntaxErrors: root.HasError(),
	}

	metaJSON, marshalErr := json.Marshal(meta)
	if marshalErr != nil {
		return nil, true, fmt.Errorf("marshal ast metadata: %w", marshalErr)
	}

	return newChunk(project, chunktype.AST, relPath, "", b.String(), string(metaJSON)), true, nil
}

func walkNode(b *strings.Builder, n sitter.Node, depth int, nodeCount, maxDepth *int) {
	*nodeCount++

	if depth > *maxDepth {
		*maxDepth = depth
	}

	if depth > maxASTDepth {
		return
	}

	start := n.StartPoint()
	end := n.EndPoint()

	fmt.Fprintf(b, "%s%s:%d-%d", strings.Repeat("  ", depth), n.Type(), start.Row, end.Row)

	childCount := n.NamedChildCount()
	if childCount == 0 && int(n.EndByte()-n.StartByte()) < leafInlineByteLimit {
		fmt.Fprintf(b, " [%s]", n.Type())
	}

	b.WriteByte('\n')

	for i := range childCount {
		walkNode(b, n.NamedChild(i), depth+1, nodeCount, maxDepth)
	}
}
