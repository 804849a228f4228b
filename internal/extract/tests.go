package extract

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
)

var (
	testContentMarkers = []string{"#[test]", "describe(", "it(", "test(", "def test_", "class Test"}

	testNameRes = []*regexp.Regexp{
		regexp.MustCompile(`#\[test\]\s*\n\s*fn\s+(\w+)`),
		regexp.MustCompile(`(?:it|test)\(\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`def\s+(test_\w+)`),
	}

	assertionRes = []*regexp.Regexp{
		regexp.MustCompile(`\bassert\w*\s*\(`),
		regexp.MustCompile(`\bexpect\(`),
		regexp.MustCompile(`\.\w*to[A-Z]\w*\(`),
		regexp.MustCompile(`\bshould\.\w+`),
	}
)

type testsMetadata struct {
	TestNames      []string `json:"test_names"`
	AssertionCount int      `json:"assertion_count"`
}

// Tests classifies relPath as a test file by name or content and, if so,
// builds a tests chunk listing discovered test names and assertion count.
func Tests(project, relPath string, content []byte) (chunk *model.Chunk, ok bool) {
	if !isTestFile(relPath, content) {
		return nil, false
	}

	text := string(content)
	names := extractTestNames(text)
	assertionCount := countAssertions(text)

	meta := testsMetadata{TestNames: names, AssertionCount: assertionCount}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, false
	}

	return newChunk(project, chunktype.Tests, relPath, "", text, string(metaJSON)), true
}

func isTestFile(relPath string, content []byte) bool {
	base := strings.ToLower(filepath.Base(relPath))

	if strings.Contains(base, "test") || strings.Contains(base, "spec") {
		return true
	}

	if strings.HasSuffix(relPath, "_test.rs") {
		return true
	}

	text := string(content)
	for _, marker := range testContentMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}

	return false
}

func extractTestNames(text string) []string {
	set := map[string]bool{}

	for _, re := range testNameRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			set[m[1]] = true
		}
	}

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

func countAssertions(text string) int {
	count := 0

	for _, re := range assertionRes {
		count += len(re.FindAllString(text, -1))
	}

	return count
}
