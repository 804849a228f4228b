package extract

import (
	"path/filepath"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
)

// manifestFilenames is the closed base-name set of package manifests and
// lock files across ecosystems (spec.md Glossary).
var manifestFilenames = map[string]bool{
	"package.json":      true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.toml":        true,
	"Cargo.lock":        true,
	"pyproject.toml":    true,
	"requirements.txt":  true,
	"Pipfile":           true,
	"Pipfile.lock":      true,
	"go.mod":            true,
	"go.sum":            true,
	"build.gradle":      true,
	"pom.xml":           true,
	"composer.json":     true,
	"composer.lock":     true,
	"Gemfile":           true,
	"Gemfile.lock":      true,
}

// Metadata builds a project_metadata chunk for relPath if its base name is
// a recognized manifest file.
func Metadata(project, relPath string, content []byte) (chunk *model.Chunk, ok bool) {
	if !manifestFilenames[filepath.Base(relPath)] {
		return nil, false
	}

	return newChunk(project, chunktype.ProjectMeta, relPath, "", string(content), ""), true
}
