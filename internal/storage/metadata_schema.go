package storage

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
)

// metadataSchemas declares the JSON Schema each chunk type's metadata blob
// must satisfy. Chunk types absent from this map carry free-form or no
// metadata and skip validation.
var metadataSchemas = map[chunktype.Chunk]string{
	chunktype.AST: `{
		"type": "object",
		"required": ["language", "node_count", "max_depth", "has_syntax_errors"],
		"properties": {
			"language": {"type": "string"},
			"node_count": {"type": "integer", "minimum": 0},
			"max_depth": {"type": "integer", "minimum": 0},
			"has_syntax_errors": {"type": "boolean"}
		}
	}`,
	chunktype.CallGraph: `{
		"type": "object",
		"required": ["is_static", "external_calls", "call_count"],
		"properties": {
			"is_static": {"type": "boolean"},
			"external_calls": {"type": "array", "items": {"type": "string"}},
			"call_count": {"type": "integer", "minimum": 0}
		}
	}`,
	chunktype.CommitHistory: `{
		"type": "object",
		"required": ["author_name", "author_email", "commit_date", "files", "insertions", "deletions"],
		"properties": {
			"author_name": {"type": "string"},
			"author_email": {"type": "string"},
			"commit_date": {"type": "string"},
			"files": {"type": "array", "items": {"type": "string"}},
			"insertions": {"type": "integer", "minimum": 0},
			"deletions": {"type": "integer", "minimum": 0}
		}
	}`,
}

var compiledSchemas = map[chunktype.Chunk]*gojsonschema.Schema{}

func init() {
	for ct, raw := range metadataSchemas {
		loader := gojsonschema.NewStringLoader(raw)

		schema, err := gojsonschema.NewSchema(loader)
		if err != nil {
			panic(fmt.Sprintf("storage: invalid built-in schema for %s: %v", ct, err))
		}

		compiledSchemas[ct] = schema
	}
}

// validateMetadata checks raw (a JSON document, possibly empty) against the
// schema declared for chunkType, if one exists. An empty metadata blob
// always passes — extractors that emit no metadata (e.g. raw-source) are
// never subject to validation.
func validateMetadata(chunkType chunktype.Chunk, raw string) error {
	if raw == "" {
		return nil
	}

	schema, ok := compiledSchemas[chunkType]
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	if !result.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMetadata, result.Errors())
	}

	return nil
}
