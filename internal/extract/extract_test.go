package extract_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/extract"
)

func TestRawSource_Whitelist(t *testing.T) {
	t.Parallel()

	content := []byte("fn main() {}\n")

	chunk, ok := extract.RawSource("proj", "src/main.rs", content, nil)
	require.True(t, ok)
	assert.Equal(t, chunktype.RawSource, chunk.ChunkType)
	assert.Equal(t, "src/main.rs", chunk.FilePath)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), chunk.ContentHash)
}

func TestRawSource_RejectsUnlistedExtension(t *testing.T) {
	t.Parallel()

	_, ok := extract.RawSource("proj", "README.md", []byte("hi"), nil)
	assert.False(t, ok)
}

func TestRawSource_IgnorePatterns(t *testing.T) {
	t.Parallel()

	_, ok := extract.RawSource("proj", "node_modules/pkg/index.js", []byte("x"), []string{"node_modules/**"})
	assert.False(t, ok)
}

func TestConfig_RecognizesEnvFiles(t *testing.T) {
	t.Parallel()

	chunk, ok := extract.Config("proj", ".env.production", []byte("KEY=1"))
	require.True(t, ok)
	assert.Equal(t, chunktype.StateConfig, chunk.ChunkType)
}

func TestConfig_RejectsUnrecognized(t *testing.T) {
	t.Parallel()

	_, ok := extract.Config("proj", "main.go", []byte("package main"))
	assert.False(t, ok)
}

func TestMetadata_RecognizesManifest(t *testing.T) {
	t.Parallel()

	chunk, ok := extract.Metadata("proj", "go.mod", []byte("module x"))
	require.True(t, ok)
	assert.Equal(t, chunktype.ProjectMeta, chunk.ChunkType)
}

func TestMetadata_RejectsNonManifest(t *testing.T) {
	t.Parallel()

	_, ok := extract.Metadata("proj", "main.go", []byte("package main"))
	assert.False(t, ok)
}

func TestCallGraph_Rust(t *testing.T) {
	t.Parallel()

	chunk, ok := extract.CallGraph("proj", "src/lib.rs", []byte("use std::io;\nfn f() { println(1); }"))
	require.True(t, ok)
	assert.Contains(t, chunk.Content, "std::io")
	assert.Contains(t, chunk.Metadata, `"is_static":true`)
}

func TestCallGraph_JavaScriptImport(t *testing.T) {
	t.Parallel()

	chunk, ok := extract.CallGraph("proj", "src/index.js", []byte("import React from 'react';\n"))
	require.True(t, ok)
	assert.Contains(t, chunk.Content, "react")
}

func TestCallGraph_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	_, ok := extract.CallGraph("proj", "README.md", []byte("text"))
	assert.False(t, ok)
}

func TestTests_ClassifiesByName(t *testing.T) {
	t.Parallel()

	chunk, ok := extract.Tests("proj", "foo_test.go", []byte("func TestFoo(t *testing.T) {}"))
	require.True(t, ok)
	assert.Equal(t, chunktype.Tests, chunk.ChunkType)
}

func TestTests_ClassifiesByContent(t *testing.T) {
	t.Parallel()

	chunk, ok := extract.Tests("proj", "lib.rs", []byte("#[test]\nfn it_works() { assert_eq!(1, 1); }"))
	require.True(t, ok)
	assert.Contains(t, chunk.Metadata, "it_works")
}

func TestTests_RejectsNonTestFile(t *testing.T) {
	t.Parallel()

	_, ok := extract.Tests("proj", "main.go", []byte("package main"))
	assert.False(t, ok)
}

func TestAST_Rust(t *testing.T) {
	t.Parallel()

	chunk, ok, err := extract.AST("proj", "main.rs", []byte("fn f() { let x = 1; }"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, chunk.Content, "source_file:0-0")
	assert.Contains(t, chunk.Metadata, `"language":"rust"`)
}

func TestAST_TSXReportsCanonicalTypeScriptName(t *testing.T) {
	t.Parallel()

	chunk, ok, err := extract.AST("proj", "component.tsx", []byte("const x = <div/>;"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, chunk.Metadata, `"language":"typescript"`)
}

func TestAST_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, ok, err := extract.AST("proj", "README.md", []byte("text"))
	require.NoError(t, err)
	assert.False(t, ok)
}
