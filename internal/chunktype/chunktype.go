// Package chunktype defines the closed-set string enumerations used across
// the indexing engine: chunk type, relationship type, and snapshot type.
// These are tagged string variants, not a type hierarchy — persistence and
// dispatch both key off the string value.
package chunktype

import "fmt"

// Chunk is the closed set of chunk categories.
type Chunk string

const (
	RawSource      Chunk = "raw_source"
	AST            Chunk = "ast"
	CallGraph      Chunk = "callgraph"
	Tests          Chunk = "tests"
	CommitHistory  Chunk = "commit_history"
	StateConfig    Chunk = "state_config"
	ProjectMeta    Chunk = "project_metadata"
	BusinessRules  Chunk = "business_rules"
	Snapshot       Chunk = "snapshot"
	ErrorLog       Chunk = "error_log"
)

// AllChunkTypes lists every valid Chunk value.
var AllChunkTypes = []Chunk{
	RawSource, AST, CallGraph, Tests, CommitHistory,
	StateConfig, ProjectMeta, BusinessRules, Snapshot, ErrorLog,
}

// DefaultExtractorTypes is the chunk-type subset an indexing run produces by
// default: everything except the types that originate outside an extractor
// (business rules, snapshots, and error logs are written by their own
// subsystems, not by process_project).
var DefaultExtractorTypes = []Chunk{
	RawSource, AST, CallGraph, Tests, CommitHistory, StateConfig, ProjectMeta,
}

// Valid reports whether c is one of the closed set of chunk types.
func (c Chunk) Valid() bool {
	for _, v := range AllChunkTypes {
		if c == v {
			return true
		}
	}

	return false
}

// ErrUnknownChunkType is returned when a string does not name a known chunk type.
var ErrUnknownChunkType = fmt.Errorf("chunktype: unknown chunk type")

// Relationship is the closed set of directed edge types between chunks.
type Relationship string

const (
	DependsOn          Relationship = "depends_on"
	Calls              Relationship = "calls"
	TestedBy           Relationship = "tested_by"
	ImplementsRule     Relationship = "implements_rule"
	ModifiedWith       Relationship = "modified_with"
	AssociatedWithError Relationship = "associated_with_error"
	ConfiguresFor      Relationship = "configures_for"
)

// AllRelationshipTypes lists every valid Relationship value.
var AllRelationshipTypes = []Relationship{
	DependsOn, Calls, TestedBy, ImplementsRule, ModifiedWith, AssociatedWithError, ConfiguresFor,
}

// Valid reports whether r is one of the closed set of relationship types.
func (r Relationship) Valid() bool {
	for _, v := range AllRelationshipTypes {
		if r == v {
			return true
		}
	}

	return false
}

// SnapshotKind is the closed set of snapshot timeline kinds.
type SnapshotKind string

const (
	Master SnapshotKind = "master"
	Agent  SnapshotKind = "agent"
)

// Valid reports whether k is one of the closed set of snapshot kinds.
func (k SnapshotKind) Valid() bool {
	return k == Master || k == Agent
}
