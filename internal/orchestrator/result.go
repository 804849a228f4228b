// Package orchestrator drives full and incremental indexing passes: it
// walks a project, routes file content through the chunk extractors, and
// upserts the resulting chunks into storage.
package orchestrator

import (
	"fmt"
)

// ExtractorError records a single extractor failure encountered during a
// run. Extractor failures never abort the run (spec §4.4); they accumulate
// here and are also recorded as error logs in storage.
type ExtractorError struct {
	Extractor string
	File      string
	Err       error
}

func (e ExtractorError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %v", e.Extractor, e.Err)
	}

	return fmt.Sprintf("%s(%s): %v", e.Extractor, e.File, e.Err)
}

// Result summarizes one process/reindex run.
type Result struct {
	ChunksUpserted int
	ChunksCreated  int
	FilesVisited   int
	Errors         []ExtractorError
}

func (r *Result) addError(extractor, file string, err error) {
	r.Errors = append(r.Errors, ExtractorError{Extractor: extractor, File: file, Err: err})
}
