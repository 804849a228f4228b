package orchestrator

import (
	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/config"
)

// Options is an alias for config.ChunkingOptions; the orchestrator takes
// its instructions from the same struct the engine's configuration loads.
type Options = config.ChunkingOptions

func enabled(opts Options, ct chunktype.Chunk) bool {
	if len(opts.ChunkTypes) == 0 {
		return true
	}

	for _, want := range opts.ChunkTypes {
		if want == ct {
			return true
		}
	}

	return false
}
