package domain

import (
	"fmt"
	"strings"
)

// LeakPrefix is the literal prefix the leak-detection tool prints at the
// start of every reported leak line.
const LeakPrefix = "Leak: "

// CallStackPrefix marks the call-stack line inside a leak report.
const CallStackPrefix = "Call stack:"

// BlockKind classifies a segment of captured output.
//
// leak        - a contiguous leak report, candidate for suppression
// passthrough - any line outside a leak report, always emitted verbatim
type BlockKind uint8

const (
	// BlockPassthrough marks text outside any leak report. It is the zero
	// value, so an accumulator opened by a stray call-stack line (no
	// preceding "Leak: " line) stays non-leak.
	BlockPassthrough BlockKind = iota
	// BlockLeak is a contiguous leak report.
	BlockLeak
)

// String returns a stable string representation of the block kind.
func (k BlockKind) String() string {
	switch k {
	case BlockPassthrough:
		return "passthrough"
	case BlockLeak:
		return "leak"
	default:
		return fmt.Sprintf("BlockKind(%d)", k)
	}
}

// Block is one unit of captured output: either a single pass-through line or
// a whole leak report. Lines are stored exactly as captured; joining them
// with newlines reproduces the original text byte for byte.
type Block struct {
	Kind  BlockKind
	Lines []string
}

// NewLeakBlock starts a leak block from its opening "Leak: " line.
func NewLeakBlock(first string) Block {
	return Block{Kind: BlockLeak, Lines: []string{first}}
}

// Append adds a captured line to the block.
func (b *Block) Append(line string) {
	b.Lines = append(b.Lines, line)
}

// Text returns the block's lines joined with newlines, verbatim.
func (b Block) Text() string {
	return strings.Join(b.Lines, "\n")
}

// IsLeak returns true when the block is a leak report.
func (b Block) IsLeak() bool { return b.Kind == BlockLeak }

// Empty returns true when the block holds no lines.
func (b Block) Empty() bool { return len(b.Lines) == 0 }
