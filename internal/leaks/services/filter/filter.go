package filter

import (
	"fmt"
	"strings"

	"github.com/haukened/leaksift/internal/leaks/common/log"
	"github.com/haukened/leaksift/internal/leaks/domain"
)

const errSuppressorRequired = "a suppressor is required"

// Filter segments captured leak-detector output into leak blocks and
// pass-through lines, drops suppressed blocks, and reassembles the rest.
//
// Guarantees:
// - pass-through lines are emitted verbatim, in order
// - each leak block is kept whole or dropped whole, never split
// - the output is always a subset of the input; nothing is rewritten
type Filter struct {
	suppressor Suppressor
	logger     log.Logger
}

// Options defines configuration parameters for the filter service.
type Options struct {
	// required
	Suppressor Suppressor
	// optional; defaults to a noop logger
	Logger log.Logger
}

// New creates a filter service from the given options.
func New(opts Options) (*Filter, error) {
	if opts.Suppressor == nil {
		return nil, fmt.Errorf(errSuppressorRequired)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Filter{
		suppressor: opts.Suppressor,
		logger:     opts.Logger,
	}, nil
}

// Result is the outcome of one filtering pass.
type Result struct {
	Output          string // filtered text, ready for a single stdout write
	LeaksSeen       int    // leak blocks found in the input
	LeaksSuppressed int    // leak blocks dropped by suppression rules
}

// HasUnsuppressedLeaks reports whether any leak report survived filtering.
// The check is the literal leak prefix in the final output text, which is
// also what drives the process exit code.
func (r Result) HasUnsuppressedLeaks() bool {
	return strings.Contains(r.Output, domain.LeakPrefix)
}

// FilterText runs the block-segmentation state machine over the captured
// output and returns the filtered text.
//
// The machine has two states, tracked by whether the current block is empty:
// a "Leak: " line opens a block (closing any previous one first), non-blank
// lines extend an open block, and a blank line closes it. A "Call stack:"
// line always attaches to the current block. Everything outside a block
// passes through untouched. End of input closes any open block.
func (f *Filter) FilterText(text string) Result {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	var res Result
	var current domain.Block

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, domain.LeakPrefix):
			if !current.Empty() {
				out = f.closeBlock(&current, out, &res)
			}
			current = domain.NewLeakBlock(line)

		case strings.HasPrefix(trimmed, domain.CallStackPrefix) || (!current.Empty() && trimmed != ""):
			current.Append(line)

		case trimmed == "" && !current.Empty():
			// The closing blank line belongs to the block so surviving
			// blocks keep their original spacing.
			current.Append(line)
			out = f.closeBlock(&current, out, &res)

		default:
			out = append(out, line)
		}
	}

	// End of stream acts as an implicit terminator.
	if !current.Empty() {
		out = f.closeBlock(&current, out, &res)
	}

	res.Output = strings.Join(out, "\n")
	f.logger.Debug(map[string]any{
		"leaks_seen":       res.LeaksSeen,
		"leaks_suppressed": res.LeaksSuppressed,
	}, "filter_pass_done")
	return res
}

// closeBlock evaluates the current block against the suppressor, appends it
// to out if it survives, and resets the accumulator. Blocks opened by a
// stray call-stack line carry the passthrough kind; only leak blocks count
// toward LeaksSeen.
func (f *Filter) closeBlock(current *domain.Block, out []string, res *Result) []string {
	if current.IsLeak() {
		res.LeaksSeen++
	}
	text := current.Text()
	decision := f.suppressor.Decide(text)
	if decision.IsSuppressed() {
		res.LeaksSuppressed++
		f.logger.Debug(map[string]any{
			"kind":    current.Kind.String(),
			"pattern": decision.Pattern,
			"source":  decision.Source,
			"lines":   len(current.Lines),
		}, "block_suppressed")
	} else {
		out = append(out, text)
		f.logger.Debug(map[string]any{
			"kind":  current.Kind.String(),
			"lines": len(current.Lines),
		}, "block_kept")
	}
	*current = domain.Block{}
	return out
}
