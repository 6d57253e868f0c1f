package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/leaksift/internal/leaks/domain"
)

// fakeSuppressor drops any block containing one of the given substrings.
type fakeSuppressor struct {
	needles []string
}

func (s *fakeSuppressor) Decide(text string) domain.SuppressionDecision {
	for _, n := range s.needles {
		if strings.Contains(text, n) {
			return domain.SuppressionDecision{Suppressed: true, Pattern: n, Source: "test"}
		}
	}
	return domain.KeepDecision()
}

func newTestFilter(t *testing.T, needles ...string) *Filter {
	t.Helper()
	f, err := New(Options{Suppressor: &fakeSuppressor{needles: needles}})
	require.NoError(t, err)
	return f
}

func TestNew_RequiresSuppressor(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suppressor")
}

func TestFilterText_PassthroughIsVerbatim(t *testing.T) {
	input := "Process 1234 is not debuggable. Due to security restrictions.\n" +
		"Process:         demo [1234]\n" +
		"\n" +
		"leaks Report Version: 4.0\n" +
		"Process 1234: 0 leaks for 0 total leaked bytes.\n"

	f := newTestFilter(t, "NSArray")
	res := f.FilterText(input)

	assert.Equal(t, input, res.Output)
	assert.Equal(t, 0, res.LeaksSeen)
	assert.Equal(t, 0, res.LeaksSuppressed)
	assert.False(t, res.HasUnsuppressedLeaks())
}

func TestFilterText_FullSuppression(t *testing.T) {
	input := "Leak: 0x600000e24180  size=48  NSArray  CoreFoundation\n" +
		"Call stack:\n" +
		"    0x1a2b3c [CFArrayCreate]\n" +
		"    0x4d5e6f [_glfwDestroyWindowCocoa]\n" +
		"\n"

	f := newTestFilter(t, "NSArray")
	res := f.FilterText(input)

	assert.NotContains(t, res.Output, "Leak: ")
	assert.Equal(t, 1, res.LeaksSeen)
	assert.Equal(t, 1, res.LeaksSuppressed)
	assert.False(t, res.HasUnsuppressedLeaks())
}

func TestFilterText_PartialSuppression(t *testing.T) {
	suppressed := "Leak: 0x600000e24180  size=48  NSArray  CoreFoundation\n" +
		"Call stack:\n" +
		"    0x1a2b3c [CFArrayCreate]\n"
	kept := "Leak: 0x600000aa0000  size=128  malloc in loadTexture\n" +
		"Call stack:\n" +
		"    0x7f8a9b [loadTexture]\n" +
		"    0x7f8ffc [main]\n"
	input := suppressed + "\n" + kept + "\n"

	f := newTestFilter(t, "NSArray")
	res := f.FilterText(input)

	assert.NotContains(t, res.Output, "NSArray")
	// the surviving block is verbatim, call stack included
	assert.Contains(t, res.Output, kept)
	assert.Equal(t, 2, res.LeaksSeen)
	assert.Equal(t, 1, res.LeaksSuppressed)
	assert.True(t, res.HasUnsuppressedLeaks())
}

func TestFilterText_UnterminatedTrailingBlock(t *testing.T) {
	t.Run("suppressed", func(t *testing.T) {
		input := "Leak: 0x1  size=16  NSArray  CoreFoundation\nCall stack:\n    0x1 [x]"
		f := newTestFilter(t, "NSArray")
		res := f.FilterText(input)
		assert.NotContains(t, res.Output, "Leak: ")
		assert.False(t, res.HasUnsuppressedLeaks())
	})

	t.Run("kept", func(t *testing.T) {
		input := "Leak: 0x1  size=16  malloc\nCall stack:\n    0x1 [x]"
		f := newTestFilter(t, "NSArray")
		res := f.FilterText(input)
		assert.Contains(t, res.Output, input)
		assert.True(t, res.HasUnsuppressedLeaks())
	})
}

func TestFilterText_BackToBackLeakBlocks(t *testing.T) {
	// a new "Leak: " line closes the previous block even without a blank line
	input := "Leak: 0x1  size=16  NSArray  CoreFoundation\n" +
		"Leak: 0x2  size=32  malloc\n" +
		"\n"

	f := newTestFilter(t, "NSArray")
	res := f.FilterText(input)

	assert.NotContains(t, res.Output, "0x1")
	assert.Contains(t, res.Output, "Leak: 0x2  size=32  malloc")
	assert.Equal(t, 2, res.LeaksSeen)
	assert.Equal(t, 1, res.LeaksSuppressed)
}

func TestFilterText_OrderPreservation(t *testing.T) {
	input := strings.Join([]string{
		"header line",
		"Leak: 0x1  size=16  NSArray  CoreFoundation",
		"Call stack:",
		"    0x1 [x]",
		"",
		"middle line",
		"Leak: 0x2  size=32  malloc",
		"Call stack:",
		"    0x2 [y]",
		"",
		"footer line",
	}, "\n")

	f := newTestFilter(t, "NSArray")
	res := f.FilterText(input)

	// surviving elements keep their relative input order
	hdr := strings.Index(res.Output, "header line")
	mid := strings.Index(res.Output, "middle line")
	leak := strings.Index(res.Output, "Leak: 0x2")
	ftr := strings.Index(res.Output, "footer line")
	require.NotEqual(t, -1, hdr)
	require.NotEqual(t, -1, mid)
	require.NotEqual(t, -1, leak)
	require.NotEqual(t, -1, ftr)
	assert.Less(t, hdr, mid)
	assert.Less(t, mid, leak)
	assert.Less(t, leak, ftr)
}

func TestFilterText_LonePassthroughBeforeBlank(t *testing.T) {
	// a lone non-leak line followed by a blank line is pass-through,
	// never absorbed into a block
	input := "just a line\n\nLeak: 0x2  size=32  malloc\n\n"
	f := newTestFilter(t)
	res := f.FilterText(input)
	assert.True(t, strings.HasPrefix(res.Output, "just a line\n\n"))
}

func TestFilterText_IndentedCallStackAttaches(t *testing.T) {
	// "Call stack:" lines attach to the block regardless of indentation
	input := "Leak: 0x1  size=16  NSArray  CoreFoundation\n" +
		"   Call stack:\n" +
		"    0x1 [x]\n" +
		"\n"
	f := newTestFilter(t, "NSArray")
	res := f.FilterText(input)
	assert.NotContains(t, res.Output, "Call stack:")
}

func TestFilterText_EmptyInput(t *testing.T) {
	f := newTestFilter(t)
	res := f.FilterText("")
	assert.Equal(t, "", res.Output)
	assert.False(t, res.HasUnsuppressedLeaks())
}

func TestResult_HasUnsuppressedLeaks(t *testing.T) {
	assert.True(t, Result{Output: "x\nLeak: 0x1\n"}.HasUnsuppressedLeaks())
	assert.False(t, Result{Output: "0 leaks for 0 total leaked bytes"}.HasUnsuppressedLeaks())
}

// recordingLogger captures debug events so tests can assert on decision
// metadata.
type recordingLogger struct {
	msgs   []string
	fields []map[string]any
}

func (l *recordingLogger) Debug(f map[string]any, msg string) {
	l.fields = append(l.fields, f)
	l.msgs = append(l.msgs, msg)
}
func (l *recordingLogger) Info(map[string]any, string)  {}
func (l *recordingLogger) Warn(map[string]any, string)  {}
func (l *recordingLogger) Error(map[string]any, string) {}
func (l *recordingLogger) Panic(map[string]any, string) {}
func (l *recordingLogger) Fatal(map[string]any, string) {}

func (l *recordingLogger) kindFor(msg string) (string, bool) {
	for i, m := range l.msgs {
		if m == msg {
			kind, ok := l.fields[i]["kind"].(string)
			return kind, ok
		}
	}
	return "", false
}

func TestFilterText_DecisionLoggingCarriesBlockKind(t *testing.T) {
	rec := &recordingLogger{}
	f, err := New(Options{
		Suppressor: &fakeSuppressor{needles: []string{"NSArray"}},
		Logger:     rec,
	})
	require.NoError(t, err)

	input := strings.Join([]string{
		"Leak: 0x1  size=48  NSArray  CoreFoundation",
		"",
		"Leak: 0x2  size=32  malloc",
		"",
		// a stray call-stack line opens a non-leak block
		"Call stack:",
		"    0x9 [z]",
		"",
	}, "\n")

	res := f.FilterText(input)

	// the stray call-stack block survives but is not counted as a leak
	assert.Equal(t, 2, res.LeaksSeen)
	assert.Equal(t, 1, res.LeaksSuppressed)

	kind, ok := rec.kindFor("block_suppressed")
	require.True(t, ok)
	assert.Equal(t, "leak", kind)

	kind, ok = rec.kindFor("block_kept")
	require.True(t, ok)
	assert.Equal(t, "leak", kind)

	// the last kept event is the stray call-stack block
	var lastKept map[string]any
	for i, m := range rec.msgs {
		if m == "block_kept" {
			lastKept = rec.fields[i]
		}
	}
	require.NotNil(t, lastKept)
	assert.Equal(t, "passthrough", lastKept["kind"])
}

// sanity check: the default rules drop exactly the Cocoa-internal reports
// they were written for when wired through a real rule-backed suppressor.
type ruleSuppressor struct {
	rules []domain.SuppressionRule
}

func (s *ruleSuppressor) Decide(text string) domain.SuppressionDecision {
	for _, r := range s.rules {
		if r.Matches(text) {
			return domain.SuppressionDecision{Suppressed: true, Pattern: r.Pattern, Source: r.Source}
		}
	}
	return domain.KeepDecision()
}

func TestFilterText_WithRealRules(t *testing.T) {
	now := time.Unix(1723550000, 0)
	r1, err := domain.NewSuppressionRule(`NSArray.*CoreFoundation`, "builtin", now)
	require.NoError(t, err)
	r2, err := domain.NewSuppressionRule(`AXObserverCookie.*HIServices`, "builtin", now)
	require.NoError(t, err)

	f, err := New(Options{Suppressor: &ruleSuppressor{rules: []domain.SuppressionRule{r1, r2}}})
	require.NoError(t, err)

	input := strings.Join([]string{
		"Leak: 0x1  size=48  NSArray  CoreFoundation",
		"Call stack:",
		"    0x1 [_glfwDestroyWindowCocoa]",
		"",
		"Leak: 0x2  size=64  AXObserverCookie  HIServices",
		"Call stack:",
		"    0x2 [_glfwPollEventsCocoa]",
		"",
		"Leak: 0x3  size=128  malloc",
		"",
	}, "\n")

	res := f.FilterText(input)
	assert.Equal(t, 3, res.LeaksSeen)
	assert.Equal(t, 2, res.LeaksSuppressed)
	assert.Contains(t, res.Output, "Leak: 0x3")
	assert.NotContains(t, res.Output, "0x1")
	assert.NotContains(t, res.Output, "0x2")
	assert.True(t, res.HasUnsuppressedLeaks())
}
