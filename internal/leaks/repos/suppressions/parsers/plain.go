package parsers

import (
	"bufio"
	"io"
	"strings"
	"time"

	logpkg "github.com/haukened/leaksift/internal/leaks/common/log"
	"github.com/haukened/leaksift/internal/leaks/domain"
)

// ParseRuleList parses a newline-delimited list of regular expressions into
// SuppressionRule values.
//
// Behavior:
// - Supports whole-line comments starting with '#'. Inline comments are NOT
//   stripped because '#' is a legal character inside a regular expression.
// - Trims surrounding whitespace and a leading BOM
// - Skips empty lines
// - De-duplicates by pattern text while preserving first-seen order
// - Skips patterns that fail to compile rather than failing the entire parse
// - Each rule is attributed to the provided source and timestamped with now
func ParseRuleList(r io.Reader, source string, logger logpkg.Logger, now time.Time) ([]domain.SuppressionRule, error) {
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.SuppressionRule, 0, 8)
	logger.Debug(map[string]any{"source": source}, "parse_rule_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		line = strings.TrimPrefix(line, "\uFEFF")

		pattern := strings.TrimSpace(line)
		if pattern == "" {
			logger.Debug(map[string]any{"line": lineNum}, "skip_empty")
			continue
		}
		if strings.HasPrefix(pattern, "#") {
			logger.Debug(map[string]any{"line": lineNum}, "skip_comment")
			continue
		}

		if _, ok := seen[pattern]; ok {
			logger.Debug(map[string]any{"line": lineNum, "pattern": pattern}, "skip_duplicate")
			continue
		}

		rule, err := domain.NewSuppressionRule(pattern, source, now)
		if err != nil {
			// Skip invalid entries rather than failing the entire parse.
			logger.Debug(map[string]any{"line": lineNum, "pattern": pattern, "error": err.Error()}, "skip_invalid_pattern")
			continue
		}
		out = append(out, rule)
		seen[pattern] = struct{}{}
		logger.Debug(map[string]any{"line": lineNum, "pattern": rule.Pattern}, "emit_rule")
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_rule_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_rule_list_done")
	return out, nil
}
