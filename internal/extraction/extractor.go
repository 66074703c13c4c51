package extraction

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/DandaAkhilReddy/reddy/internal/common"
)

// Strategy identifies which parse path recovered the JSON document.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyMarkdown Strategy = "markdown"
	StrategyRegex    Strategy = "regex"
	StrategyRepaired Strategy = "repaired"
)

// Reliability returns the parse reliability factor used by confidence scoring.
// A document recovered by repair is worth much less than one that parsed clean.
func (s Strategy) Reliability() float64 {
	switch s {
	case StrategyDirect:
		return 1.0
	case StrategyMarkdown:
		return 0.95
	case StrategyRegex:
		return 0.85
	case StrategyRepaired:
		return 0.65
	default:
		return 0.0
	}
}

// TagErrorRepaired marks a document that only parsed after repair rewrites.
const TagErrorRepaired = "ERROR_REPAIRED"

// rawSnippetMax bounds how much of the raw response an error carries.
const rawSnippetMax = 160

// UnparseableError reports a response no strategy could turn into a JSON
// object. Raw is truncated so the error is safe to log as-is.
type UnparseableError struct {
	Attempted []Strategy
	Raw       string
}

func (e *UnparseableError) Error() string {
	names := make([]string, 0, len(e.Attempted))
	for _, s := range e.Attempted {
		names = append(names, string(s))
	}
	return fmt.Sprintf("no parseable JSON object in model response (tried %s): %q",
		strings.Join(names, ", "), e.Raw)
}

func (e *UnparseableError) Unwrap() error { return common.ErrExtraction }

func truncateRaw(s string) string {
	if len(s) <= rawSnippetMax {
		return s
	}
	return s[:rawSnippetMax] + "..."
}

// Result is a successfully recovered JSON object plus provenance.
type Result struct {
	Data        map[string]any
	Strategy    Strategy
	Reliability float64
	Tags        []string
}

// Extractor recovers a JSON object from raw vision model output. Models wrap
// answers in markdown fences, prepend prose, or emit almost-JSON; the
// strategies below are tried in order of decreasing trust.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

var (
	reFence         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)
	rePyTrue        = regexp.MustCompile(`\bTrue\b`)
	rePyFalse       = regexp.MustCompile(`\bFalse\b`)
	rePyNone        = regexp.MustCompile(`\b(?:None|NaN)\b`)
)

// Extract runs the strategy cascade and returns the first object that parses.
// It fails only when no strategy yields a JSON object.
func (e *Extractor) Extract(raw string) (*Result, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, common.NewExtractionError("empty model response", nil)
	}

	attempted := []Strategy{StrategyDirect}
	if m, ok := parseObject(trimmed); ok {
		return e.result(m, StrategyDirect, nil), nil
	}

	if inner := stripFences(trimmed); inner != "" {
		attempted = append(attempted, StrategyMarkdown)
		if m, ok := parseObject(inner); ok {
			return e.result(m, StrategyMarkdown, nil), nil
		}
	}

	candidate, found := balancedObject(trimmed)
	if found {
		attempted = append(attempted, StrategyRegex)
		if m, ok := parseObject(candidate); ok {
			return e.result(m, StrategyRegex, nil), nil
		}
		// last resort: rewrite common model mistakes and reparse
		if m, ok := parseObject(repairJSON(candidate)); ok {
			return e.result(m, StrategyRepaired, []string{TagErrorRepaired}), nil
		}
	}
	attempted = append(attempted, StrategyRepaired)
	if m, ok := parseObject(repairJSON(trimmed)); ok {
		return e.result(m, StrategyRepaired, []string{TagErrorRepaired}), nil
	}

	uerr := &UnparseableError{Attempted: attempted, Raw: truncateRaw(trimmed)}
	e.logger.Warn("extract.unparseable", "attempted", len(attempted), "raw", uerr.Raw)
	return nil, uerr
}

func (e *Extractor) result(m map[string]any, s Strategy, tags []string) *Result {
	if s != StrategyDirect {
		e.logger.Debug("extract.fallback", "strategy", string(s), "tags", tags)
	}
	return &Result{Data: m, Strategy: s, Reliability: s.Reliability(), Tags: tags}
}

func parseObject(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func stripFences(s string) string {
	match := reFence.FindStringSubmatch(s)
	if match == nil {
		return ""
	}
	return match[1]
}

// balancedObject finds the first '{' and walks to its matching '}' by brace
// depth, skipping braces inside string literals. Trailing prose after the
// object is thereby ignored.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repairJSON rewrites mistakes models make often enough to be worth fixing:
// trailing commas, Python literals, and single-quoted documents. The result
// still has to survive json.Unmarshal, so an over-eager rewrite costs nothing.
func repairJSON(s string) string {
	s = reTrailingComma.ReplaceAllString(s, "$1")
	s = rePyTrue.ReplaceAllString(s, "true")
	s = rePyFalse.ReplaceAllString(s, "false")
	s = rePyNone.ReplaceAllString(s, "null")
	if !strings.Contains(s, `"`) && strings.Contains(s, `'`) {
		s = strings.ReplaceAll(s, `'`, `"`)
	}
	return s
}
