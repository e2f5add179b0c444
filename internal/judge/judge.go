// Package judge verifies produced answers against task ground truth. It
// supports exact, structured and pattern verification plus a lenient second
// pass that extracts a minimal answer fragment from verbose output before
// re-applying the primary mode.
package judge

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sergi/go-diff/diffmatchpatch"

	"arena/internal/suite"
)

// Failure reason codes. All are trial-local; none aborts a batch.
const (
	ReasonMismatch        = "mismatch"
	ReasonParseError      = "parse_error"
	ReasonSchemaViolation = "schema_violation"
	ReasonValueMismatch   = "value_mismatch"
	ReasonPatternNotFound = "pattern_not_found"
	ReasonBadPattern      = "bad_pattern"
)

// Verdict is the outcome of judging one answer under one mode.
type Verdict struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`

	// SchemaValid is set for structured-mode verdicts: true when the output
	// parsed and satisfied the schema, independent of value comparison.
	SchemaValid bool `json:"schema_valid,omitempty"`
}

func pass(detail string) Verdict {
	return Verdict{Passed: true, Detail: detail}
}

func fail(reason, detail string) Verdict {
	return Verdict{Passed: false, Reason: reason, Detail: detail}
}

// Judge evaluates answers. It is safe for concurrent use; compiled patterns
// and schemas are cached across trials.
type Judge struct {
	patterns *lru.Cache[string, *regexp.Regexp]
	schemas  *lru.Cache[string, *jsonschema.Schema]
}

// New builds a Judge with bounded compilation caches.
func New() *Judge {
	patterns, _ := lru.New[string, *regexp.Regexp](256)
	schemas, _ := lru.New[string, *jsonschema.Schema](256)
	return &Judge{patterns: patterns, schemas: schemas}
}

// Strict applies the task's primary mode to the raw output.
func (j *Judge) Strict(spec suite.JudgeSpec, output string, expected any) Verdict {
	switch spec.Mode {
	case suite.ModeExact:
		return judgeExact(output, expected)
	case suite.ModeStructured:
		return j.judgeStructured(spec, output, expected, false)
	case suite.ModePattern:
		return j.judgePattern(spec, output)
	default:
		return fail(ReasonMismatch, fmt.Sprintf("unknown judge mode %q", spec.Mode))
	}
}

// Lenient re-judges a strict failure against an extracted minimal answer
// fragment. It never weakens a pass into a fail and never changes the
// expected value or schema, so the lenient pass set always contains the
// strict pass set.
func (j *Judge) Lenient(spec suite.JudgeSpec, output string, expected any, strict Verdict) Verdict {
	if strict.Passed {
		return strict
	}
	switch spec.Mode {
	case suite.ModeExact:
		fragment := extractExact(output, expected)
		if fragment == "" || fragment == strings.TrimSpace(output) {
			return strict
		}
		v := judgeExact(fragment, expected)
		if v.Passed {
			v.Detail = fmt.Sprintf("extracted %q", fragment)
		}
		return v
	case suite.ModeStructured:
		return j.lenientStructured(spec, output, expected, strict)
	case suite.ModePattern:
		return j.lenientPattern(spec, output, strict)
	default:
		return strict
	}
}

// judgeExact compares whitespace-trimmed output to the stringified expected
// value, case-sensitively.
func judgeExact(output string, expected any) Verdict {
	got := strings.TrimSpace(output)
	want := strings.TrimSpace(fmt.Sprintf("%v", expected))
	if got == want {
		return pass(fmt.Sprintf("exact match: %q", got))
	}
	return fail(ReasonMismatch, compactDiff(got, want))
}

// judgePattern matches output against the task pattern, case-insensitively
// unless the pattern sets its own inline flags.
func (j *Judge) judgePattern(spec suite.JudgeSpec, output string) Verdict {
	re, err := j.compile(spec.Pattern)
	if err != nil {
		return fail(ReasonBadPattern, err.Error())
	}
	if re.MatchString(strings.TrimSpace(output)) {
		return pass(fmt.Sprintf("pattern %q matched", spec.Pattern))
	}
	return fail(ReasonPatternNotFound, fmt.Sprintf("pattern %q not found in output", spec.Pattern))
}

// lenientPattern retries the pattern against individual output tokens,
// stripped of surrounding punctuation.
func (j *Judge) lenientPattern(spec suite.JudgeSpec, output string, strict Verdict) Verdict {
	re, err := j.compile(spec.Pattern)
	if err != nil {
		return strict
	}
	for _, token := range strings.Fields(output) {
		token = strings.Trim(token, ".,!?:;()[]{}\"'")
		if token == "" {
			continue
		}
		if re.MatchString(token) {
			v := pass(fmt.Sprintf("pattern %q matched token %q", spec.Pattern, token))
			return v
		}
	}
	return strict
}

func (j *Judge) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := j.patterns.Get(pattern); ok {
		return re, nil
	}
	src := pattern
	if !strings.HasPrefix(src, "(?") {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	j.patterns.Add(pattern, re)
	return re, nil
}

// compactDiff renders an inline diff between got and want, truncated so that
// verdict details stay log-friendly.
func compactDiff(got, want string) string {
	const limit = 200
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(got, want, false)
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("[+" + d.Text + "]")
		default:
			b.WriteString(d.Text)
		}
	}
	s := b.String()
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
