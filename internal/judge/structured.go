package judge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"arena/internal/suite"
)

var (
	codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")
	jsonBodyRe  = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)
)

// judgeStructured parses the output as a structured value, validates it
// against the task schema when one is given, then compares it field by field
// with the expected value. With repair set, malformed JSON is run through
// jsonrepair before giving up; that path is reserved for the lenient pass.
func (j *Judge) judgeStructured(spec suite.JudgeSpec, output string, expected any, repair bool) Verdict {
	parsed, err := parseStructured(output, repair)
	if err != nil {
		return fail(ReasonParseError, err.Error())
	}

	if spec.Schema != nil {
		schema, err := j.compileSchema(spec.Schema)
		if err != nil {
			return fail(ReasonSchemaViolation, err.Error())
		}
		if err := schema.Validate(parsed); err != nil {
			return fail(ReasonSchemaViolation, schemaErrorDetail(err))
		}
	}

	v := Verdict{SchemaValid: true}
	if expected == nil {
		v.Passed = true
		v.Detail = "structure valid, no expected value to compare"
		return v
	}

	if field, detail, equal := compareValues(parsed, expected, spec.IgnoreFields); !equal {
		v.Reason = ReasonValueMismatch
		if field != "" {
			v.Detail = fmt.Sprintf("field %s: %s", field, detail)
		} else {
			v.Detail = detail
		}
		return v
	}

	v.Passed = true
	if len(spec.IgnoreFields) > 0 {
		v.Detail = fmt.Sprintf("structured match (ignoring %s)", strings.Join(spec.IgnoreFields, ", "))
	} else {
		v.Detail = "structured match"
	}
	return v
}

// lenientStructured retries parsing with jsonrepair enabled. Schema and
// expected value are unchanged; only the extraction is more forgiving.
func (j *Judge) lenientStructured(spec suite.JudgeSpec, output string, expected any, strict Verdict) Verdict {
	v := j.judgeStructured(spec, output, expected, true)
	if !v.Passed {
		return strict
	}
	return v
}

// parseStructured extracts a JSON document from possibly verbose text: a
// direct parse first, then a fenced code block, then the widest embedded
// object or array. With repair set, jsonrepair gets a final attempt on the
// best candidate.
func parseStructured(text string, repair bool) (any, error) {
	text = strings.TrimSpace(text)

	candidates := []string{text}
	if m := codeBlockRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := jsonBodyRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}

	for _, candidate := range candidates {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, nil
		}
	}

	if repair {
		for _, candidate := range candidates {
			repaired, err := jsonrepair.JSONRepair(candidate)
			if err != nil {
				continue
			}
			var parsed any
			if err := json.Unmarshal([]byte(repaired), &parsed); err == nil {
				return parsed, nil
			}
		}
	}

	preview := text
	if len(preview) > 80 {
		preview = preview[:80] + "..."
	}
	return nil, fmt.Errorf("no valid JSON in output: %q", preview)
}

func (j *Judge) compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	key := string(raw)
	if compiled, ok := j.schemas.Get(key); ok {
		return compiled, nil
	}
	compiled, err := jsonschema.CompileString("task-schema.json", key)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	j.schemas.Add(key, compiled)
	return compiled, nil
}

func schemaErrorDetail(err error) string {
	var ve *jsonschema.ValidationError
	if ok := asValidationError(err, &ve); ok {
		return ve.Error()
	}
	return err.Error()
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if ok {
		*target = ve
	}
	return ok
}

// compareValues compares a parsed output value against the expected value,
// skipping top-level object fields named in ignore. It returns the first
// differing field (or index path) and a human-readable detail.
func compareValues(got, want any, ignore []string) (field, detail string, equal bool) {
	ignoreSet := make(map[string]struct{}, len(ignore))
	for _, f := range ignore {
		ignoreSet[f] = struct{}{}
	}

	gotMap, gotIsMap := got.(map[string]any)
	wantMap, wantIsMap := want.(map[string]any)
	if gotIsMap && wantIsMap {
		keys := make([]string, 0, len(wantMap))
		for k := range wantMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, skip := ignoreSet[k]; skip {
				continue
			}
			gv, present := gotMap[k]
			if !present {
				return k, "missing", false
			}
			if f, d, eq := compareValues(gv, wantMap[k], nil); !eq {
				if f != "" {
					return k + "." + f, d, false
				}
				return k, d, false
			}
		}
		for k := range gotMap {
			if _, skip := ignoreSet[k]; skip {
				continue
			}
			if _, present := wantMap[k]; !present {
				return k, "unexpected field", false
			}
		}
		return "", "", true
	}

	gotList, gotIsList := got.([]any)
	wantList, wantIsList := want.([]any)
	if gotIsList && wantIsList {
		if len(gotList) != len(wantList) {
			return "", fmt.Sprintf("length %d, want %d", len(gotList), len(wantList)), false
		}
		for i := range wantList {
			if f, d, eq := compareValues(gotList[i], wantList[i], nil); !eq {
				idx := fmt.Sprintf("[%d]", i)
				if f != "" {
					idx += "." + f
				}
				return idx, d, false
			}
		}
		return "", "", true
	}

	if scalarEqual(got, want) {
		return "", "", true
	}
	return "", fmt.Sprintf("got %v, want %v", got, want), false
}

// scalarEqual compares scalars with numeric widening so YAML-decoded ints
// and JSON-decoded floats agree.
func scalarEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
