package judge

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	numericGroundTruthRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	firstNumberRe        = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\b`)
	isoDateRe            = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	firstISODateRe       = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

// answerPrefixes are boilerplate lead-ins stripped before single-word
// extraction, longest first so "The answer is" wins over "It is".
var answerPrefixes = []string{
	"the answer is",
	"the result is",
	"this is",
	"it is",
}

// extractExact pulls the smallest fragment of verbose output that could
// satisfy an exact comparison, inferring the fragment shape from the
// expected value: a number, an ISO date, or a single short word. It returns
// the empty string when no extraction applies.
func extractExact(output string, expected any) string {
	if expected == nil {
		return ""
	}
	output = strings.TrimSpace(output)
	want := strings.TrimSpace(fmt.Sprintf("%v", expected))

	switch {
	case numericGroundTruthRe.MatchString(want):
		if m := firstNumberRe.FindStringSubmatch(output); m != nil {
			return m[1]
		}
	case isoDateRe.MatchString(want):
		if m := firstISODateRe.FindStringSubmatch(output); m != nil {
			return m[1]
		}
	case !strings.Contains(want, " ") && len(want) < 30:
		cleaned := output
		lowered := strings.ToLower(cleaned)
		for _, prefix := range answerPrefixes {
			if strings.HasPrefix(lowered, prefix) {
				cleaned = strings.TrimSpace(cleaned[len(prefix):])
				break
			}
		}
		words := strings.Fields(cleaned)
		if len(words) > 0 {
			return strings.TrimRight(words[0], ".,!?:;")
		}
	}
	return ""
}
