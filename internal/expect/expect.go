// Package expect checks a step's filtered output against its declared
// expectation, the final gate before an attempt is considered a pass.
package expect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lorikeet-run/lorikeet/internal/plan"
)

// numberStrip removes every character that cannot appear in a signed decimal
// number, keeping minus signs. Older revisions of this check
// stripped '-' along with other punctuation, which silently broke negative
// thresholds; this form is the one that supports them.
var numberStrip = regexp.MustCompile(`[^-0-9.,]`)

// Check reports whether output satisfies e, or an error explaining why not.
func Check(e plan.Expect, output string) error {
	switch e.Kind {
	case plan.ExpectAny:
		return nil

	case plan.ExpectMatches:
		ok, err := matches(e.Pattern, output)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("output `%s` does not match `%s`", output, e.Pattern)
		}
		return nil

	case plan.ExpectMatchesNot:
		ok, err := matches(e.Pattern, output)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("output `%s` matches `%s` but should not", output, e.Pattern)
		}
		return nil

	case plan.ExpectGreaterThan:
		val, err := parseNumber(output)
		if err != nil {
			return err
		}
		if !(val > e.Number) {
			return fmt.Errorf("output `%v` is not greater than `%v`", val, e.Number)
		}
		return nil

	case plan.ExpectLessThan:
		val, err := parseNumber(output)
		if err != nil {
			return err
		}
		if !(val < e.Number) {
			return fmt.Errorf("output `%v` is not less than `%v`", val, e.Number)
		}
		return nil

	default:
		return fmt.Errorf("unknown expect kind %v", e.Kind)
	}
}

func matches(pattern, output string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("could not create regex from `%s`: %w", pattern, err)
	}
	return re.MatchString(output), nil
}

// parseNumber strips everything but digits, '.', ',' and '-' from output,
// then drops ',' as a thousands separator before parsing, so steps like
// "42ms", "CPU: 3.14%" or "1,500 bytes" can feed numeric thresholds
// directly.
func parseNumber(output string) (float64, error) {
	stripped := numberStrip.ReplaceAllString(output, "")
	stripped = strings.ReplaceAll(stripped, ",", "")
	if stripped == "" {
		return 0, fmt.Errorf("could not find a number in `%s`", output)
	}
	val, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse `%s` as a number: %w", stripped, err)
	}
	return val, nil
}
