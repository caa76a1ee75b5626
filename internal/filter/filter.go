// Package filter applies the ordered transform chain a step declares
// between its raw action output and its expectation check: regex capture,
// JMESPath query, or clearing the output entirely.
package filter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jmespath/go-jmespath"

	"github.com/lorikeet-run/lorikeet/internal/plan"
)

// Apply runs the filter chain left-to-right over input, returning the
// filtered string or the first filter's error.
func Apply(filters []plan.Filter, input string) (string, error) {
	val := input
	for _, f := range filters {
		next, err := applyOne(f, val)
		if err != nil {
			return "", err
		}
		val = next
	}
	return val, nil
}

func applyOne(f plan.Filter, val string) (string, error) {
	switch f.Kind {
	case plan.FilterNoOutput:
		return "", nil
	case plan.FilterJmesPath:
		return applyJmesPath(f.Expr, val)
	case plan.FilterRegex:
		return applyRegex(f, val)
	default:
		return "", fmt.Errorf("unknown filter kind %v", f.Kind)
	}
}

func applyJmesPath(expr, val string) (string, error) {
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return "", fmt.Errorf("could not compile jmespath: %w", err)
	}

	var data interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("could not format as json: %w", err)
	}

	result, err := compiled.Search(data)
	if err != nil {
		return "", fmt.Errorf("could not find jmes expression: %w", err)
	}

	if result == nil {
		return "", fmt.Errorf("could not find jmespath expression `%s` in output", expr)
	}

	return stringify(result), nil
}

// stringify renders a JMESPath result the way the shell would expect it:
// strings are returned bare (not JSON-quoted), everything else falls back
// to its JSON encoding.
func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}

func applyRegex(f plan.Filter, val string) (string, error) {
	group := f.Group
	if group == "" {
		group = "0"
	}

	re, err := regexp.Compile(f.Pattern)
	if err != nil {
		return "", fmt.Errorf("could not create regex from `%s`.  Error is: %w", f.Pattern, err)
	}

	match := re.FindStringSubmatchIndex(val)
	if match == nil {
		return "", fmt.Errorf("could not find `%s` in output", f.Pattern)
	}

	if num, err := strconv.Atoi(group); err == nil {
		if num*2+1 >= len(match) || match[num*2] < 0 {
			return "", fmt.Errorf("could not find group number `%s` in regex `%s`", group, f.Pattern)
		}
		return val[match[num*2]:match[num*2+1]], nil
	}

	names := re.SubexpNames()
	for i, name := range names {
		if name == group {
			if i*2+1 >= len(match) || match[i*2] < 0 {
				return "", fmt.Errorf("could not find group name `%s` in regex `%s`", group, f.Pattern)
			}
			return val[match[i*2]:match[i*2+1]], nil
		}
	}

	return "", fmt.Errorf("could not find group name `%s` in regex `%s`", group, f.Pattern)
}
