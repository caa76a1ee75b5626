package planfile

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lorikeet-run/lorikeet/internal/plan"
)

// rawStep mirrors the recognised top-level keys of one step entry. Nodes
// rather than concrete types are used for every shape that can be either a
// scalar or a mapping, so decoding is deferred to the kind-specific helpers
// below.
type rawStep struct {
	Description string `yaml:"description"`

	Value  *string   `yaml:"value"`
	Step   *string   `yaml:"step"`
	Bash   yaml.Node `yaml:"bash"`
	HTTP   yaml.Node `yaml:"http"`
	System *string   `yaml:"system"`
	Disk   yaml.Node `yaml:"disk"`

	Matches     *string `yaml:"matches"`
	MatchesNot  *string `yaml:"matches_not"`
	GreaterThan *string `yaml:"greater_than"`
	LessThan    *string `yaml:"less_than"`

	Filters  []yaml.Node `yaml:"filters"`
	JmesPath yaml.Node   `yaml:"jmespath"`
	Regex    yaml.Node   `yaml:"regex"`

	DoOutput *bool `yaml:"do_output"`

	DelayMs      *uint `yaml:"delay_ms"`
	RetryCount   *uint `yaml:"retry_count"`
	RetryDelayMs *uint `yaml:"retry_delay_ms"`

	OnFail yaml.Node `yaml:"on_fail"`

	Require    yaml.Node `yaml:"require"`
	RequiredBy yaml.Node `yaml:"required_by"`
}

func decodeStep(name string, node *yaml.Node) (plan.Step, error) {
	var raw rawStep
	if err := node.Decode(&raw); err != nil {
		return plan.Step{}, fmt.Errorf("step `%s`: %w", name, err)
	}

	action, err := decodeAction(raw.Value, raw.Step, &raw.Bash, &raw.HTTP, raw.System, &raw.Disk)
	if err != nil {
		return plan.Step{}, fmt.Errorf("step `%s`: %w", name, err)
	}

	expectKind, pattern, number, err := decodeExpect(raw.Matches, raw.MatchesNot, raw.GreaterThan, raw.LessThan)
	if err != nil {
		return plan.Step{}, fmt.Errorf("step `%s`: %w", name, err)
	}

	filters, err := decodeFilters(raw.Filters, &raw.JmesPath, &raw.Regex)
	if err != nil {
		return plan.Step{}, fmt.Errorf("step `%s`: %w", name, err)
	}

	var onFail *plan.Action
	if raw.OnFail.Kind != 0 {
		var rawOnFail rawStep
		if err := raw.OnFail.Decode(&rawOnFail); err != nil {
			return plan.Step{}, fmt.Errorf("step `%s`: on_fail: %w", name, err)
		}
		a, err := decodeAction(rawOnFail.Value, rawOnFail.Step, &rawOnFail.Bash, &rawOnFail.HTTP, rawOnFail.System, &rawOnFail.Disk)
		if err != nil {
			return plan.Step{}, fmt.Errorf("step `%s`: on_fail: %w", name, err)
		}
		onFail = &a
	}

	require, err := decodeStringList(&raw.Require)
	if err != nil {
		return plan.Step{}, fmt.Errorf("step `%s`: require: %w", name, err)
	}
	requiredBy, err := decodeStringList(&raw.RequiredBy)
	if err != nil {
		return plan.Step{}, fmt.Errorf("step `%s`: required_by: %w", name, err)
	}

	doOutput := true
	if raw.DoOutput != nil {
		doOutput = *raw.DoOutput
	}

	return plan.Step{
		Name:        name,
		Description: raw.Description,
		Action:      action,
		Filters:     filters,
		Expect:      plan.Expect{Kind: expectKind, Pattern: pattern, Number: number},
		Retry: plan.RetryPolicy{
			RetryCount:     derefUint(raw.RetryCount),
			RetryDelayMs:   derefUint(raw.RetryDelayMs),
			InitialDelayMs: derefUint(raw.DelayMs),
		},
		OnFail:     onFail,
		DoOutput:   doOutput,
		Require:    require,
		RequiredBy: requiredBy,
	}, nil
}

func derefUint(p *uint) uint {
	if p == nil {
		return 0
	}
	return *p
}

// decodeAction applies the fixed precedence order — step > bash > http >
// system > disk > else value — selecting the first non-empty key present.
func decodeAction(value, ref *string, bash, httpNode *yaml.Node, system *string, disk *yaml.Node) (plan.Action, error) {
	switch {
	case ref != nil:
		return plan.Action{Kind: plan.ActionRef, Ref: *ref}, nil

	case bash.Kind != 0:
		spec, err := decodeShell(bash)
		if err != nil {
			return plan.Action{}, err
		}
		return plan.Action{Kind: plan.ActionShell, Shell: spec}, nil

	case httpNode.Kind != 0:
		spec, err := decodeHTTP(httpNode)
		if err != nil {
			return plan.Action{}, err
		}
		return plan.Action{Kind: plan.ActionHTTP, HTTP: spec}, nil

	case system != nil:
		kind, err := decodeSystemKind(*system)
		if err != nil {
			return plan.Action{}, err
		}
		return plan.Action{Kind: plan.ActionSystem, System: kind}, nil

	case disk.Kind != 0:
		spec, err := decodeDisk(disk)
		if err != nil {
			return plan.Action{}, err
		}
		return plan.Action{Kind: plan.ActionDisk, Disk: spec}, nil

	case value != nil:
		return plan.Action{Kind: plan.ActionValue, Value: *value}, nil

	default:
		return plan.Action{Kind: plan.ActionValue, Value: ""}, nil
	}
}

func decodeShell(node *yaml.Node) (*plan.ShellSpec, error) {
	if node.Kind == yaml.ScalarNode {
		return &plan.ShellSpec{Cmd: node.Value}, nil
	}

	var s struct {
		Cmd       string `yaml:"cmd"`
		FullError bool   `yaml:"full_error"`
	}
	if err := node.Decode(&s); err != nil {
		return nil, fmt.Errorf("bash: %w", err)
	}
	return &plan.ShellSpec{Cmd: s.Cmd, FullError: s.FullError}, nil
}

func decodeHTTP(node *yaml.Node) (*plan.HTTPSpec, error) {
	if node.Kind == yaml.ScalarNode {
		return &plan.HTTPSpec{URL: node.Value}, nil
	}

	var h struct {
		URL         string            `yaml:"url"`
		Method      string            `yaml:"method"`
		Status      int               `yaml:"status"`
		Headers     map[string]string    `yaml:"headers"`
		User        string               `yaml:"user"`
		Pass        string               `yaml:"pass"`
		Body        string               `yaml:"body"`
		Form        map[string]string    `yaml:"form"`
		Multipart   map[string]yaml.Node `yaml:"multipart"`
		SaveCookies bool                 `yaml:"save_cookies"`
		VerifySSL   *bool                `yaml:"verify_ssl"`
	}
	if err := node.Decode(&h); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}

	var multipart map[string]plan.MultipartValue
	if len(h.Multipart) > 0 {
		multipart = make(map[string]plan.MultipartValue, len(h.Multipart))
		for field, partNode := range h.Multipart {
			mv, err := decodeMultipartValue(&partNode)
			if err != nil {
				return nil, fmt.Errorf("http: multipart `%s`: %w", field, err)
			}
			multipart[field] = mv
		}
	}

	return &plan.HTTPSpec{
		URL: h.URL, Method: h.Method, Status: h.Status, Headers: h.Headers,
		User: h.User, Pass: h.Pass, Body: h.Body, Form: h.Form,
		Multipart: multipart, SaveCookies: h.SaveCookies, VerifySSL: h.VerifySSL,
	}, nil
}

func decodeMultipartValue(node *yaml.Node) (plan.MultipartValue, error) {
	if node.Kind == yaml.ScalarNode {
		return plan.MultipartValue{Literal: node.Value}, nil
	}

	var mv struct {
		File string `yaml:"file"`
		Step string `yaml:"step"`
	}
	if err := node.Decode(&mv); err != nil {
		return plan.MultipartValue{}, err
	}
	return plan.MultipartValue{File: mv.File, Step: mv.Step}, nil
}

func decodeDisk(node *yaml.Node) (*plan.DiskSpec, error) {
	if node.Kind == yaml.ScalarNode {
		return &plan.DiskSpec{Mount: node.Value, Type: plan.DiskFree, OutputType: plan.DiskOutputBytes}, nil
	}

	var d struct {
		Mount      string `yaml:"mount"`
		Type       string `yaml:"type"`
		OutputType string `yaml:"output_type"`
	}
	if err := node.Decode(&d); err != nil {
		return nil, fmt.Errorf("disk: %w", err)
	}

	diskType := plan.DiskFree
	switch strings.ToLower(d.Type) {
	case "", "free":
		diskType = plan.DiskFree
	case "size":
		diskType = plan.DiskSize
	case "used":
		diskType = plan.DiskUsed
	default:
		return nil, fmt.Errorf("disk: unknown type `%s`", d.Type)
	}

	outputType := plan.DiskOutputBytes
	switch strings.ToLower(d.OutputType) {
	case "", "bytes":
		outputType = plan.DiskOutputBytes
	case "human":
		outputType = plan.DiskOutputHuman
	case "percent":
		outputType = plan.DiskOutputPercent
	default:
		return nil, fmt.Errorf("disk: unknown output_type `%s`", d.OutputType)
	}

	return &plan.DiskSpec{Mount: d.Mount, Type: diskType, OutputType: outputType}, nil
}

var systemKinds = map[string]plan.SystemKind{
	"mem_total":     plan.SystemMemTotal,
	"mem_free":      plan.SystemMemFree,
	"mem_available": plan.SystemMemAvailable,
	"load_avg1m":    plan.SystemLoadAvg1m,
	"load_avg5m":    plan.SystemLoadAvg5m,
	"load_avg15m":   plan.SystemLoadAvg15m,
	"disk_total":    plan.SystemDiskTotal,
	"disk_free":     plan.SystemDiskFree,
}

func decodeSystemKind(tag string) (plan.SystemKind, error) {
	kind, ok := systemKinds[tag]
	if !ok {
		return 0, fmt.Errorf("system: unknown metric `%s`", tag)
	}
	return kind, nil
}

func decodeExpect(matches, matchesNot, greaterThan, lessThan *string) (plan.ExpectKind, string, float64, error) {
	switch {
	case matches != nil:
		return plan.ExpectMatches, *matches, 0, nil
	case matchesNot != nil:
		return plan.ExpectMatchesNot, *matchesNot, 0, nil
	case greaterThan != nil:
		n, err := strconv.ParseFloat(*greaterThan, 64)
		if err != nil {
			return 0, "", 0, fmt.Errorf("greater_than: %w", err)
		}
		return plan.ExpectGreaterThan, "", n, nil
	case lessThan != nil:
		n, err := strconv.ParseFloat(*lessThan, 64)
		if err != nil {
			return 0, "", 0, fmt.Errorf("less_than: %w", err)
		}
		return plan.ExpectLessThan, "", n, nil
	default:
		return plan.ExpectAny, "", 0, nil
	}
}

func decodeFilters(list []yaml.Node, jmespath, regex *yaml.Node) ([]plan.Filter, error) {
	var filters []plan.Filter

	for i := range list {
		f, err := decodeFilterEntry(&list[i])
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		filters = append(filters, f)
	}

	if jmespath.Kind != 0 {
		filters = append(filters, plan.Filter{Kind: plan.FilterJmesPath, Expr: jmespath.Value})
	}

	if regex.Kind != 0 {
		f, err := decodeRegexFilter(regex)
		if err != nil {
			return nil, fmt.Errorf("regex: %w", err)
		}
		filters = append(filters, f)
	}

	return filters, nil
}

// decodeFilterEntry decodes one item of the `filters` list, which carries
// its own kind key (regex/jmespath/no_output) the way the step-level keys
// do.
func decodeFilterEntry(node *yaml.Node) (plan.Filter, error) {
	var entry struct {
		Regex    yaml.Node `yaml:"regex"`
		JmesPath *string   `yaml:"jmespath"`
		NoOutput bool      `yaml:"no_output"`
	}
	if err := node.Decode(&entry); err != nil {
		return plan.Filter{}, err
	}

	switch {
	case entry.Regex.Kind != 0:
		return decodeRegexFilter(&entry.Regex)
	case entry.JmesPath != nil:
		return plan.Filter{Kind: plan.FilterJmesPath, Expr: *entry.JmesPath}, nil
	case entry.NoOutput:
		return plan.Filter{Kind: plan.FilterNoOutput}, nil
	default:
		return plan.Filter{}, fmt.Errorf("unrecognised filter entry")
	}
}

func decodeRegexFilter(node *yaml.Node) (plan.Filter, error) {
	if node.Kind == yaml.ScalarNode {
		return plan.Filter{Kind: plan.FilterRegex, Pattern: node.Value}, nil
	}

	var r struct {
		Pattern string `yaml:"pattern"`
		Group   string `yaml:"group"`
	}
	if err := node.Decode(&r); err != nil {
		return plan.Filter{}, err
	}
	return plan.Filter{Kind: plan.FilterRegex, Pattern: r.Pattern, Group: r.Group}, nil
}

// decodeStringList accepts either a single scalar or a sequence of
// scalars for `require`/`required_by`.
func decodeStringList(node *yaml.Node) ([]string, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.ScalarNode {
		return []string{node.Value}, nil
	}

	var list []string
	if err := node.Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}
