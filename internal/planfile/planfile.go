// Package planfile loads a YAML test plan from disk: it renders the file
// through text/template with an optional configuration context, then
// decodes the resulting document into an ordered list of plan.Step values.
//
// Declaration order is preserved deliberately (the scheduler's Roots()
// tie-breaker depends on it) by walking the top-level yaml.Node mapping
// directly instead of decoding into a Go map, whose key order is not
// guaranteed.
package planfile

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	lkerrors "github.com/lorikeet-run/lorikeet/pkg/errors"
)

// Load reads planPath, renders it as a template using the contents of
// configPath (or an empty context if configPath is empty) and decodes it
// into an ordered step list.
func Load(planPath, configPath string) ([]plan.Step, error) {
	tplContext, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	rendered, err := renderTemplate(planPath, tplContext)
	if err != nil {
		return nil, err
	}

	steps, err := decodePlan(planPath, rendered)
	if err != nil {
		return nil, err
	}

	if err := validateSteps(steps); err != nil {
		return nil, err
	}

	return steps, nil
}

func loadConfig(configPath string) (map[string]interface{}, error) {
	if configPath == "" {
		return map[string]interface{}{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, lkerrors.NewParseError(configPath, 0, err)
	}

	var cfg map[string]interface{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, lkerrors.NewParseError(configPath, extractLine(err), err)
	}
	if cfg == nil {
		cfg = map[string]interface{}{}
	}
	return cfg, nil
}

func renderTemplate(planPath string, tplContext map[string]interface{}) ([]byte, error) {
	data, err := os.ReadFile(planPath)
	if err != nil {
		return nil, lkerrors.NewParseError(planPath, 0, err)
	}

	tpl, err := template.New(planPath).Parse(string(data))
	if err != nil {
		return nil, lkerrors.NewParseError(planPath, extractLine(err), err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, tplContext); err != nil {
		return nil, lkerrors.NewParseError(planPath, 0, err)
	}

	return buf.Bytes(), nil
}

func decodePlan(planPath string, data []byte) ([]plan.Step, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, lkerrors.NewParseError(planPath, extractLine(err), err)
	}

	if len(doc.Content) == 0 {
		return nil, lkerrors.NewParseError(planPath, 0, fmt.Errorf("empty plan document"))
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, lkerrors.NewParseError(planPath, root.Line, fmt.Errorf("plan document must be a mapping of step name to step definition"))
	}

	steps := make([]plan.Step, 0, len(root.Content)/2)
	seen := map[string]bool{}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		name := keyNode.Value

		if seen[name] {
			return nil, lkerrors.NewParseError(planPath, keyNode.Line, fmt.Errorf("duplicate step name `%s`", name))
		}
		seen[name] = true

		step, err := decodeStep(name, valNode)
		if err != nil {
			return nil, lkerrors.NewParseError(planPath, valNode.Line, err)
		}
		steps = append(steps, step)
	}

	return steps, nil
}
