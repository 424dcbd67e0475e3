package suggest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/diegoholiveira/jsonlogic/v3"
	"gopkg.in/yaml.v3"

	"github.com/insightportal/attrition/internal/schema"
)

// PlaybookRule is a custom retention rule defined by operators rather than
// shipped in code. The condition is a JSON Logic expression evaluated against
// the raw feature map plus a "probability" key. Playbook rules run after the
// built-in set, in file order.
type PlaybookRule struct {
	Name    string   `yaml:"name"`
	Variant string   `yaml:"variant"`
	When    string   `yaml:"when"`
	Suggest []string `yaml:"suggest"`
}

type playbookFile struct {
	Rules []PlaybookRule `yaml:"rules"`
}

// ErrEmptyExpression is returned for a blank rule condition.
var ErrEmptyExpression = errors.New("invalid expression: empty or whitespace")

// ErrInvalidExpression is returned when a condition is not valid JSON Logic.
var ErrInvalidExpression = errors.New("invalid expression: not valid JSON Logic")

// LoadPlaybook reads custom rules from a YAML file and validates every
// condition before accepting the file.
func (e *Engine) LoadPlaybook(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file playbookFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse playbook %s: %w", path, err)
	}
	for i, r := range file.Rules {
		if r.Name == "" {
			return fmt.Errorf("playbook %s: rule %d has no name", path, i)
		}
		if _, err := schema.ParseVariant(r.Variant); err != nil {
			return fmt.Errorf("playbook %s: rule %q: %w", path, r.Name, err)
		}
		if len(r.Suggest) == 0 {
			return fmt.Errorf("playbook %s: rule %q has no suggestions", path, r.Name)
		}
		if err := validateExpression(r.When); err != nil {
			return fmt.Errorf("playbook %s: rule %q: %w", path, r.Name, err)
		}
	}
	e.playbook = file.Rules
	return nil
}

// evalPlaybook returns the lines of every playbook rule for the variant whose
// condition holds. A rule that fails to evaluate simply does not fire; custom
// rules must never break scoring.
func (e *Engine) evalPlaybook(variant schema.Variant, rec schema.Record, probability float64) []string {
	var out []string
	for _, r := range e.playbook {
		if r.Variant != string(variant) {
			continue
		}
		match, err := evaluateExpression(r.When, playbookData(rec, probability))
		if err != nil || !match {
			continue
		}
		out = append(out, r.Suggest...)
	}
	return out
}

// playbookData is the JSON Logic evaluation context: raw features plus the
// churn probability.
func playbookData(rec schema.Record, probability float64) map[string]any {
	data := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		data[k] = v
	}
	data["probability"] = probability
	return data
}

// evaluateExpression applies a JSON Logic expression to the data map and
// reports truthiness of the result.
func evaluateExpression(expression string, data map[string]any) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return false, ErrEmptyExpression
	}
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return false, err
	}

	ruleReader := strings.NewReader(expression)
	dataReader := bytes.NewReader(dataBytes)
	var resultBuf bytes.Buffer
	if err := jsonlogic.Apply(ruleReader, dataReader, &resultBuf); err != nil {
		return false, ErrInvalidExpression
	}

	var result any
	if err := json.Unmarshal(resultBuf.Bytes(), &result); err != nil {
		return false, err
	}
	return isTruthy(result), nil
}

// validateExpression checks a condition without needing subject data.
func validateExpression(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return ErrEmptyExpression
	}
	var rule any
	if err := json.Unmarshal([]byte(expression), &rule); err != nil {
		return ErrInvalidExpression
	}
	ruleReader := strings.NewReader(expression)
	dataReader := strings.NewReader("{}")
	var resultBuf bytes.Buffer
	if err := jsonlogic.Apply(ruleReader, dataReader, &resultBuf); err != nil {
		return ErrInvalidExpression
	}
	return nil
}

// isTruthy follows JavaScript-like truthiness rules for JSON Logic results.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
