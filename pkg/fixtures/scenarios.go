package fixtures

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var scenariosYAML []byte

// ErrUnresolved is returned when a scenario references a setting that is not
// configured.
var ErrUnresolved = errors.New("unresolved reference")

// Scenario is one negative login case: the credentials to submit and the
// error banner the storefront must answer with.
type Scenario struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Error    string `yaml:"error"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Lookup resolves a setting by key. *config.Config satisfies it.
type Lookup interface {
	Get(key string) (string, bool)
}

// Validate checks that the scenario can be run.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name cannot be empty")
	}
	if s.Error == "" {
		return fmt.Errorf("scenario %q: expected error cannot be empty", s.Name)
	}
	return nil
}

// ParseScenarios decodes a scenario table.
func ParseScenarios(data []byte) ([]Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}
	seen := make(map[string]bool, len(file.Scenarios))
	for _, s := range file.Scenarios {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid scenario: %w", err)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("invalid scenario: duplicate name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return file.Scenarios, nil
}

// Scenarios returns the built-in negative login table with every ${key}
// reference resolved against settings.
func Scenarios(settings Lookup) ([]Scenario, error) {
	raw, err := ParseScenarios(scenariosYAML)
	if err != nil {
		return nil, err
	}
	return Resolve(raw, settings)
}

var reference = regexp.MustCompile(`\$\{([A-Za-z0-9_.]+)\}`)

// Resolve substitutes ${key} references in usernames and passwords.
func Resolve(scenarios []Scenario, settings Lookup) ([]Scenario, error) {
	out := make([]Scenario, len(scenarios))
	for i, s := range scenarios {
		user, err := expand(s.Username, settings)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		pass, err := expand(s.Password, settings)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		s.Username, s.Password = user, pass
		out[i] = s
	}
	return out, nil
}

func expand(value string, settings Lookup) (string, error) {
	var missing []string
	expanded := reference.ReplaceAllStringFunc(value, func(m string) string {
		key := reference.FindStringSubmatch(m)[1]
		v, ok := settings.Get(key)
		if !ok {
			missing = append(missing, key)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %v", ErrUnresolved, missing)
	}
	return expanded, nil
}
