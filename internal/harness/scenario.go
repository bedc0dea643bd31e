package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance test: a program and the queries run against it.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description says what the scenario validates.
	Description string `yaml:"description"`

	// Files are program files consulted before Program, in order.
	// Relative paths are resolved against the scenario file's directory.
	Files []string `yaml:"files,omitempty"`

	// Program is inline program text consulted after Files.
	Program string `yaml:"program,omitempty"`

	// Options tune the engine for this scenario.
	Options *Options `yaml:"options,omitempty"`

	// Queries run in order against the same database.
	Queries []QueryCase `yaml:"queries"`

	// Replay re-executes every recorded run on a fresh engine and checks
	// that the run hashes match.
	Replay bool `yaml:"replay,omitempty"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Options are the engine settings a scenario may override.
type Options struct {
	MaxSteps    int64  `yaml:"max_steps,omitempty"`
	OccursCheck bool   `yaml:"occurs_check,omitempty"`
	Unknown     string `yaml:"unknown,omitempty"`
}

// QueryCase is a single query and what it should produce.
type QueryCase struct {
	Query  string `yaml:"query"`
	Expect Expect `yaml:"expect"`
}

// Expect describes the answers of a query. Fields that are unset are not
// checked; an empty Expect only requires the query not to raise an error.
type Expect struct {
	Solutions []map[string]string `yaml:"solutions,omitempty"`
	Count     *int                `yaml:"count,omitempty"`
	Fail      bool                `yaml:"fail,omitempty"`
	Error     string              `yaml:"error,omitempty"`
	Limit     int                 `yaml:"limit,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so that typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	scenario.Path = path

	base := filepath.Dir(path)
	for i, f := range scenario.Files {
		if !filepath.IsAbs(f) {
			scenario.Files[i] = filepath.Join(base, f)
		}
	}
	for _, f := range scenario.Files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: program file not found: %s", path, f)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML held in memory. Relative program
// files are left as they are.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by name.
// Scenario names must be unique because they name golden files.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, p)
		}
		seen[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}
	if s.Options != nil {
		switch s.Options.Unknown {
		case "", "error", "fail":
		default:
			return fmt.Errorf("options.unknown must be \"error\" or \"fail\", got %q", s.Options.Unknown)
		}
		if s.Options.MaxSteps < 0 {
			return fmt.Errorf("options.max_steps must be non-negative")
		}
	}
	for i, q := range s.Queries {
		if err := validateQuery(i, &q); err != nil {
			return err
		}
	}
	return nil
}

func validateQuery(index int, q *QueryCase) error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("queries[%d]: query is required", index)
	}
	e := q.Expect
	if e.Fail && (len(e.Solutions) > 0 || e.Error != "") {
		return fmt.Errorf("queries[%d].expect: fail cannot be combined with solutions or error", index)
	}
	if e.Error != "" && len(e.Solutions) > 0 {
		return fmt.Errorf("queries[%d].expect: error cannot be combined with solutions", index)
	}
	if e.Count != nil {
		if *e.Count < 0 {
			return fmt.Errorf("queries[%d].expect: count must be non-negative", index)
		}
		if len(e.Solutions) > 0 && *e.Count != len(e.Solutions) {
			return fmt.Errorf("queries[%d].expect: count %d disagrees with %d solutions", index, *e.Count, len(e.Solutions))
		}
	}
	if e.Limit < 0 {
		return fmt.Errorf("queries[%d].expect: limit must be non-negative", index)
	}
	return nil
}
