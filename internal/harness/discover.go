package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// NoScenariosError is returned when a scenario directory holds no YAML files.
type NoScenariosError struct {
	Dir string
}

// Error implements the error interface.
func (e *NoScenariosError) Error() string {
	return fmt.Sprintf("no scenario files (*.yaml, *.yml) found in %s", e.Dir)
}

// DiscoverScenarios returns the scenario files in dir, sorted by path.
// Subdirectories are not searched.
func DiscoverScenarios(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario directory: %s is not a directory", dir)
	}

	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, &NoScenariosError{Dir: dir}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadScenarios loads every scenario in dir. Scenario names must be unique
// because they name golden files.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := DiscoverScenarios(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(paths))
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
