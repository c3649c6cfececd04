package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk shape of a --rules-file document: an ordered list
// of pattern/replacement pairs, the same shape as command-line --replace
// flags but convenient for larger or reusable rule sets.
type rulesFile struct {
	Rules []struct {
		Pattern     string `yaml:"pattern"`
		Replacement string `yaml:"replacement"`
	} `yaml:"rules"`
}

// LoadRulesFile reads an ordered substitution rule list from a YAML file.
// Rules are appended in file order after any --replace flags already
// parsed, so command-line rules still run first.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var doc rulesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		rules = append(rules, Rule{
			Pattern:     []byte(r.Pattern),
			Replacement: []byte(r.Replacement),
		})
	}
	return rules, nil
}
