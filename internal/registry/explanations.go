package registry

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed explanations.yaml
var explanationsYAML []byte

// Explanation is the plain-language description of one benchmark section,
// used by the user-friendly report.
type Explanation struct {
	SectionID   string `yaml:"section_id" validate:"required"`
	Title       string `yaml:"title" validate:"required"`
	Overview    string `yaml:"overview" validate:"required"`
	Importance  string `yaml:"importance" validate:"required"`
	PassMeaning string `yaml:"pass_meaning" validate:"required"`
	FailMeaning string `yaml:"fail_meaning" validate:"required"`
	Remediation string `yaml:"remediation_explanation"`

	// Items maps check IDs to a short note on what the checked item is.
	Items map[string]string `yaml:"items"`
}

type explanationsFile struct {
	Explanations []Explanation `yaml:"explanations" validate:"required,min=1,dive"`
}

// loadExplanations parses and validates the embedded explanation catalog,
// returning sections sorted longest-ID-first for prefix matching.
func loadExplanations() ([]Explanation, error) {
	var file explanationsFile
	if err := yaml.Unmarshal(explanationsYAML, &file); err != nil {
		return nil, fmt.Errorf("parsing explanations YAML: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid explanations: %w", err)
	}

	sort.SliceStable(file.Explanations, func(i, j int) bool {
		return len(file.Explanations[i].SectionID) > len(file.Explanations[j].SectionID)
	})
	return file.Explanations, nil
}

// ExplanationFor returns the explanation whose section is the longest
// prefix of the given check ID, so "1.1.2.2.1" resolves to section 1.1.2
// rather than 1.1.
func (r *Registry) ExplanationFor(checkID string) (Explanation, bool) {
	for _, e := range r.explanations {
		if checkID == e.SectionID || strings.HasPrefix(checkID, e.SectionID+".") {
			return e, true
		}
	}
	return Explanation{}, false
}
