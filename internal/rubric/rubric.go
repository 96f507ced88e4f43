// Package rubric holds the static scoring configuration: criterion
// definitions, evaluation templates, and the policy table. Everything
// here is loaded once at startup and immutable afterwards.
package rubric

import (
	"errors"
	"fmt"
)

// Source names which engine produces a criterion's verdict.
type Source string

const (
	SourceRule      Source = "rule"
	SourceNarrative Source = "narrative"
)

// Policy is the scoring policy class of a criterion.
type Policy string

const (
	// PolicyAdditive criteria contribute their points to the base score.
	PolicyAdditive Policy = "additive"
	// PolicyDeduction criteria subtract from the base score: the FAIL
	// sentinel subtracts the criterion's fixed penalty, a custom negative
	// magnitude subtracts exactly that magnitude.
	PolicyDeduction Policy = "deduction"
	// PolicyAutoFail criteria zero the whole ticket on the FAIL sentinel,
	// regardless of every other verdict.
	PolicyAutoFail Policy = "auto-fail"
)

// Criterion is one named, independently scored aspect of ticket quality.
type Criterion struct {
	ID        string
	Name      string
	MaxPoints int
	Source    Source
	Policy    Policy
	// Penalty is the fixed amount subtracted when a deduction-class
	// criterion yields the FAIL sentinel. Zero for other classes.
	Penalty int
}

// Template is a named ordered set of criteria defining one scoring scheme.
type Template struct {
	Name        string
	DisplayName string
	MaxScore    int
	Criteria    []Criterion
}

// AdditiveCriteria returns the criteria that contribute to the base score.
func (t Template) AdditiveCriteria() []Criterion {
	out := make([]Criterion, 0, len(t.Criteria))
	for _, c := range t.Criteria {
		if c.Policy == PolicyAdditive {
			out = append(out, c)
		}
	}
	return out
}

// Criterion looks up a criterion by id within the template.
func (t Template) Criterion(id string) (Criterion, bool) {
	for _, c := range t.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

var (
	ErrUnknownTemplate  = errors.New("unknown template")
	ErrUnknownCriterion = errors.New("unknown criterion")
	ErrInvalidTemplate  = errors.New("invalid template configuration")
)

// Registry is the loaded, validated set of templates plus the global
// policy table. Policy and source are per-criterion-id, template-agnostic:
// a criterion appearing in several templates carries one policy everywhere.
type Registry struct {
	templates map[string]Template
	order     []string
	byID      map[string]Criterion
}

// Load builds the registry from the built-in templates and validates
// every invariant. Configuration errors here are fatal by design: they
// must surface before any ticket is processed.
func Load() (*Registry, error) {
	r := &Registry{
		templates: make(map[string]Template),
		byID:      make(map[string]Criterion),
	}
	for _, t := range builtinTemplates() {
		if err := validateTemplate(t); err != nil {
			return nil, fmt.Errorf("%w: template %q: %v", ErrInvalidTemplate, t.Name, err)
		}
		for _, c := range t.Criteria {
			if existing, ok := r.byID[c.ID]; ok {
				if existing.Source != c.Source || existing.Policy != c.Policy {
					return nil, fmt.Errorf("%w: criterion %q has conflicting source/policy across templates",
						ErrInvalidTemplate, c.ID)
				}
				continue
			}
			r.byID[c.ID] = c
		}
		r.templates[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

func validateTemplate(t Template) error {
	if len(t.Criteria) == 0 {
		return errors.New("no criteria defined")
	}
	additive := 0
	seen := make(map[string]bool, len(t.Criteria))
	for _, c := range t.Criteria {
		if c.ID == "" {
			return errors.New("criterion with empty id")
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate criterion %q", c.ID)
		}
		seen[c.ID] = true
		switch c.Policy {
		case PolicyAdditive:
			if c.MaxPoints <= 0 {
				return fmt.Errorf("additive criterion %q has no points", c.ID)
			}
			additive += c.MaxPoints
		case PolicyDeduction:
			if c.Penalty <= 0 {
				return fmt.Errorf("deduction criterion %q has no fixed penalty", c.ID)
			}
		case PolicyAutoFail:
			// carries no points
		default:
			return fmt.Errorf("criterion %q has unknown policy %q", c.ID, c.Policy)
		}
	}
	if additive == 0 {
		return errors.New("template defines zero additive points")
	}
	if additive != t.MaxScore {
		return fmt.Errorf("additive criteria sum to %d, declared maximum is %d", additive, t.MaxScore)
	}
	return nil
}

// Template returns the named template.
func (r *Registry) Template(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}

// TemplateNames lists the available templates in definition order.
func (r *Registry) TemplateNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// CriteriaFor returns the ordered criterion list for a template.
func (r *Registry) CriteriaFor(name string) ([]Criterion, error) {
	t, err := r.Template(name)
	if err != nil {
		return nil, err
	}
	out := make([]Criterion, len(t.Criteria))
	copy(out, t.Criteria)
	return out, nil
}

// PolicyFor returns the policy class for a criterion id from the global
// policy table.
func (r *Registry) PolicyFor(criterionID string) (Policy, error) {
	c, ok := r.byID[criterionID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCriterion, criterionID)
	}
	return c.Policy, nil
}

// CriterionByID returns a criterion definition from the global table.
func (r *Registry) CriterionByID(criterionID string) (Criterion, error) {
	c, ok := r.byID[criterionID]
	if !ok {
		return Criterion{}, fmt.Errorf("%w: %q", ErrUnknownCriterion, criterionID)
	}
	return c, nil
}
