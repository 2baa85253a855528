// Package rules loads the declarative tables that drive classification,
// contradiction detection, and remedy generation. Built-in defaults are
// embedded; a YAML file may replace whole sections at load time for tuning
// and tests.
package rules

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/harwood/paralegal/internal/models"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// ClassificationRule scores one document type. All four dimensions are
// optional; an empty dimension contributes zero to the score.
type ClassificationRule struct {
	Regexps   []*regexp.Regexp `yaml:"-"`
	Keywords  []string         `yaml:"keywords"`
	Phrases   []string         `yaml:"phrases"`
	Patterns  []string         `yaml:"patterns"`
	Type      string           `yaml:"type"`
	Threshold float64          `yaml:"threshold"`
}

// SubcategoryRule names a keyword family checked within a document type.
type SubcategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ClassificationRules holds the classifier tables. DocumentTypes order is
// significant: score ties resolve to the earlier entry.
type ClassificationRules struct {
	Signatures    map[string][]string          `yaml:"signatures"`
	Subcategories map[string][]SubcategoryRule `yaml:"subcategories"`
	DocumentTypes []ClassificationRule         `yaml:"document_types"`
}

// RiskyPhrase flags a phrase pattern as a compliance concern.
type RiskyPhrase struct {
	Regexp      *regexp.Regexp `yaml:"-"`
	Pattern     string         `yaml:"pattern"`
	Severity    string         `yaml:"severity"`
	Explanation string         `yaml:"explanation"`
}

// ClauseCheck names an essential clause and the pattern that satisfies it.
type ClauseCheck struct {
	Regexp  *regexp.Regexp `yaml:"-"`
	Name    string         `yaml:"name"`
	Pattern string         `yaml:"pattern"`
}

// Proximity holds the byte windows for the date and amount conflict passes.
type Proximity struct {
	DateWindow   int `yaml:"date_window"`
	AmountWindow int `yaml:"amount_window"`
}

// DetectionRules holds the detector tables.
type DetectionRules struct {
	RiskyPhrases []RiskyPhrase `yaml:"risky_phrases"`
	ClauseChecks []ClauseCheck `yaml:"clause_checks"`
	Proximity    Proximity     `yaml:"proximity"`
}

// RemedyTemplate is a canned remedy matched to issues by type. Steps may
// carry an {issue_description} placeholder substituted at generation time.
type RemedyTemplate struct {
	ApplicableTypes []string `yaml:"applicable_types"`
	Steps           []string `yaml:"steps"`
	LegalBasis      []string `yaml:"legal_basis"`
	ID              string   `yaml:"id"`
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	Category        string   `yaml:"category"`
	Priority        string   `yaml:"priority"`
}

// Precedent is a case citation appended to remedy legal bases.
type Precedent struct {
	ApplicableTypes []string `yaml:"applicable_types"`
	Case            string   `yaml:"case"`
	Citation        string   `yaml:"citation"`
	Jurisdiction    string   `yaml:"jurisdiction"`
	Summary         string   `yaml:"summary"`
	Guidance        string   `yaml:"guidance"`
}

// RemedyRules holds the remedy generation tables.
type RemedyRules struct {
	Mitigations   map[string][]string `yaml:"mitigations"`
	Impacts       map[string]string   `yaml:"impacts"`
	Templates     []RemedyTemplate    `yaml:"templates"`
	Precedents    []Precedent         `yaml:"precedents"`
	DefaultImpact string              `yaml:"default_impact"`
}

// Rules is the complete rule configuration for one analyzer instance.
type Rules struct {
	Classification ClassificationRules `yaml:"classification"`
	Detection      DetectionRules      `yaml:"detection"`
	Remedies       RemedyRules         `yaml:"remedies"`
}

// Default returns the embedded rule tables, validated and compiled.
func Default() (*Rules, error) {
	r := &Rules{}

	names, err := fs.Glob(defaultsFS, "defaults/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing embedded rules: %w", err)
	}

	for _, name := range names {
		data, err := defaultsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading embedded rules %s: %w", name, err)
		}

		var partial Rules
		if err := yaml.Unmarshal(data, &partial); err != nil {
			return nil, fmt.Errorf("parsing embedded rules %s: %w", name, err)
		}
		r.overlay(&partial)
	}

	if err := r.finalize(); err != nil {
		return nil, fmt.Errorf("invalid embedded rules: %w", err)
	}

	return r, nil
}

// Load returns the defaults with sections replaced by those present in the
// YAML file at path. Replacement is per section list or map, not per entry.
func Load(path string) (*Rules, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted source (config file)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var partial Rules
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}
	r.overlay(&partial)

	if err := r.finalize(); err != nil {
		return nil, fmt.Errorf("invalid rules in %s: %w", path, err)
	}

	return r, nil
}

// overlay replaces sections of r with the non-empty sections of p.
func (r *Rules) overlay(p *Rules) {
	if len(p.Classification.DocumentTypes) > 0 {
		r.Classification.DocumentTypes = p.Classification.DocumentTypes
	}
	if len(p.Classification.Signatures) > 0 {
		r.Classification.Signatures = p.Classification.Signatures
	}
	if len(p.Classification.Subcategories) > 0 {
		r.Classification.Subcategories = p.Classification.Subcategories
	}

	if len(p.Detection.RiskyPhrases) > 0 {
		r.Detection.RiskyPhrases = p.Detection.RiskyPhrases
	}
	if len(p.Detection.ClauseChecks) > 0 {
		r.Detection.ClauseChecks = p.Detection.ClauseChecks
	}
	if p.Detection.Proximity.DateWindow > 0 {
		r.Detection.Proximity.DateWindow = p.Detection.Proximity.DateWindow
	}
	if p.Detection.Proximity.AmountWindow > 0 {
		r.Detection.Proximity.AmountWindow = p.Detection.Proximity.AmountWindow
	}

	if len(p.Remedies.Templates) > 0 {
		r.Remedies.Templates = p.Remedies.Templates
	}
	if len(p.Remedies.Precedents) > 0 {
		r.Remedies.Precedents = p.Remedies.Precedents
	}
	if len(p.Remedies.Mitigations) > 0 {
		r.Remedies.Mitigations = p.Remedies.Mitigations
	}
	if len(p.Remedies.Impacts) > 0 {
		r.Remedies.Impacts = p.Remedies.Impacts
	}
	if p.Remedies.DefaultImpact != "" {
		r.Remedies.DefaultImpact = p.Remedies.DefaultImpact
	}
}

func (r *Rules) finalize() error {
	if err := r.Validate(); err != nil {
		return err
	}
	return r.Compile()
}

// Validate ensures the rule tables are internally consistent.
func (r *Rules) Validate() error {
	if len(r.Classification.DocumentTypes) == 0 {
		return fmt.Errorf("classification.document_types is required")
	}

	seenTypes := make(map[string]bool)
	for i, rule := range r.Classification.DocumentTypes {
		if !models.IsValidDocumentType(rule.Type) {
			return fmt.Errorf("classification rule %d: invalid document type %q", i, rule.Type)
		}
		if seenTypes[rule.Type] {
			return fmt.Errorf("classification rule %d: duplicate document type %q", i, rule.Type)
		}
		seenTypes[rule.Type] = true
		if rule.Threshold <= 0 || rule.Threshold > 1 {
			return fmt.Errorf("classification rule %q: threshold must be in (0, 1], got %v", rule.Type, rule.Threshold)
		}
	}

	for docType := range r.Classification.Signatures {
		if !models.IsValidDocumentType(docType) {
			return fmt.Errorf("signatures: invalid document type %q", docType)
		}
	}
	for docType, families := range r.Classification.Subcategories {
		if !models.IsValidDocumentType(docType) {
			return fmt.Errorf("subcategories: invalid document type %q", docType)
		}
		for i, family := range families {
			if family.Name == "" {
				return fmt.Errorf("subcategories.%s[%d]: name is required", docType, i)
			}
			if len(family.Keywords) == 0 {
				return fmt.Errorf("subcategories.%s.%s: keywords are required", docType, family.Name)
			}
		}
	}

	for i, phrase := range r.Detection.RiskyPhrases {
		if phrase.Pattern == "" {
			return fmt.Errorf("risky phrase %d: pattern is required", i)
		}
		if !models.IsValidSeverity(phrase.Severity) {
			return fmt.Errorf("risky phrase %d: invalid severity %q", i, phrase.Severity)
		}
		if phrase.Explanation == "" {
			return fmt.Errorf("risky phrase %d: explanation is required", i)
		}
	}
	for i, check := range r.Detection.ClauseChecks {
		if check.Name == "" || check.Pattern == "" {
			return fmt.Errorf("clause check %d: name and pattern are required", i)
		}
	}
	if r.Detection.Proximity.DateWindow <= 0 {
		return fmt.Errorf("detection.proximity.date_window must be positive")
	}
	if r.Detection.Proximity.AmountWindow <= 0 {
		return fmt.Errorf("detection.proximity.amount_window must be positive")
	}

	seenIDs := make(map[string]bool)
	for i, tmpl := range r.Remedies.Templates {
		if tmpl.ID == "" {
			return fmt.Errorf("remedy template %d: id is required", i)
		}
		if seenIDs[tmpl.ID] {
			return fmt.Errorf("remedy template %q: duplicate id", tmpl.ID)
		}
		seenIDs[tmpl.ID] = true
		if tmpl.Title == "" {
			return fmt.Errorf("remedy template %q: title is required", tmpl.ID)
		}
		if !models.IsValidSeverity(tmpl.Priority) {
			return fmt.Errorf("remedy template %q: invalid priority %q", tmpl.ID, tmpl.Priority)
		}
		if len(tmpl.Steps) == 0 {
			return fmt.Errorf("remedy template %q: steps are required", tmpl.ID)
		}
		for _, issueType := range tmpl.ApplicableTypes {
			if !models.IsValidIssueType(issueType) {
				return fmt.Errorf("remedy template %q: invalid issue type %q", tmpl.ID, issueType)
			}
		}
	}

	for i, prec := range r.Remedies.Precedents {
		if prec.Case == "" {
			return fmt.Errorf("precedent %d: case is required", i)
		}
		for _, issueType := range prec.ApplicableTypes {
			if !models.IsValidIssueType(issueType) {
				return fmt.Errorf("precedent %q: invalid issue type %q", prec.Case, issueType)
			}
		}
	}

	for issueType, steps := range r.Remedies.Mitigations {
		if !models.IsValidIssueType(issueType) {
			return fmt.Errorf("mitigations: invalid issue type %q", issueType)
		}
		if len(steps) == 0 {
			return fmt.Errorf("mitigations.%s: steps are required", issueType)
		}
	}
	for severity := range r.Remedies.Impacts {
		if !models.IsValidSeverity(severity) {
			return fmt.Errorf("impacts: invalid severity %q", severity)
		}
	}

	return nil
}

// Compile compiles every pattern in the tables. All patterns match
// case-insensitive.
func (r *Rules) Compile() error {
	for i := range r.Classification.DocumentTypes {
		rule := &r.Classification.DocumentTypes[i]
		rule.Regexps = make([]*regexp.Regexp, 0, len(rule.Patterns))
		for _, pattern := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return fmt.Errorf("classification rule %q: bad pattern %q: %w", rule.Type, pattern, err)
			}
			rule.Regexps = append(rule.Regexps, re)
		}
	}

	for i := range r.Detection.RiskyPhrases {
		phrase := &r.Detection.RiskyPhrases[i]
		re, err := regexp.Compile("(?i)" + phrase.Pattern)
		if err != nil {
			return fmt.Errorf("risky phrase %q: bad pattern: %w", phrase.Pattern, err)
		}
		phrase.Regexp = re
	}

	for i := range r.Detection.ClauseChecks {
		check := &r.Detection.ClauseChecks[i]
		re, err := regexp.Compile("(?i)" + check.Pattern)
		if err != nil {
			return fmt.Errorf("clause check %q: bad pattern: %w", check.Name, err)
		}
		check.Regexp = re
	}

	return nil
}

// RuleFor returns the classification rule for a document type, if present.
func (c *ClassificationRules) RuleFor(docType string) (*ClassificationRule, bool) {
	for i := range c.DocumentTypes {
		if c.DocumentTypes[i].Type == docType {
			return &c.DocumentTypes[i], true
		}
	}
	return nil, false
}

// TemplatesFor returns the templates applicable to an issue type, in
// declaration order.
func (r *RemedyRules) TemplatesFor(issueType string) []RemedyTemplate {
	var matched []RemedyTemplate
	for _, tmpl := range r.Templates {
		for _, t := range tmpl.ApplicableTypes {
			if t == issueType {
				matched = append(matched, tmpl)
				break
			}
		}
	}
	return matched
}

// PrecedentsFor returns the precedents applicable to an issue type, in
// declaration order.
func (r *RemedyRules) PrecedentsFor(issueType string) []Precedent {
	var matched []Precedent
	for _, prec := range r.Precedents {
		for _, t := range prec.ApplicableTypes {
			if t == issueType {
				matched = append(matched, prec)
				break
			}
		}
	}
	return matched
}

// ImpactFor returns the impact text for a template priority, falling back
// to the default impact.
func (r *RemedyRules) ImpactFor(priority string) string {
	if impact, ok := r.Impacts[priority]; ok {
		return impact
	}
	return r.DefaultImpact
}
