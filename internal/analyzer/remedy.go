package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/internal/rules"
	"github.com/harwood/paralegal/pkg/logger"
)

// RemedyCompiler turns detected issues into remedy recommendations using
// the template, precedent, and mitigation tables. Given a nil issue slice
// it self-detects missing essential clauses first; given an empty non-nil
// slice it emits only the general remedies.
type RemedyCompiler struct {
	rules        *rules.RemedyRules
	clauseChecks []rules.ClauseCheck
	logger       logger.Logger
}

// NewRemedyCompiler creates a compiler over the given rule tables.
func NewRemedyCompiler(r *rules.Rules, log logger.Logger) *RemedyCompiler {
	return &RemedyCompiler{
		rules:        &r.Remedies,
		clauseChecks: r.Detection.ClauseChecks,
		logger:       log,
	}
}

// Compile generates remedies for the given issues.
func (c *RemedyCompiler) Compile(ctx context.Context, issues []models.LegalIssue, text string) (*CompilationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(ComponentRemedyGeneration, ErrorKindCompilation, err)
	}

	var selfDetected []models.LegalIssue
	if issues == nil {
		selfDetected = c.detectMissingClauses(text)
		issues = selfDetected
		c.logger.Debug("no upstream issues, self-detected", "issues", len(selfDetected))
	}

	var all []models.Remedy
	for i := range issues {
		all = append(all, c.remediesForIssue(&issues[i])...)
	}
	all = append(all, c.generalRemedies(text)...)

	remedies := dedupeAndPrioritize(all)

	return &CompilationResult{
		Remedies:     remedies,
		SelfDetected: selfDetected,
		Confidence:   remedyConfidence(remedies, issues),
		Metadata: map[string]any{
			"remedy_generation_method": "template_based_ai",
			"total_issues_addressed":   len(issues),
			"remedy_categories":        remedyCategories(remedies),
			"precedents_referenced":    len(c.rules.Precedents),
		},
	}, nil
}

// remedyCategories lists the distinct categories present, in first
// appearance order so repeated runs produce identical metadata.
func remedyCategories(remedies []models.Remedy) []string {
	seen := make(map[string]bool)
	categories := make([]string, 0, len(remedies))
	for i := range remedies {
		if category := remedies[i].Category; !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}
	return categories
}

// remediesForIssue returns the template remedies applicable to an issue
// followed by its mitigation remedy, if the tables define one.
func (c *RemedyCompiler) remediesForIssue(issue *models.LegalIssue) []models.Remedy {
	var remedies []models.Remedy

	for _, tmpl := range c.rules.TemplatesFor(issue.Type) {
		remedies = append(remedies, c.remedyFromTemplate(tmpl, issue))
	}

	if steps, ok := c.rules.Mitigations[issue.Type]; ok {
		remedy := models.NewRemedy(
			fmt.Sprintf("Mitigate %s", issue.Title),
			fmt.Sprintf("Implement specific strategies to address: %s", issue.Description),
			"Risk Mitigation",
			issue.Severity,
		)
		remedy.ApplicableIssues = []string{issue.ID}
		remedy.ImplementationSteps = append([]string(nil), steps...)
		remedy.LegalBasis = []string{"Risk management best practices", "Legal precedent analysis"}
		remedy.EstimatedImpact = "Reduces legal risk and improves contract enforceability"
		remedies = append(remedies, *remedy)
	}

	return remedies
}

// remedyFromTemplate instantiates a template for one issue: steps get the
// {issue_description} placeholder substituted, and up to two applicable
// precedents extend the legal basis.
func (c *RemedyCompiler) remedyFromTemplate(tmpl rules.RemedyTemplate, issue *models.LegalIssue) models.Remedy {
	steps := make([]string, len(tmpl.Steps))
	for i, step := range tmpl.Steps {
		steps[i] = strings.ReplaceAll(step, "{issue_description}", issue.Description)
	}

	precedents := c.rules.PrecedentsFor(issue.Type)
	basis := append([]string(nil), tmpl.LegalBasis...)
	for i, prec := range precedents {
		if i == 2 {
			break
		}
		basis = append(basis, fmt.Sprintf("%s: %s", prec.Case, prec.Guidance))
	}

	remedy := models.NewRemedy(
		tmpl.Title,
		fmt.Sprintf("%s: %s", tmpl.Description, issue.Description),
		tmpl.Category,
		tmpl.Priority,
	)
	remedy.ApplicableIssues = []string{issue.ID}
	remedy.ImplementationSteps = steps
	remedy.LegalBasis = basis
	remedy.EstimatedImpact = c.rules.ImpactFor(tmpl.Priority)
	remedy.Metadata["template_id"] = tmpl.ID
	remedy.Metadata["issue_severity"] = issue.Severity
	remedy.Metadata["precedents_count"] = len(precedents)

	return *remedy
}

// generalRemedies returns the best practice remedies appended to every
// compilation: a structure remedy for very short documents and a legal
// review remedy always.
func (c *RemedyCompiler) generalRemedies(text string) []models.Remedy {
	var remedies []models.Remedy

	if len(strings.Split(text, "\n")) < 10 {
		remedy := models.NewRemedy(
			"Improve Document Structure",
			"Add proper sectioning and organization to improve readability",
			"Document Quality",
			models.SeverityLow,
		)
		remedy.ImplementationSteps = []string{
			"Add clear section headers",
			"Use numbered or lettered subsections",
			"Include table of contents for longer documents",
			"Standardize formatting throughout",
		}
		remedy.LegalBasis = []string{"Document clarity best practices"}
		remedy.EstimatedImpact = "Improves document interpretation and reduces disputes"
		remedies = append(remedies, *remedy)
	}

	review := models.NewRemedy(
		"Professional Legal Review",
		"Have document reviewed by qualified legal counsel",
		"Legal Validation",
		models.SeverityMedium,
	)
	review.ImplementationSteps = []string{
		"Engage qualified attorney in relevant jurisdiction",
		"Review for compliance with current law",
		"Ensure terms align with business objectives",
		"Validate enforceability of key provisions",
	}
	review.LegalBasis = []string{"Professional legal standards", "Due diligence requirements"}
	review.EstimatedImpact = "Ensures legal compliance and enforceability"
	remedies = append(remedies, *review)

	return remedies
}

// detectMissingClauses flags essential clauses absent from the text.
func (c *RemedyCompiler) detectMissingClauses(text string) []models.LegalIssue {
	caser := cases.Title(language.English)

	var issues []models.LegalIssue
	for _, check := range c.clauseChecks {
		if check.Regexp.MatchString(text) {
			continue
		}
		issue := models.NewLegalIssue(
			models.IssueTypeMissingClause,
			models.SeverityMedium,
			fmt.Sprintf("Missing %s Clause", caser.String(check.Name)),
			fmt.Sprintf("Document appears to lack a %s provision", check.Name),
		)
		issue.Confidence = 0.8
		issues = append(issues, *issue)
	}
	return issues
}

// dedupeAndPrioritize drops remedies with duplicate titles, first
// occurrence winning, then stable-sorts critical first.
func dedupeAndPrioritize(remedies []models.Remedy) []models.Remedy {
	seen := make(map[string]bool, len(remedies))
	unique := make([]models.Remedy, 0, len(remedies))
	for i := range remedies {
		if seen[remedies[i].Title] {
			continue
		}
		seen[remedies[i].Title] = true
		unique = append(unique, remedies[i])
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return models.SeverityRank(unique[i].Priority) < models.SeverityRank(unique[j].Priority)
	})
	return unique
}

// remedyConfidence blends the fraction of template-based remedies with
// issue coverage, clamped to [0.6, 0.95]. No remedies at all means low
// confidence.
func remedyConfidence(remedies []models.Remedy, issues []models.LegalIssue) float64 {
	if len(remedies) == 0 {
		return 0.5
	}

	templateBased := 0
	for i := range remedies {
		if _, ok := remedies[i].Metadata["template_id"]; ok {
			templateBased++
		}
	}
	templateFraction := float64(templateBased) / float64(len(remedies))

	coverage := 1.0
	if len(issues) > 0 {
		coverage = min(1.0, float64(len(issues))/float64(len(remedies)))
	}

	confidence := templateFraction*0.6 + coverage*0.4
	return min(0.95, max(0.6, confidence))
}
