package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/internal/rules"
	"github.com/harwood/paralegal/internal/textproc"
	"github.com/harwood/paralegal/pkg/logger"
)

// ContradictionDetector finds legal issues through five heuristic passes:
// obligation conflicts, date inconsistencies, monetary amount
// inconsistencies, broken section references, and risky phrases. The date
// and amount passes compare literal text within a proximity window, not
// semantics.
type ContradictionDetector struct {
	rules  *rules.DetectionRules
	logger logger.Logger
}

// NewContradictionDetector creates a detector over the given rule tables.
func NewContradictionDetector(r *rules.Rules, log logger.Logger) *ContradictionDetector {
	return &ContradictionDetector{
		rules:  &r.Detection,
		logger: log,
	}
}

// Detect runs all passes over the text. Cancellation is honored between
// passes. The returned issue slice is non-nil even when empty.
func (d *ContradictionDetector) Detect(ctx context.Context, text string) (*DetectionResult, error) {
	doc := textproc.Preprocess(text)
	issues := []models.LegalIssue{}

	passes := []struct {
		run  func(string) []models.LegalIssue
		name string
	}{
		{d.detectObligationConflicts, "obligation_conflicts"},
		{d.detectDateConflicts, "date_conflicts"},
		{d.detectAmountConflicts, "amount_conflicts"},
		{d.detectReferenceErrors, "reference_errors"},
		{d.detectRiskyPhrases, "risky_phrases"},
	}

	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return nil, WrapError(ComponentContradictionDetection, ErrorKindDetection, err)
		}
		found := pass.run(text)
		issues = append(issues, found...)
		d.logger.Debug("detection pass complete", "pass", pass.name, "issues", len(found))
	}

	return &DetectionResult{
		Issues:         issues,
		Confidence:     detectionConfidence(issues, doc.TokenCount()),
		TokensAnalyzed: doc.TokenCount(),
	}, nil
}

// detectObligationConflicts flags statements assigning the same entity and
// action opposite polarity. Each statement is compared against the first
// one stored for its entity/action key.
func (d *ContradictionDetector) detectObligationConflicts(text string) []models.LegalIssue {
	type statement struct {
		start   int
		end     int
		negated bool
	}
	seen := make(map[string]statement)

	var conflicts []models.LegalIssue
	for _, ob := range textproc.ExtractObligations(text) {
		entity := strings.ToLower(ob.Entity)
		action := strings.ToLower(ob.Action)
		key := entity + "_" + action

		prev, ok := seen[key]
		if !ok {
			seen[key] = statement{start: ob.Start, end: ob.End, negated: ob.Negated}
			continue
		}
		if prev.negated == ob.Negated {
			continue
		}

		issue := models.NewLegalIssue(
			models.IssueTypeContradiction,
			models.SeverityHigh,
			fmt.Sprintf("Conflicting %s for %s", ob.Category, entity),
			fmt.Sprintf("Document contains conflicting statements about %s's obligation to %s", entity, action),
		)
		issue.Confidence = 0.9
		issue.Suggestions = []string{
			fmt.Sprintf("Review and clarify the obligation of %s regarding %s", entity, action),
			"Ensure consistency in obligation statements throughout document",
		}
		issue.Locations = []models.Location{
			locationAt(text, prev.start, prev.end),
			locationAt(text, ob.Start, ob.End),
		}
		conflicts = append(conflicts, *issue)
	}
	return conflicts
}

// detectDateConflicts flags pairs of different date literals within the
// proximity window.
func (d *ContradictionDetector) detectDateConflicts(text string) []models.LegalIssue {
	dates := textproc.ExtractDates(text)

	var conflicts []models.LegalIssue
	for i := 0; i < len(dates); i++ {
		for j := i + 1; j < len(dates); j++ {
			a, b := dates[i], dates[j]
			if absInt(a.Start-b.Start) >= d.rules.Proximity.DateWindow || a.Text == b.Text {
				continue
			}

			issue := models.NewLegalIssue(
				models.IssueTypeInconsistency,
				models.SeverityMedium,
				"Potential Date Inconsistency",
				fmt.Sprintf("Found different dates '%s' and '%s' in close proximity", a.Text, b.Text),
			)
			issue.Confidence = 0.7
			issue.Suggestions = []string{
				"Verify that all dates are correct and consistent",
				"Consider using defined terms for important dates",
			}
			issue.Locations = []models.Location{
				locationAt(text, a.Start, a.End),
				locationAt(text, b.Start, b.End),
			}
			conflicts = append(conflicts, *issue)
		}
	}
	return conflicts
}

// detectAmountConflicts flags pairs of different parsed amounts within the
// proximity window.
func (d *ContradictionDetector) detectAmountConflicts(text string) []models.LegalIssue {
	amounts := textproc.ExtractAmounts(text)

	var conflicts []models.LegalIssue
	for i := 0; i < len(amounts); i++ {
		for j := i + 1; j < len(amounts); j++ {
			a, b := amounts[i], amounts[j]
			if absInt(a.Start-b.Start) >= d.rules.Proximity.AmountWindow || a.Value == b.Value {
				continue
			}

			issue := models.NewLegalIssue(
				models.IssueTypeInconsistency,
				models.SeverityHigh,
				"Monetary Amount Inconsistency",
				fmt.Sprintf("Found different amounts '%s' and '%s' in related context", a.Text, b.Text),
			)
			issue.Confidence = 0.8
			issue.Suggestions = []string{
				"Verify all monetary amounts are correct",
				"Ensure calculations are accurate",
				"Consider using defined terms for key amounts",
			}
			issue.Locations = []models.Location{
				locationAt(text, a.Start, a.End),
				locationAt(text, b.Start, b.End),
			}
			conflicts = append(conflicts, *issue)
		}
	}
	return conflicts
}

// detectReferenceErrors flags section references with no matching header.
// Missing references are emitted in sorted order.
func (d *ContradictionDetector) detectReferenceErrors(text string) []models.LegalIssue {
	firstRef := make(map[string]textproc.Match)
	for _, ref := range textproc.ExtractSectionReferences(text) {
		if _, ok := firstRef[ref.Text]; !ok {
			firstRef[ref.Text] = ref
		}
	}

	headers := make(map[string]bool)
	for _, header := range textproc.ExtractSectionHeaders(text) {
		headers[header.Text] = true
	}

	var missing []string
	for ref := range firstRef {
		if !headers[ref] {
			missing = append(missing, ref)
		}
	}
	sort.Strings(missing)

	var errs []models.LegalIssue
	for _, ref := range missing {
		issue := models.NewLegalIssue(
			models.IssueTypeReferenceError,
			models.SeverityMedium,
			fmt.Sprintf("Broken Section Reference: %s", ref),
			fmt.Sprintf("Document references Section %s which does not exist", ref),
		)
		issue.Confidence = 0.95
		issue.Suggestions = []string{
			fmt.Sprintf("Add Section %s or update the reference", ref),
			"Review all section references for accuracy",
		}
		match := firstRef[ref]
		issue.Locations = []models.Location{locationAt(text, match.Start, match.End)}
		errs = append(errs, *issue)
	}
	return errs
}

// detectRiskyPhrases flags every match of the risky phrase table.
func (d *ContradictionDetector) detectRiskyPhrases(text string) []models.LegalIssue {
	var issues []models.LegalIssue
	for _, phrase := range d.rules.RiskyPhrases {
		for _, loc := range phrase.Regexp.FindAllStringIndex(text, -1) {
			issue := models.NewLegalIssue(
				models.IssueTypeComplianceIssue,
				phrase.Severity,
				"Potential Legal Issue",
				phrase.Explanation,
			)
			issue.Confidence = 0.8
			issue.Suggestions = []string{
				"Consult with legal counsel regarding this clause",
				"Consider alternative language that achieves the same objective",
			}
			issue.Locations = []models.Location{locationAt(text, loc[0], loc[1])}
			issues = append(issues, *issue)
		}
	}
	return issues
}

// detectionConfidence blends issue confidences weighted by severity, scaled
// by document size. No issues means high confidence in a clean document.
func detectionConfidence(issues []models.LegalIssue, tokens int) float64 {
	if len(issues) == 0 {
		return 0.95
	}

	totalWeight := 0.0
	weighted := 0.0
	for i := range issues {
		w := models.SeverityWeight(issues[i].Severity)
		totalWeight += w
		weighted += issues[i].Confidence * w
	}

	avg := 0.5
	if totalWeight > 0 {
		avg = weighted / totalWeight
	}

	complexity := min(1.0, float64(tokens)/1000)
	return min(0.99, avg*(0.7+0.3*complexity))
}

func locationAt(text string, start, end int) models.Location {
	return models.Location{
		Excerpt: textproc.Excerpt(text, start, end),
		Offset:  start,
		End:     end,
		Line:    textproc.LineOfOffset(text, start),
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
