package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/internal/rules"
	"github.com/harwood/paralegal/internal/textproc"
	"github.com/harwood/paralegal/pkg/logger"
)

// InstrumentClassifier scores a document against per-type rule sets and
// picks the best match. Scoring blends four dimensions: keywords, phrases,
// regex patterns, and type signature phrases (0.3/0.3/0.2/0.2). A winner
// below its threshold degrades to unknown but keeps its raw scores.
type InstrumentClassifier struct {
	rules  *rules.ClassificationRules
	logger logger.Logger
}

// NewInstrumentClassifier creates a classifier over the given rule tables.
func NewInstrumentClassifier(r *rules.Rules, log logger.Logger) *InstrumentClassifier {
	return &InstrumentClassifier{
		rules:  &r.Classification,
		logger: log,
	}
}

// Classify determines the document type of a legal text.
func (c *InstrumentClassifier) Classify(ctx context.Context, text string) (*models.Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(ComponentClassification, ErrorKindClassification, err)
	}

	doc := textproc.Preprocess(text)
	lower := strings.ToLower(text)

	scores := make(map[string]float64, len(c.rules.DocumentTypes))
	bestType := models.DocumentTypeUnknown
	bestScore := -1.0
	var bestThreshold float64

	// Registration order breaks ties: only a strictly higher score displaces
	// the current best.
	for i := range c.rules.DocumentTypes {
		rule := &c.rules.DocumentTypes[i]

		score := scoreKeywords(lower, rule.Keywords)*0.3 +
			scorePhrases(lower, rule.Phrases)*0.3 +
			scorePatterns(text, rule.Regexps)*0.2 +
			scoreSignatures(lower, c.rules.Signatures[rule.Type])*0.2
		score = min(1.0, score)

		scores[rule.Type] = score
		if score > bestScore {
			bestType = rule.Type
			bestScore = score
			bestThreshold = rule.Threshold
		}
	}

	// Subcategories follow the best-scoring type even when the final type
	// degrades to unknown.
	subcategories := c.identifySubcategories(lower, bestType)

	documentType := bestType
	if bestScore < bestThreshold {
		documentType = models.DocumentTypeUnknown
	}

	classification := &models.Classification{
		DocumentType:  documentType,
		Confidence:    bestScore,
		Subcategories: subcategories,
		Metadata: map[string]any{
			"all_scores":              scores,
			"classification_features": doc.Features().Map(),
		},
	}

	c.logger.Debug("document classified",
		"type", documentType,
		"confidence", bestScore,
		"subcategories", len(subcategories))

	return classification, nil
}

// identifySubcategories returns the names of keyword families matching the
// text, in family declaration order.
func (c *InstrumentClassifier) identifySubcategories(lower, docType string) []string {
	var subcategories []string
	for _, family := range c.rules.Subcategories[docType] {
		for _, keyword := range family.Keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				subcategories = append(subcategories, family.Name)
				break
			}
		}
	}
	return subcategories
}

func scoreKeywords(lower string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	found := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			found++
		}
	}
	return float64(found) / float64(len(keywords))
}

func scorePhrases(lower string, phrases []string) float64 {
	if len(phrases) == 0 {
		return 0
	}
	found := 0
	for _, phrase := range phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			found++
		}
	}
	return float64(found) / float64(len(phrases))
}

// scorePatterns counts every pattern match, normalized against two matches
// per pattern.
func scorePatterns(text string, regexps []*regexp.Regexp) float64 {
	if len(regexps) == 0 {
		return 0
	}
	total := 0
	for _, re := range regexps {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return min(1.0, float64(total)/float64(len(regexps)*2))
}

func scoreSignatures(lower string, signatures []string) float64 {
	if len(signatures) == 0 {
		return 0
	}
	found := 0
	for _, signature := range signatures {
		if strings.Contains(lower, strings.ToLower(signature)) {
			found++
		}
	}
	return float64(found) / float64(len(signatures))
}
