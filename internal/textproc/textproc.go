// Package textproc provides the shared text preprocessing used by the
// analysis components: tokenization, sentence and paragraph splitting, and
// document feature metrics. All offsets are byte offsets into the original
// text.
package textproc

import (
	"regexp"
	"strings"
)

// Document is a preprocessed view of an input text. It is built once per
// analysis and shared read-only by every component.
type Document struct {
	Text       string
	Tokens     []string
	Sentences  []string
	Lines      []string
	Paragraphs []string
}

var sentenceSplitter = regexp.MustCompile(`[.!?]+`)

// Preprocess splits a text into tokens, sentences, lines, and paragraphs.
func Preprocess(text string) *Document {
	d := &Document{
		Text:   text,
		Tokens: strings.Fields(text),
		Lines:  strings.Split(text, "\n"),
	}

	for _, s := range sentenceSplitter.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			d.Sentences = append(d.Sentences, s)
		}
	}

	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			d.Paragraphs = append(d.Paragraphs, p)
		}
	}

	return d
}

// TokenCount returns the number of whitespace-delimited tokens.
func (d *Document) TokenCount() int {
	return len(d.Tokens)
}

// densityTerms feed the legal-language density feature. Matched per token.
var densityTerms = map[string]bool{
	"whereas":         true,
	"therefore":       true,
	"hereby":          true,
	"therein":         true,
	"hereafter":       true,
	"notwithstanding": true,
}

// complexityTerms feed the document complexity estimate. Counted as
// substrings, so "hereinafter" counts for "herein".
var complexityTerms = []string{
	"whereas", "therefore", "hereby", "heretofore", "herein", "therein", "notwithstanding",
}

var (
	featureDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`),
	}
	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+\s+F\.\d+d?\s+\d+`),
		regexp.MustCompile(`\d+\s+U\.S\.C\.\s*§?\s*\d+`),
		regexp.MustCompile(`Fed\.\s*R\.`),
	}
	signatureBlockRe = regexp.MustCompile(`(?i)signature|signed|executed`)
	dateLineRe       = regexp.MustCompile(`(?i)date[d:]`)
	formalLanguageRe = regexp.MustCompile(`(?i)\b(respectfully|hereby|whereas|therefore)\b`)
)

// Features are structural and stylistic metrics attached to classification
// metadata for diagnostics.
type Features struct {
	LineCount                int     `json:"line_count"`
	ParagraphCount           int     `json:"paragraph_count"`
	SentenceCount            int     `json:"sentence_count"`
	LegalLanguageDensity     float64 `json:"legal_language_density"`
	DateMentions             int     `json:"date_mentions"`
	LegalCitations           int     `json:"legal_citations"`
	AverageSentenceLength    float64 `json:"average_sentence_length"`
	HasSignatureBlock        bool    `json:"has_signature_block"`
	HasDateLine              bool    `json:"has_date_line"`
	FormalLanguageIndicators int     `json:"formal_language_indicators"`
}

// Features computes the document feature metrics.
func (d *Document) Features() Features {
	f := Features{
		LineCount:      len(d.Lines),
		ParagraphCount: len(d.Paragraphs),
		SentenceCount:  len(d.Sentences),
	}

	if len(d.Tokens) > 0 {
		legal := 0
		for _, tok := range d.Tokens {
			if densityTerms[strings.ToLower(strings.Trim(tok, ".,;:()"))] {
				legal++
			}
		}
		f.LegalLanguageDensity = float64(legal) / float64(len(d.Tokens))
	}

	for _, re := range featureDatePatterns {
		f.DateMentions += len(re.FindAllStringIndex(d.Text, -1))
	}
	for _, re := range citationPatterns {
		f.LegalCitations += len(re.FindAllStringIndex(d.Text, -1))
	}

	if len(d.Sentences) > 0 {
		totalTokens := 0
		for _, s := range d.Sentences {
			totalTokens += len(strings.Fields(s))
		}
		f.AverageSentenceLength = float64(totalTokens) / float64(len(d.Sentences))
	}

	f.HasSignatureBlock = signatureBlockRe.MatchString(d.Text)
	f.HasDateLine = dateLineRe.MatchString(d.Text)
	f.FormalLanguageIndicators = len(formalLanguageRe.FindAllStringIndex(d.Text, -1))

	return f
}

// Map converts features to the metadata map shape carried on results.
func (f Features) Map() map[string]any {
	return map[string]any{
		"line_count":                 f.LineCount,
		"paragraph_count":            f.ParagraphCount,
		"sentence_count":             f.SentenceCount,
		"legal_language_density":     f.LegalLanguageDensity,
		"date_mentions":              f.DateMentions,
		"legal_citations":            f.LegalCitations,
		"average_sentence_length":    f.AverageSentenceLength,
		"has_signature_block":        f.HasSignatureBlock,
		"has_date_line":              f.HasDateLine,
		"formal_language_indicators": f.FormalLanguageIndicators,
	}
}

// ComplexityScore estimates document complexity in [0,1], blending length,
// structure, and legal vocabulary, each normalized against a fixed baseline.
func ComplexityScore(text string) float64 {
	words := len(strings.Fields(text))

	paragraphs := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}

	lower := strings.ToLower(text)
	legalTerms := 0
	for _, term := range complexityTerms {
		legalTerms += strings.Count(lower, term)
	}

	wordComplexity := min(1.0, float64(words)/5000)
	structureComplexity := min(1.0, float64(paragraphs)/50)
	legalComplexity := min(1.0, float64(legalTerms)/20)

	return wordComplexity*0.4 + structureComplexity*0.3 + legalComplexity*0.3
}

// LineOfOffset returns the 1-based line number containing a byte offset.
func LineOfOffset(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}

// Excerpt returns the text between start and end, clamped to bounds and
// trimmed to at most 120 bytes.
func Excerpt(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	excerpt := text[start:end]
	if len(excerpt) > 120 {
		excerpt = excerpt[:120]
	}
	return strings.TrimSpace(excerpt)
}
