package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	text := "1 Scope\nThe Contractor shall deliver goods. Payment is due monthly!\n\nIs this final? Yes."
	doc := Preprocess(text)

	assert.Equal(t, text, doc.Text)
	assert.Equal(t, 4, len(doc.Lines))
	assert.Equal(t, 2, len(doc.Paragraphs))
	assert.Equal(t, 4, len(doc.Sentences))
	assert.Equal(t, len(strings.Fields(text)), doc.TokenCount())
}

func TestPreprocessEmptyText(t *testing.T) {
	doc := Preprocess("")
	assert.Zero(t, doc.TokenCount())
	assert.Empty(t, doc.Sentences)
	assert.Empty(t, doc.Paragraphs)
	// strings.Split always yields at least one line.
	assert.Equal(t, 1, len(doc.Lines))
}

func TestFeatures(t *testing.T) {
	text := "WHEREAS the parties agree, the Contractor hereby accepts the terms.\n\n" +
		"Dated: 01/15/2024. See 42 U.S.C. § 1983 and Fed. R. Civ. P. 12.\n\n" +
		"Signature: ____________\n"
	doc := Preprocess(text)
	f := doc.Features()

	assert.Equal(t, 6, f.LineCount)
	assert.Equal(t, 3, f.ParagraphCount)
	assert.Positive(t, f.SentenceCount)
	assert.Positive(t, f.LegalLanguageDensity, "whereas and hereby are legal terms")
	assert.Equal(t, 1, f.DateMentions)
	assert.Equal(t, 2, f.LegalCitations)
	assert.True(t, f.HasSignatureBlock)
	assert.True(t, f.HasDateLine)
	assert.Equal(t, 2, f.FormalLanguageIndicators, "whereas and hereby")
	assert.Positive(t, f.AverageSentenceLength)

	m := f.Map()
	assert.Equal(t, f.LineCount, m["line_count"])
	assert.Equal(t, f.HasSignatureBlock, m["has_signature_block"])
}

func TestFeaturesPlainText(t *testing.T) {
	doc := Preprocess("The quick brown fox jumps over the lazy dog.")
	f := doc.Features()

	assert.Zero(t, f.LegalLanguageDensity)
	assert.Zero(t, f.DateMentions)
	assert.Zero(t, f.LegalCitations)
	assert.False(t, f.HasSignatureBlock)
	assert.False(t, f.HasDateLine)
	assert.Zero(t, f.FormalLanguageIndicators)
}

func TestComplexityScore(t *testing.T) {
	assert.Zero(t, ComplexityScore(""))

	simple := ComplexityScore("Short note.")
	legal := ComplexityScore(strings.Repeat("whereas the parties hereby agree notwithstanding prior terms\n\n", 30))
	assert.Greater(t, legal, simple)
	assert.LessOrEqual(t, legal, 1.0)

	// Saturates at 1.0 for very large, very legal documents.
	huge := ComplexityScore(strings.Repeat("whereas hereby notwithstanding therein herein word word word \n\n", 1000))
	assert.InDelta(t, 1.0, huge, 0.01)
}

func TestExtractDates(t *testing.T) {
	text := "Effective 01/15/2024, renewed on 2024-06-01, signed January 3, 2024 and 15 March 2025."
	dates := ExtractDates(text)

	require.Len(t, dates, 4)
	texts := make([]string, len(dates))
	for i, d := range dates {
		texts[i] = d.Text
		assert.Equal(t, text[d.Start:d.End], d.Text)
	}
	// Pattern-major order: numeric m/d/y first, then y/m/d, then month-name forms.
	assert.Equal(t, []string{"01/15/2024", "2024-06-01", "January 3, 2024", "15 March 2025"}, texts)
}

func TestExtractDatesNone(t *testing.T) {
	assert.Empty(t, ExtractDates("No dates here, not even 99 bottles."))
}

func TestExtractAmounts(t *testing.T) {
	text := "Fee of $5,000.00 payable; late charge $250 plus $1,250.50 deposit."
	amounts := ExtractAmounts(text)

	require.Len(t, amounts, 3)
	assert.Equal(t, "$5,000.00", amounts[0].Text)
	assert.InEpsilon(t, 5000.0, amounts[0].Value, 1e-9)
	assert.InEpsilon(t, 250.0, amounts[1].Value, 1e-9)
	assert.InEpsilon(t, 1250.50, amounts[2].Value, 1e-9)
	for _, a := range amounts {
		assert.Equal(t, text[a.Start:a.End], a.Text)
	}
}

func TestExtractAmountsSkipsUnparsable(t *testing.T) {
	// "$," matches the currency pattern but holds no digits.
	amounts := ExtractAmounts("totals: $, and $100")
	require.Len(t, amounts, 1)
	assert.InEpsilon(t, 100.0, amounts[0].Value, 1e-9)
}

func TestExtractObligations(t *testing.T) {
	text := "Party A shall provide services. Party A shall not provide services. The vendor must deliver. Tenant will not sublet."
	obligations := ExtractObligations(text)
	require.Len(t, obligations, 4)

	// shall-pattern matches come first.
	assert.Equal(t, "A", obligations[0].Entity)
	assert.Equal(t, "provide", obligations[0].Action)
	assert.False(t, obligations[0].Negated)
	assert.Equal(t, "obligation", obligations[0].Category)

	assert.True(t, obligations[1].Negated)
	assert.Equal(t, "provide", obligations[1].Action)

	assert.Equal(t, "requirement", obligations[2].Category)
	assert.Equal(t, "vendor", obligations[2].Entity)
	assert.Equal(t, "deliver", obligations[2].Action)

	assert.Equal(t, "commitment", obligations[3].Category)
	assert.Equal(t, "Tenant", obligations[3].Entity)
	assert.True(t, obligations[3].Negated)
	assert.Equal(t, "sublet", obligations[3].Action)
}

func TestExtractSectionReferencesAndHeaders(t *testing.T) {
	text := "1 Definitions\n1.1 Terms used herein.\n2 Payment\nAs stated in Section 1.1 and section 3, payment follows Section 2."

	refs := ExtractSectionReferences(text)
	require.Len(t, refs, 3)
	assert.Equal(t, "1.1", refs[0].Text)
	assert.Equal(t, "3", refs[1].Text)
	assert.Equal(t, "2", refs[2].Text)

	headers := ExtractSectionHeaders(text)
	require.Len(t, headers, 3)
	assert.Equal(t, "1", headers[0].Text)
	assert.Equal(t, "1.1", headers[1].Text)
	assert.Equal(t, "2", headers[2].Text)
}

func TestLineOfOffset(t *testing.T) {
	text := "first\nsecond\nthird"
	assert.Equal(t, 1, LineOfOffset(text, 0))
	assert.Equal(t, 2, LineOfOffset(text, 7))
	assert.Equal(t, 3, LineOfOffset(text, len(text)))
	assert.Equal(t, 3, LineOfOffset(text, len(text)+100))
}

func TestExcerpt(t *testing.T) {
	text := "The Contractor shall deliver all goods on time."
	assert.Equal(t, "Contractor shall", Excerpt(text, 4, 20))
	assert.Equal(t, "", Excerpt(text, 30, 10))
	assert.Equal(t, "", Excerpt(text, -5, -1))

	long := strings.Repeat("a", 300)
	assert.Len(t, Excerpt(long, 0, 300), 120)
}
