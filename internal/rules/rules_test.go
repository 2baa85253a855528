package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harwood/paralegal/internal/models"
)

func TestDefault(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	require.Len(t, r.Classification.DocumentTypes, 14)
	assert.Equal(t, models.DocumentTypeContract, r.Classification.DocumentTypes[0].Type)

	contract, ok := r.Classification.RuleFor(models.DocumentTypeContract)
	require.True(t, ok)
	assert.Len(t, contract.Keywords, 7)
	assert.InEpsilon(t, 0.7, contract.Threshold, 1e-9)
	require.Len(t, contract.Regexps, 3)
	assert.True(t, contract.Regexps[0].MatchString("WHEREAS the parties"), "patterns compile case-insensitive")

	assert.Len(t, r.Classification.Signatures, 5)
	assert.Contains(t, r.Classification.Signatures[models.DocumentTypeAffidavit], "being duly sworn")

	families := r.Classification.Subcategories[models.DocumentTypeContract]
	require.Len(t, families, 5)
	assert.Equal(t, "employment", families[0].Name)
	assert.Equal(t, "nda", families[4].Name)

	require.GreaterOrEqual(t, len(r.Detection.RiskyPhrases), 3)
	first := r.Detection.RiskyPhrases[0]
	assert.Equal(t, models.SeverityHigh, first.Severity)
	assert.True(t, first.Regexp.MatchString("lasts FOREVER and ever"))
	assert.False(t, first.Regexp.MatchString("forevermore"))

	require.Len(t, r.Detection.ClauseChecks, 4)
	assert.Equal(t, "governing law", r.Detection.ClauseChecks[0].Name)
	assert.Equal(t, "force majeure", r.Detection.ClauseChecks[3].Name)
	assert.Equal(t, 200, r.Detection.Proximity.DateWindow)
	assert.Equal(t, 300, r.Detection.Proximity.AmountWindow)

	require.Len(t, r.Remedies.Templates, 6)
	assert.Equal(t, "contradiction_clarification", r.Remedies.Templates[0].ID)
	assert.Len(t, r.Remedies.Templates[0].Steps, 5)
	require.Len(t, r.Remedies.Precedents, 3)
	assert.Len(t, r.Remedies.Mitigations, 5)
	assert.Len(t, r.Remedies.Impacts, 5)
	assert.NotEmpty(t, r.Remedies.DefaultImpact)
}

func TestLoadOverridesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	override := `detection:
  risky_phrases:
    - pattern: '\bindemnify\b'
      severity: low
      explanation: "Indemnification scope should be reviewed"
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o600))

	r, err := Load(path)
	require.NoError(t, err)

	// Only the overridden list is replaced.
	require.Len(t, r.Detection.RiskyPhrases, 1)
	assert.Equal(t, models.SeverityLow, r.Detection.RiskyPhrases[0].Severity)
	assert.True(t, r.Detection.RiskyPhrases[0].Regexp.MatchString("shall indemnify the client"))

	assert.Len(t, r.Detection.ClauseChecks, 4)
	assert.Equal(t, 200, r.Detection.Proximity.DateWindow)
	assert.Len(t, r.Classification.DocumentTypes, 14)
	assert.Len(t, r.Remedies.Templates, 6)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading rules file")
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name: "invalid risky phrase severity",
			yaml: `detection:
  risky_phrases:
    - pattern: '\bforever\b'
      severity: catastrophic
      explanation: "Too strong"
`,
			errMsg: "invalid severity",
		},
		{
			name: "risky phrase pattern does not compile",
			yaml: `detection:
  risky_phrases:
    - pattern: '(['
      severity: high
      explanation: "Broken"
`,
			errMsg: "bad pattern",
		},
		{
			name: "invalid document type",
			yaml: `classification:
  document_types:
    - type: screenplay
      keywords: [fade, cut]
      threshold: 0.5
`,
			errMsg: "invalid document type",
		},
		{
			name: "threshold out of range",
			yaml: `classification:
  document_types:
    - type: contract
      keywords: [agreement]
      threshold: 1.5
`,
			errMsg: "threshold must be in (0, 1]",
		},
		{
			name: "invalid mitigation issue type",
			yaml: `remedies:
  mitigations:
    paradox:
      - "Avoid paradoxes"
`,
			errMsg: "invalid issue type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTemplatesFor(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	contradiction := r.Remedies.TemplatesFor(models.IssueTypeContradiction)
	require.Len(t, contradiction, 1)
	assert.Equal(t, "contradiction_clarification", contradiction[0].ID)

	compliance := r.Remedies.TemplatesFor(models.IssueTypeComplianceIssue)
	require.Len(t, compliance, 2)
	assert.Equal(t, "missing_clause_addition", compliance[0].ID)
	assert.Equal(t, "compliance_update", compliance[1].ID)

	assert.Empty(t, r.Remedies.TemplatesFor(models.IssueTypeInconsistency))
}

func TestPrecedentsFor(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	ambiguity := r.Remedies.PrecedentsFor(models.IssueTypeAmbiguity)
	require.Len(t, ambiguity, 2)
	assert.Contains(t, ambiguity[0].Case, "Frigaliment")
	assert.Contains(t, ambiguity[1].Case, "Lucy")

	risk := r.Remedies.PrecedentsFor(models.IssueTypeRiskFactor)
	require.Len(t, risk, 1)
	assert.Contains(t, risk[0].Case, "Hadley")
}

func TestImpactFor(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Substantially improves contract enforceability and reduces disputes",
		r.Remedies.ImpactFor(models.SeverityHigh))
	assert.Equal(t, r.Remedies.DefaultImpact, r.Remedies.ImpactFor("unrated"))
}
