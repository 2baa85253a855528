package textproc

import (
	"regexp"
	"strconv"
	"strings"
)

// Match is a located substring extracted from a document.
type Match struct {
	Text  string
	Start int
	End   int
}

// Amount is a located currency amount with its parsed numeric value.
type Amount struct {
	Text  string
	Start int
	End   int
	Value float64
}

// Obligation is a located obligation statement of the form
// "<entity> shall|must|will [not] <action>".
type Obligation struct {
	Entity   string
	Action   string
	Category string
	Negated  bool
	Start    int
	End      int
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`),
	regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`),
}

// ExtractDates finds date-like substrings using several format patterns.
// Results are grouped by pattern, preserving scan order within each.
func ExtractDates(text string) []Match {
	var dates []Match
	for _, re := range datePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			dates = append(dates, Match{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
		}
	}
	return dates
}

var amountPattern = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)

// ExtractAmounts finds currency amounts and parses their numeric values.
// Matches whose digits do not parse are skipped.
func ExtractAmounts(text string) []Amount {
	var amounts []Amount
	for _, loc := range amountPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		value, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(raw), 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, Amount{Text: raw, Start: loc[0], End: loc[1], Value: value})
	}
	return amounts
}

// obligationPatterns pair a modal-verb pattern with the category reported
// for conflicts it participates in.
var obligationPatterns = []struct {
	re       *regexp.Regexp
	category string
}{
	{regexp.MustCompile(`(?i)\b(\w+)\s+shall\s+(not\s+)?(\w+)`), "obligation"},
	{regexp.MustCompile(`(?i)\b(\w+)\s+must\s+(not\s+)?(\w+)`), "requirement"},
	{regexp.MustCompile(`(?i)\b(\w+)\s+will\s+(not\s+)?(\w+)`), "commitment"},
}

// ExtractObligations finds obligation statements. Entity and action are
// returned as matched; callers normalize case for keying.
func ExtractObligations(text string) []Obligation {
	var obligations []Obligation
	for _, p := range obligationPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			// Groups: 1 entity, 2 optional negation, 3 action.
			ob := Obligation{
				Entity:   text[m[2]:m[3]],
				Category: p.category,
				Negated:  m[4] >= 0,
				Start:    m[0],
				End:      m[1],
			}
			ob.Action = text[m[6]:m[7]]
			obligations = append(obligations, ob)
		}
	}
	return obligations
}

var (
	sectionRefPattern    = regexp.MustCompile(`(?i)Section\s+(\d+(?:\.\d+)*)`)
	sectionHeaderPattern = regexp.MustCompile(`(?m)^(\d+(?:\.\d+)*)\s+`)
)

// ExtractSectionReferences finds "Section N[.M...]" references. Match.Text
// holds the section number only.
func ExtractSectionReferences(text string) []Match {
	var refs []Match
	for _, m := range sectionRefPattern.FindAllStringSubmatchIndex(text, -1) {
		refs = append(refs, Match{Text: text[m[2]:m[3]], Start: m[0], End: m[1]})
	}
	return refs
}

// ExtractSectionHeaders finds numbered section headers at line starts.
// Match.Text holds the section number only.
func ExtractSectionHeaders(text string) []Match {
	var headers []Match
	for _, m := range sectionHeaderPattern.FindAllStringSubmatchIndex(text, -1) {
		headers = append(headers, Match{Text: text[m[2]:m[3]], Start: m[0], End: m[1]})
	}
	return headers
}
