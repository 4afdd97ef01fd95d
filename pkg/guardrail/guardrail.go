// Package guardrail verifies that every numeric claim in a composed answer is
// traceable to a cited knowledge base snippet.
package guardrail

import (
	"regexp"
	"strings"
)

// Matches numbers including integers, decimals, percentages, dates and
// phone-number-like tokens.
// Examples: 12, 12.5, 12,5, 50%, 2025-12-12, +46123456789
var numberPattern = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)*%?|\+[0-9][0-9\s-]*`)

// Citation is a passage re-surfaced to the caller as grounding evidence.
type Citation struct {
	File    string `json:"file"`
	Snippet string `json:"snippet"`
}

// Verification reports whether an answer passed the grounding check and
// which numbers (original form, order of first appearance, duplicates kept)
// could not be traced back to a citation.
type Verification struct {
	Valid      bool
	Unverified []string
}

// Normalize treats . and , as equivalent decimal separators and strips all
// whitespace, so "12,5" equals "12.5" and "+46 123 456" equals "+46123456".
func Normalize(num string) string {
	num = strings.ReplaceAll(num, ",", ".")
	return strings.Join(strings.Fields(num), "")
}

// ExtractNumbers returns every numeric token of text in its original form.
func ExtractNumbers(text string) []string {
	return numberPattern.FindAllString(text, -1)
}

// NumberExistsInCitations reports whether num appears (after normalization,
// compared by exact string equality) in any cited snippet.
func NumberExistsInCitations(num string, citations []Citation) bool {
	normalized := Normalize(num)
	for _, citation := range citations {
		for _, sn := range ExtractNumbers(citation.Snippet) {
			if Normalize(sn) == normalized {
				return true
			}
		}
	}
	return false
}

// Verify checks that all numbers in the answer text exist in the cited
// snippets. String equality after normalization, not numeric equality:
// "9.99" and "09.99" do not match.
func Verify(answerText string, citations []Citation) Verification {
	var unverified []string
	for _, num := range ExtractNumbers(answerText) {
		if !NumberExistsInCitations(num, citations) {
			unverified = append(unverified, num)
		}
	}
	return Verification{
		Valid:      len(unverified) == 0,
		Unverified: unverified,
	}
}

// GuardedAnswer is the substitute response the session releases when the
// original candidate cannot be.
type GuardedAnswer struct {
	Text      string
	Citations []Citation
}

// RefusalResponse names every unverified number and keeps the citations so
// the caller can still inspect the sources.
func RefusalResponse(unverified []string, citations []Citation) GuardedAnswer {
	return GuardedAnswer{
		Text: "I cannot verify that information. The following numbers could not be found in the knowledge base: " +
			strings.Join(unverified, ", "),
		Citations: citations,
	}
}

// NoSourcesResponse is released when retrieval found nothing at all.
func NoSourcesResponse() GuardedAnswer {
	return GuardedAnswer{
		Text:      "I couldn't find any references to this in the knowledge base.",
		Citations: []Citation{},
	}
}
