package guardrail

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.5", "12.5"},
		{"12,5", "12.5"},
		{"9.99", "9.99"},
		{"50%", "50%"},
		{"+46 123 456", "+46123456"},
		{"+46 123-456", "+46123-456"},
		{"1,234.56", "1.234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCommaEqualsPeriod(t *testing.T) {
	if Normalize("12,5") != Normalize("12.5") {
		t.Error("comma and period decimals should normalize to the same form")
	}
}

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain numbers",
			text: "The plan costs 9.99 and renews after 30 days.",
			want: []string{"9.99", "30"},
		},
		{
			name: "percentage",
			text: "Uptime is 99.9% guaranteed.",
			want: []string{"99.9%"},
		},
		{
			name: "phone number",
			text: "Call +46 123 456 789 anytime.",
			want: []string{"+46 123 456 789 "},
		},
		{
			name: "no numbers",
			text: "Nothing numeric here.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractNumbers(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractNumbers(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestVerifyAllGrounded(t *testing.T) {
	citations := []Citation{
		{File: "kb/prices.md", Snippet: "The premium plan costs 29.99 per month."},
	}
	v := Verify("Based on the knowledge base: the plan costs 29.99.", citations)
	if !v.Valid {
		t.Errorf("expected valid, unverified = %v", v.Unverified)
	}
}

func TestVerifyUngroundedNumber(t *testing.T) {
	citations := []Citation{
		{File: "kb/prices.md", Snippet: "The premium plan costs 29.99 per month."},
	}
	v := Verify("The plan costs 19.99.", citations)
	if v.Valid {
		t.Fatal("expected invalid")
	}
	if !reflect.DeepEqual(v.Unverified, []string{"19.99"}) {
		t.Errorf("unverified = %v, want [19.99]", v.Unverified)
	}
}

func TestVerifySeparatorInsensitive(t *testing.T) {
	citations := []Citation{
		{File: "kb/prices.md", Snippet: "The plan costs 29.99 per month."},
	}
	v := Verify("It costs 29,99 in total.", citations)
	if !v.Valid {
		t.Errorf("comma variant of a cited number should verify, unverified = %v", v.Unverified)
	}
}

func TestVerifyStringEqualityNotNumeric(t *testing.T) {
	citations := []Citation{
		{File: "kb/prices.md", Snippet: "The plan costs 9.99 per month."},
	}
	v := Verify("It costs 09.99.", citations)
	if v.Valid {
		t.Error("leading zero form should not match, comparison is by string")
	}
}

func TestVerifyKeepsOrderAndDuplicates(t *testing.T) {
	citations := []Citation{
		{File: "kb/prices.md", Snippet: "The plan costs 9.99 per month."},
	}
	v := Verify("Pay 42 now, then 13, then 42 again.", citations)
	if v.Valid {
		t.Fatal("expected invalid")
	}
	want := []string{"42", "13", "42"}
	if !reflect.DeepEqual(v.Unverified, want) {
		t.Errorf("unverified = %v, want %v", v.Unverified, want)
	}
}

func TestVerifyNoNumbersIsValid(t *testing.T) {
	v := Verify("Nothing numeric to check.", nil)
	if !v.Valid {
		t.Error("an answer without numbers should always verify")
	}
}

func TestRefusalResponse(t *testing.T) {
	citations := []Citation{{File: "kb/prices.md", Snippet: "costs 9.99"}}
	answer := RefusalResponse([]string{"42", "13"}, citations)

	want := "I cannot verify that information. The following numbers could not be found in the knowledge base: 42, 13"
	if answer.Text != want {
		t.Errorf("text = %q, want %q", answer.Text, want)
	}
	if len(answer.Citations) != 1 {
		t.Error("refusal should keep citations for inspection")
	}
}

func TestNoSourcesResponse(t *testing.T) {
	answer := NoSourcesResponse()
	if answer.Text != "I couldn't find any references to this in the knowledge base." {
		t.Errorf("unexpected text %q", answer.Text)
	}
	if answer.Citations == nil || len(answer.Citations) != 0 {
		t.Error("no-sources response should carry an empty citation slice")
	}
}
