package kbase

import (
	"testing"
)

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no synonyms",
			query: "hello world",
			want:  "hello world",
		},
		{
			name:  "single synonym expanded",
			query: "what is the cost",
			want:  "what is the cost price",
		},
		{
			name:  "lowercased",
			query: "What Is The COST",
			want:  "what is the cost price",
		},
		{
			name:  "canonical not duplicated",
			query: "cost price",
			want:  "cost price",
		},
		{
			name:  "multiple canonicals",
			query: "pricing tiers",
			want:  "pricing price tiers plan",
		},
		{
			name:  "word of multi-word variant triggers",
			query: "money back please",
			want:  "money refund back please",
		},
		{
			name:  "duplicate tokens collapsed",
			query: "cost cost cost",
			want:  "cost price",
		},
		{
			name:  "variant formats",
			query: "is the sla reliable",
			want:  "is the sla uptime reliable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RewriteQuery(tt.query)
			if got != tt.want {
				t.Errorf("RewriteQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestTriggers(t *testing.T) {
	if !triggers("cost", synonyms["price"]) {
		t.Error("cost should trigger price")
	}
	if !triggers("money", synonyms["refund"]) {
		t.Error("single word of a multi-word variant should trigger")
	}
	if triggers("pric", synonyms["price"]) {
		t.Error("partial words should not trigger")
	}
}
