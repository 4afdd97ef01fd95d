package kbase

import "strings"

// Synonym mappings: key is the canonical term, values are variants that map to it.
// A variant may be multi-word; it triggers when a query token equals any single
// word of it.
var synonyms = map[string][]string{
	"price":    {"cost", "pricing", "costs", "fee", "fees", "rate", "rates", "much"},
	"plan":     {"plans", "tier", "tiers", "package", "packages", "subscription"},
	"refund":   {"refunds", "money back", "return", "returns", "reimburse"},
	"contact":  {"phone", "call", "email", "reach", "support"},
	"policy":   {"policies", "terms", "rules", "guidelines"},
	"discount": {"discounts", "off", "save", "savings", "promotion", "deal"},
	"uptime":   {"availability", "reliable", "reliability", "sla"},
}

// canonicalOrder keeps expansion deterministic regardless of map iteration.
var canonicalOrder = []string{"price", "plan", "refund", "contact", "policy", "discount", "uptime"}

// RewriteQuery expands a query with synonym mappings to improve search hits.
// Canonical terms are added alongside the original tokens rather than
// replacing them, each at most once, right after the token that triggered it.
func RewriteQuery(query string) string {
	words := strings.Fields(strings.ToLower(query))
	expanded := make([]string, 0, len(words)*2)

	contains := func(s string) bool {
		for _, e := range expanded {
			if e == s {
				return true
			}
		}
		return false
	}

	for _, word := range words {
		if !contains(word) {
			expanded = append(expanded, word)
		}

		for _, canonical := range canonicalOrder {
			if !triggers(word, synonyms[canonical]) {
				continue
			}
			if !contains(canonical) {
				expanded = append(expanded, canonical)
			}
		}
	}

	return strings.Join(expanded, " ")
}

func triggers(word string, variants []string) bool {
	for _, v := range variants {
		if v == word {
			return true
		}
		for _, part := range strings.Fields(v) {
			if part == word {
				return true
			}
		}
	}
	return false
}
