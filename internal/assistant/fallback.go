package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/example/storefront/internal/catalog"
)

// fallbackLimit caps the absolute last-resort result set.
const fallbackLimit = 10

// typeVocabulary is the fixed set of product-type keywords the heuristic
// recognizes. Matching is singular-substring, so "laptops" hits "laptop".
var typeVocabulary = []string{
	"laptop", "phone", "monitor", "keyboard", "mouse", "headphone",
	"earbud", "speaker", "tablet", "camera", "watch", "tv", "printer",
	"router", "console", "drone", "charger", "desk", "chair", "bag",
}

// budgetPattern captures a number following a budget word, e.g.
// "under 500", "below 1,200.50", "max $300".
var budgetPattern = regexp.MustCompile(`(?i)(?:under|below|around|max|within|less than|budget of|budget)\s*\$?\s*([\d,]+(?:\.\d+)?)`)

// queryStopWords are dropped before substring matching so budget phrasing
// does not poison the text filter.
var queryStopWords = map[string]bool{
	"under": true, "below": true, "around": true, "max": true, "within": true,
	"less": true, "than": true, "budget": true, "the": true, "for": true,
	"with": true, "and": true, "need": true, "want": true, "looking": true,
	"buy": true, "show": true, "find": true, "some": true, "cheap": true,
	"good": true, "best": true, "please": true,
}

// ExtractBudget pulls a budget ceiling out of the query, if one is phrased.
func ExtractBudget(query string) (float64, bool) {
	m := budgetPattern.FindStringSubmatch(query)
	if m == nil {
		return 0, false
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ExtractType finds the first vocabulary keyword present in the query.
func ExtractType(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, t := range typeVocabulary {
		if strings.Contains(q, t) {
			return t, true
		}
	}
	return "", false
}

// HeuristicSearch is the deterministic fallback used whenever the model is
// unavailable, unparsable or returned nothing usable. It cascades through
// progressively looser filters and always returns a non-empty set when the
// input catalog is non-empty.
func HeuristicSearch(query string, products []catalog.Product) []catalog.Product {
	if len(products) == 0 {
		return nil
	}

	budget, hasBudget := ExtractBudget(query)
	typ, hasType := ExtractType(query)
	tokens := queryTokens(query)

	match := func(keep func(catalog.Product) bool) []catalog.Product {
		var out []catalog.Product
		for _, p := range products {
			if keep(p) {
				out = append(out, p)
			}
		}
		return out
	}

	// Tightest first: text, budget and type all at once.
	if out := match(func(p catalog.Product) bool {
		return matchesTokens(p, tokens) &&
			(!hasBudget || p.Price <= budget) &&
			(!hasType || matchesType(p, typ))
	}); len(out) > 0 {
		return out
	}

	// Nothing in budget: keep the type, ignore the ceiling.
	if hasType {
		if out := match(func(p catalog.Product) bool {
			return matchesTokens(p, tokens) && matchesType(p, typ)
		}); len(out) > 0 {
			return out
		}
	}

	// Plain text match, no other constraints.
	if out := match(func(p catalog.Product) bool {
		return matchesTokens(p, tokens)
	}); len(out) > 0 {
		return out
	}

	// Type alone against category and name.
	if hasType {
		if out := match(func(p catalog.Product) bool {
			return matchesType(p, typ)
		}); len(out) > 0 {
			return out
		}
	}

	// Absolute fallback: first products in stock.
	if len(products) > fallbackLimit {
		return products[:fallbackLimit]
	}
	return products
}

func queryTokens(query string) []string {
	var tokens []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?$")
		if len(w) < 3 || queryStopWords[w] {
			continue
		}
		if _, err := strconv.ParseFloat(strings.ReplaceAll(w, ",", ""), 64); err == nil {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// matchesTokens reports whether any query token appears in the product's
// name, description, category, brand or tags.
func matchesTokens(p catalog.Product, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	haystack := strings.ToLower(p.Name + " " + p.Description + " " + p.Category + " " + p.Brand + " " + strings.Join(p.Tags, " "))
	for _, t := range tokens {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

func matchesType(p catalog.Product, typ string) bool {
	return strings.Contains(strings.ToLower(p.Name), typ) ||
		strings.Contains(strings.ToLower(p.Category), typ) ||
		strings.Contains(strings.ToLower(strings.Join(p.Tags, " ")), typ)
}
