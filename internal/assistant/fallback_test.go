package assistant

import (
	"fmt"
	"testing"

	"github.com/example/storefront/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBudget(t *testing.T) {
	tests := []struct {
		query  string
		budget float64
		ok     bool
	}{
		{"a laptop under 500", 500, true},
		{"laptop under $500", 500, true},
		{"below 1,200.50", 1200.50, true},
		{"max 300 please", 300, true},
		{"within 1000", 1000, true},
		{"less than 250", 250, true},
		{"budget of 800", 800, true},
		{"I want a nice laptop", 0, false},
		{"500 laptops", 0, false},
		{"under zero 0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			budget, ok := ExtractBudget(tt.query)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.budget, budget, 0.001)
			}
		})
	}
}

func TestExtractType(t *testing.T) {
	typ, ok := ExtractType("I need a LAPTOP for work")
	require.True(t, ok)
	assert.Equal(t, "laptop", typ)

	// Plural still matches by substring.
	typ, ok = ExtractType("show me headphones")
	require.True(t, ok)
	assert.Equal(t, "headphone", typ)

	_, ok = ExtractType("something nice")
	assert.False(t, ok)
}

func fallbackCatalog() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Name: "ProBook Laptop", Category: "Laptops", Price: 450, Stock: 3},
		{ID: "p2", Name: "UltraBook Laptop", Category: "Laptops", Price: 900, Stock: 2},
		{ID: "p3", Name: "Gaming Mouse", Category: "Accessories", Price: 40, Stock: 10},
		{ID: "p4", Name: "4K Monitor", Category: "Displays", Price: 350, Stock: 5},
		{ID: "p5", Name: "Mechanical Keyboard", Category: "Accessories", Price: 120, Stock: 7},
	}
}

func TestHeuristicSearch_TypeAndBudget(t *testing.T) {
	matches := HeuristicSearch("a laptop under 500", fallbackCatalog())

	require.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].ID)
}

func TestHeuristicSearch_NothingInBudgetKeepsType(t *testing.T) {
	// No laptop under 200 exists; the type survives and the budget is
	// dropped rather than returning nothing.
	matches := HeuristicSearch("laptop under 200", fallbackCatalog())

	require.NotEmpty(t, matches)
	for _, p := range matches {
		assert.Contains(t, p.Category, "Laptop")
	}
}

func TestHeuristicSearch_PlainTextMatch(t *testing.T) {
	matches := HeuristicSearch("mechanical", fallbackCatalog())

	require.Len(t, matches, 1)
	assert.Equal(t, "p5", matches[0].ID)
}

func TestHeuristicSearch_TypeAloneWhenTextMisses(t *testing.T) {
	matches := HeuristicSearch("gimme a monitor xyzzy", fallbackCatalog())

	require.NotEmpty(t, matches)
	assert.Equal(t, "p4", matches[0].ID)
}

func TestHeuristicSearch_NeverEmptyWhileStockExists(t *testing.T) {
	matches := HeuristicSearch("qwertyuiop zzz", fallbackCatalog())

	assert.NotEmpty(t, matches)
}

func TestHeuristicSearch_LastResortCapped(t *testing.T) {
	var many []catalog.Product
	for i := 0; i < 25; i++ {
		many = append(many, catalog.Product{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Widget %d", i), Price: 10, Stock: 1})
	}

	matches := HeuristicSearch("zzz nothing matches", many)

	assert.Len(t, matches, fallbackLimit)
}

func TestHeuristicSearch_EmptyCatalog(t *testing.T) {
	assert.Nil(t, HeuristicSearch("laptop", nil))
}

func TestQueryTokens_DropsStopWordsAndNumbers(t *testing.T) {
	tokens := queryTokens("I am looking for a cheap laptop under 500, please!")

	assert.Equal(t, []string{"laptop"}, tokens)
}
