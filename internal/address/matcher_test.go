package address

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadavh/aptwatch/internal/common"
)

func testCatalog() []CatalogCity {
	return []CatalogCity{
		{
			City: "Test City",
			Neighborhoods: []CatalogNeighborhood{
				{
					Neighborhood: "Center",
					Streets: []CatalogStreet{
						{Name: "Ibervich"},
						{Name: "Beitar", Constraint: "even numbers only"},
					},
				},
			},
		},
		{
			City: "Other City",
			Neighborhoods: []CatalogNeighborhood{
				{
					Neighborhood: "North",
					Streets: []CatalogStreet{
						{Name: "Ibervich"},
					},
				},
			},
		},
	}
}

func TestMatcher_ExactMatch(t *testing.T) {
	m := NewMatcher(testCatalog())

	match := m.Match("Ibervich", "Test City")
	assert.True(t, match.IsAllowed)
	assert.Empty(t, match.Constraint)
	assert.Equal(t, "Center", match.Neighborhood)
	assert.Equal(t, "Test City", match.City)
}

func TestMatcher_ConstraintPropagates(t *testing.T) {
	m := NewMatcher(testCatalog())

	match := m.Match("Beitar", "Test City")
	assert.True(t, match.IsAllowed)
	assert.Equal(t, "even numbers only", match.Constraint)
}

func TestMatcher_UnknownStreet(t *testing.T) {
	m := NewMatcher(testCatalog())

	match := m.Match("Unknown Street", "Test City")
	assert.False(t, match.IsAllowed)
	assert.Empty(t, match.Constraint)
	assert.Empty(t, match.Neighborhood)
	assert.Empty(t, match.City)
}

func TestMatcher_CityScoping(t *testing.T) {
	m := NewMatcher(testCatalog())

	// The street exists, but not in this city.
	match := m.Match("Beitar", "Other City")
	assert.False(t, match.IsAllowed)

	// An unknown city never matches, even for a cataloged street name.
	match = m.Match("Ibervich", "Nowhere")
	assert.False(t, match.IsAllowed)
}

func TestMatcher_SelfConsistency(t *testing.T) {
	catalog := testCatalog()
	m := NewMatcher(catalog)

	for _, city := range catalog {
		for _, neighborhood := range city.Neighborhoods {
			for _, street := range neighborhood.Streets {
				match := m.Match(street.Name, city.City)
				assert.True(t, match.IsAllowed,
					"street %q in %q should match itself", street.Name, city.City)
			}
		}
	}
}

func TestMatcher_Idempotent(t *testing.T) {
	m := NewMatcher(testCatalog())

	first := m.Match("Ibervich 12", "Test City")
	second := m.Match("Ibervich 12", "Test City")
	assert.Equal(t, first, second)
}

func TestMatcher_HouseNumberStripped(t *testing.T) {
	m := NewMatcher(testCatalog())

	match := m.Match("Ibervich 42", "Test City")
	assert.True(t, match.IsAllowed)
	assert.Equal(t, "Center", match.Neighborhood)
}

func TestMatcher_FuzzyThreshold(t *testing.T) {
	// The ratio is 200*matched/total-length, so a 25-char entry against a
	// 25-char query sharing a 21-char prefix scores exactly 84, and a
	// 20-char entry against a 20-char query sharing 17 scores exactly 85.
	catalog := []CatalogCity{
		{
			City: "Ratio City",
			Neighborhoods: []CatalogNeighborhood{
				{
					Neighborhood: "N",
					Streets: []CatalogStreet{
						{Name: strings.Repeat("a", 25)},
					},
				},
			},
		},
	}
	m := NewMatcher(catalog)

	below := strings.Repeat("a", 21) + strings.Repeat("b", 4)
	assert.False(t, m.Match(below, "Ratio City").IsAllowed, "ratio 84 must be rejected")

	catalog[0].Neighborhoods[0].Streets[0].Name = strings.Repeat("a", 20)
	m = NewMatcher(catalog)

	at := strings.Repeat("a", 17) + strings.Repeat("b", 3)
	assert.True(t, m.Match(at, "Ratio City").IsAllowed, "ratio 85 must be accepted")
}

func TestMatcher_FuzzyTieBreakIsFirstEncountered(t *testing.T) {
	catalog := []CatalogCity{
		{
			City: "Tie City",
			Neighborhoods: []CatalogNeighborhood{
				{
					Neighborhood: "First",
					Streets:      []CatalogStreet{{Name: "Rothschildx"}},
				},
				{
					Neighborhood: "Second",
					Streets:      []CatalogStreet{{Name: "Rothschildy"}},
				},
			},
		},
	}
	m := NewMatcher(catalog)

	// Both candidates score identically; catalog order decides.
	match := m.Match("Rothschild", "Tie City")
	require.True(t, match.IsAllowed)
	assert.Equal(t, "First", match.Neighborhood)
}

func TestMatcher_HebrewNormalization(t *testing.T) {
	catalog := []CatalogCity{
		{
			City: "תל אביב",
			Neighborhoods: []CatalogNeighborhood{
				{
					Neighborhood: "לב העיר",
					Streets:      []CatalogStreet{{Name: `ז'בוטינסקי`}},
				},
			},
		},
	}
	m := NewMatcher(catalog)

	// Geresh and apostrophe variants normalize to the same key.
	assert.True(t, m.Match("ז׳בוטינסקי", "תל אביב").IsAllowed)
	assert.True(t, m.Match("זבוטינסקי 7", "תל אביב").IsAllowed)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, common.ErrCatalogUnreadable)

	malformed := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{not json"), 0600))
	_, err = LoadCatalog(malformed)
	assert.ErrorIs(t, err, common.ErrCatalogMalformed)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0600))
	_, err = LoadCatalog(empty)
	assert.ErrorIs(t, err, common.ErrCatalogMalformed)
}

func TestNewMatcherFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streets.json")
	data := `[{"city":"Test City","neighborhoods":[{"neighborhood":"Center","streets":[{"name":"Ibervich"}]}]}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	m, err := NewMatcherFromFile(path)
	require.NoError(t, err)
	assert.True(t, m.Match("Ibervich", "Test City").IsAllowed)
}
