package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeysAreOrderIndependent(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{
			name: "recommendation ids",
			a:    RecommendationKey("Cozy", nil, []string{"p3", "p1", "p2"}),
			b:    RecommendationKey("cozy ", nil, []string{"p1", "p2", "p3"}),
		},
		{
			name: "recommendation tags",
			a:    RecommendationKey("", []string{"Nutty", "chocolate", "nutty"}, []string{"p1"}),
			b:    RecommendationKey("", []string{"chocolate", "nutty"}, []string{"p1"}),
		},
		{
			name: "ranking ids",
			a:    RankingKey("latte", []string{"c2", "c1"}),
			b:    RankingKey("Latte", []string{"c1", "c2"}),
		},
		{
			name: "review ids",
			a:    ReviewKey("cafe-1", []string{"r9", "r1"}),
			b:    ReviewKey("cafe-1", []string{"r1", "r9"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.a, tt.b)
		})
	}
}

func TestKeysDistinguishIdentity(t *testing.T) {
	assert.NotEqual(t,
		RecommendationKey("cozy", nil, []string{"p1"}),
		RecommendationKey("happy", nil, []string{"p1"}))
	assert.NotEqual(t,
		RecommendationKey("cozy", nil, []string{"p1"}),
		RecommendationKey("cozy", []string{"nutty"}, []string{"p1"}))
	assert.NotEqual(t,
		RankingKey("", []string{"c1"}),
		RankingKey("latte", []string{"c1"}))
	assert.Equal(t, "cafe-1|r1,r2", ReviewKey("cafe-1", []string{"r2", "r1"}))
}

func TestKeysEscapeSeparators(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{
			name: "id containing the list separator",
			a:    ReviewKey("s", []string{"a,b"}),
			b:    ReviewKey("s", []string{"a", "b"}),
		},
		{
			name: "subject containing the key separator",
			a:    ReviewKey("cafe|annex", []string{"r1"}),
			b:    ReviewKey("cafe", []string{"annex|r1"}),
		},
		{
			name: "tag with a space",
			a:    RecommendationKey("", []string{"dark roast"}, nil),
			b:    RecommendationKey("", []string{"dark", "roast"}, nil),
		},
		{
			name: "mood containing the key separator",
			a:    RecommendationKey("cozy|tags:", nil, []string{"p1"}),
			b:    RecommendationKey("cozy", nil, []string{"p1"}),
		},
		{
			name: "ranking id containing the list separator",
			a:    RankingKey("", []string{"c1,c2"}),
			b:    RankingKey("", []string{"c1", "c2"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, tt.a, tt.b)
		})
	}
}

func TestReviewPrefixIsTargeted(t *testing.T) {
	prefix := ReviewPrefix("cafe")

	assert.True(t, strings.HasPrefix(ReviewKey("cafe", []string{"r1"}), prefix))
	assert.True(t, strings.HasPrefix(ReviewKey("cafe", nil), prefix))
	assert.False(t, strings.HasPrefix(ReviewKey("cafe|annex", []string{"r1"}), prefix))
	assert.False(t, strings.HasPrefix(ReviewKey("cafe-10", []string{"r1"}), prefix))
	assert.NotContains(t, ReviewPrefix("cafe*"), "*")
}

func TestKeysDoNotMutateInput(t *testing.T) {
	ids := []string{"b", "a"}
	_ = RankingKey("", ids)
	assert.Equal(t, []string{"b", "a"}, ids)
}
