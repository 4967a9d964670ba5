package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams(t *testing.T) {
	limits := map[Breakpoint]int{BreakpointSmall: 5, BreakpointLarge: 8}

	testCases := []struct {
		name string
		opts ParamOptions
		want map[string]string
	}{
		{
			name: "defaults",
			opts: ParamOptions{},
			want: map[string]string{"q": "berlin"},
		},
		{
			name: "large breakpoint",
			opts: ParamOptions{Breakpoint: BreakpointLarge, Limits: limits},
			want: map[string]string{"q": "berlin", "limit": "8"},
		},
		{
			name: "small breakpoint with experiment",
			opts: ParamOptions{Breakpoint: BreakpointSmall, Limits: limits, AdMarketplaceToken: "tok"},
			want: map[string]string{"q": "berlin", "limit": "5", "amp": "tok"},
		},
		{
			name: "custom query param and extras",
			opts: ParamOptions{QueryParam: "term", Mocked: "true", Extra: map[string]string{"locale": "de"}},
			want: map[string]string{"term": "berlin", "mocked": "true", "locale": "de"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Params("berlin", tc.opts)
			assert.Len(t, got, len(tc.want))
			for k, v := range tc.want {
				assert.Equal(t, v, got.Get(k), k)
			}
		})
	}
}

func TestMockModeOf(t *testing.T) {
	testCases := []struct {
		value string
		want  MockMode
	}{
		{"", MockNone},
		{"false", MockNone},
		{"0", MockNone},
		{"true", MockDefault},
		{"1", MockDefault},
		{"admarketplace", MockAdMarketplace},
		{" AdMarketplace ", MockAdMarketplace},
	}
	for _, tc := range testCases {
		p := queryParams("x")
		if tc.value != "" {
			p.Set(MockParam, tc.value)
		}
		assert.Equal(t, tc.want, MockModeOf(p), tc.value)
	}
}

func TestFixtures(t *testing.T) {
	def := Fixture(MockDefault)
	assert.Equal(t, 5, def.Len())
	assert.Len(t, def.ContextData, 5)
	assert.Nil(t, def.ContextData[3])
	assert.Equal(t, EntryNavigation, def.ContextData[4].Type)

	amp := Fixture(MockAdMarketplace)
	assert.Equal(t, "admarketplace", amp.ContextData[2].Provider)
	assert.NotEmpty(t, amp.ContextData[2].ImpressionURL)

	assert.True(t, Fixture(MockNone).IsEmpty())
}
