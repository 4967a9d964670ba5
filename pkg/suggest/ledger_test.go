package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImpressionLedger(t *testing.T) {
	l := NewImpressionLedger()
	url := "https://imp.example.com/p?id=1"

	assert.False(t, l.WasAlreadySent(url))
	l.MarkSent(url)
	l.MarkSent(url)
	assert.True(t, l.WasAlreadySent(url))
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.markIfNew(url))
	assert.True(t, l.markIfNew(url+"2"))
}

func TestReportImpressionsFiresOnce(t *testing.T) {
	s := NewStore(newStubFetcher())
	s.SetSuggestionSet(Fixture(MockAdMarketplace))

	var fired []string
	fire := func(url string) { fired = append(fired, url) }

	assert.Equal(t, 1, s.ReportImpressions(-1, fire))
	assert.Equal(t, 0, s.ReportImpressions(-1, fire))
	assert.Equal(t, []string{"https://imp.example.com/impression?id=zalando"}, fired)
	assert.True(t, s.Ledger().WasAlreadySent(fired[0]))
	assert.False(t, s.MarkImpression(fired[0]))

	// a fresh result with the same pixel stays silent
	s.SetSuggestionSet(Fixture(MockAdMarketplace))
	assert.Equal(t, 0, s.ReportImpressions(-1, fire))
	assert.Len(t, fired, 1)
}

func TestReportImpressionsSharedLedger(t *testing.T) {
	ledger := NewImpressionLedger()
	a := NewStore(newStubFetcher(), WithLedger(ledger))
	b := NewStore(newStubFetcher(), WithLedger(ledger))
	a.SetSuggestionSet(Fixture(MockAdMarketplace))
	b.SetSuggestionSet(Fixture(MockAdMarketplace))

	assert.Equal(t, 1, a.ReportImpressions(-1, nil))
	assert.Equal(t, 0, b.ReportImpressions(-1, nil))
	assert.Equal(t, 1, b.Stats()["impressionsSent"])
}

func TestReportImpressionsOnlyRenderedRows(t *testing.T) {
	s := NewStore(newStubFetcher())
	s.SetSuggestionSet(Fixture(MockAdMarketplace))

	// the sponsored entry is the third row
	assert.Equal(t, 0, s.ReportImpressions(0, nil))
	assert.Equal(t, 0, s.ReportImpressions(2, nil))
	assert.False(t, s.Ledger().WasAlreadySent("https://imp.example.com/impression?id=zalando"))
	assert.Equal(t, 1, s.ReportImpressions(3, nil))
	assert.Equal(t, 0, s.ReportImpressions(10, nil))
}

func TestMarkImpression(t *testing.T) {
	s := NewStore(newStubFetcher())
	assert.False(t, s.MarkImpression(""))
	assert.True(t, s.MarkImpression("https://imp.example.com/a"))
	assert.False(t, s.MarkImpression("https://imp.example.com/a"))
}
