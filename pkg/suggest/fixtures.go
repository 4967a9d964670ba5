package suggest

import (
	"bytes"
	"embed"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// MockParam is the request param that switches a store into mock mode.
const MockParam = "mocked"

// MockMode selects one of the static fixtures.
type MockMode int

const (
	MockNone MockMode = iota
	MockDefault
	MockAdMarketplace
)

// MockModeOf reads the mock mode from params.
func MockModeOf(params url.Values) MockMode {
	v := strings.ToLower(strings.TrimSpace(params.Get(MockParam)))
	switch v {
	case "", "false", "0":
		return MockNone
	case "admarketplace", "amp":
		return MockAdMarketplace
	}
	return MockDefault
}

// Fixture returns the static payload for mode.
func Fixture(mode MockMode) SuggestionSet {
	var name string
	switch mode {
	case MockDefault:
		name = "fixtures/default.json"
	case MockAdMarketplace:
		name = "fixtures/admarketplace.json"
	default:
		return EmptySet()
	}
	data, err := fixtureFS.ReadFile(name)
	if err != nil {
		log.Errorf("Reading fixture %s: %v", name, err)
		return EmptySet()
	}
	return decodeSet(bytes.NewReader(data))
}
