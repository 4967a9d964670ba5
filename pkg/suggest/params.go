package suggest

import (
	"net/url"
	"strconv"
)

// Breakpoint is the viewport class used to choose the result limit.
type Breakpoint string

const (
	BreakpointSmall Breakpoint = "small"
	BreakpointLarge Breakpoint = "large"
)

// ParamOptions are the flag driven values that end up in request params.
// The store treats all of them as opaque.
type ParamOptions struct {
	QueryParam         string
	Breakpoint         Breakpoint
	Limits             map[Breakpoint]int
	AdMarketplaceToken string
	Mocked             string
	Extra              map[string]string
}

// Params builds request params for query.
func Params(query string, opts ParamOptions) url.Values {
	qp := opts.QueryParam
	if qp == "" {
		qp = DefaultQueryParam
	}
	v := url.Values{}
	v.Set(qp, query)

	if limit, ok := opts.Limits[opts.Breakpoint]; ok && limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if opts.AdMarketplaceToken != "" {
		v.Set("amp", opts.AdMarketplaceToken)
	}
	if opts.Mocked != "" {
		v.Set(MockParam, opts.Mocked)
	}
	for k, val := range opts.Extra {
		v.Set(k, val)
	}
	return v
}
