// internal/app/system/query/params.go
package query

import "strconv"

// Recognized request parameters.
const (
	ParamSearch    = "searchTerm"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamPage      = "page"
	ParamLimit     = "limit"
)

// Named defaults. DefaultPageSize applies to paged fetches; UnboundedLimit
// applies only to Page() totals when no limit was requested. The two are
// deliberately distinct: report-style callers rely on Page() returning the
// true total even though fetches default to 10 rows.
const (
	DefaultPage      = 1
	DefaultPageSize  = 10
	UnboundedLimit   = 9999
	DefaultSortField = "created_at"
)

// Params is the untyped request-query mapping handed in by the transport
// layer. Missing or invalid values fall back to the named defaults.
type Params map[string]string

// Get returns the raw value for key, or "".
func (p Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Int returns the value for key parsed as a positive integer, or def.
func (p Params) Int(key string, def int) int {
	s := p.Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
