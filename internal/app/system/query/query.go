// internal/app/system/query/query.go
//
// Package query composes filter predicates, free-text search, sort order,
// pagination, and aggregation pipelines into one executable read against a
// collection. Two variant types cover the two execution modes: SimpleQuery
// wraps a plain Find, PipelineQuery wraps an aggregation. A query is one or
// the other from construction — there is no mode flag to mix up.
package query

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Query is the read interface shared by both variants. All fetches the
// ordered page of results into out (a pointer to a slice); Page recomputes
// the unpaginated total for the same filter.
type Query interface {
	All(ctx context.Context, out any) error
	Page(ctx context.Context) (PageMeta, error)
}

// PageMeta describes one page of a result set.
// TotalPage is ceil(Total/Limit).
type PageMeta struct {
	Total     int64 `bson:"total" json:"total"`
	Limit     int64 `bson:"limit" json:"limit"`
	Page      int64 `bson:"page" json:"page"`
	TotalPage int64 `bson:"totalPage" json:"totalPage"`
}

// sortSpec resolves the sort order for params: creation time descending
// unless a sortBy field is named, in which case sortOrder=desc flips the
// direction (anything else sorts ascending).
func sortSpec(p Params) bson.D {
	field := p.Get(ParamSortBy)
	if field == "" {
		return bson.D{{Key: DefaultSortField, Value: -1}}
	}
	dir := 1
	if p.Get(ParamSortOrder) == "desc" {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}}
}

// pageWindow computes skip/limit for a paged fetch.
func pageWindow(p Params) (skip, limit int64) {
	page := int64(p.Int(ParamPage, DefaultPage))
	limit = int64(p.Int(ParamLimit, DefaultPageSize))
	return (page - 1) * limit, limit
}

// pageMeta derives pagination metadata from params and a total count. When
// no limit was requested the unbounded sentinel is used so TotalPage
// reflects a single all-inclusive page.
func pageMeta(p Params, total int64) PageMeta {
	limit := int64(p.Int(ParamLimit, UnboundedLimit))
	page := int64(p.Int(ParamPage, DefaultPage))
	totalPage := total / limit
	if total%limit != 0 {
		totalPage++
	}
	return PageMeta{Total: total, Limit: limit, Page: page, TotalPage: totalPage}
}

// searchOr builds the case-insensitive substring disjunction for term
// across fields.
func searchOr(term string, fields []string) bson.A {
	conds := make(bson.A, 0, len(fields))
	for _, f := range fields {
		conds = append(conds, bson.M{f: bson.M{"$regex": term, "$options": "i"}})
	}
	return conds
}

// projectionDoc turns a field list into an inclusion document.
func projectionDoc(fields []string) bson.D {
	proj := make(bson.D, 0, len(fields))
	for _, f := range fields {
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return proj
}
