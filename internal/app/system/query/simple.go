// internal/app/system/query/simple.go
package query

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SimpleQuery is the plain-find variant. Filter conditions and search merge
// into one filter document; sort and pagination are applied as find options.
type SimpleQuery struct {
	coll       *mongo.Collection
	params     Params
	filter     bson.M
	projection bson.D
}

// Find starts a simple query against coll driven by params.
func Find(coll *mongo.Collection, params Params) *SimpleQuery {
	return &SimpleQuery{coll: coll, params: params, filter: bson.M{}}
}

// Filter merges equality/range conditions into the filter.
func (q *SimpleQuery) Filter(cond bson.M) *SimpleQuery {
	for k, v := range cond {
		q.filter[k] = v
	}
	return q
}

// Search ORs a case-insensitive substring match across fields when the
// request carries a non-empty search term.
func (q *SimpleQuery) Search(fields ...string) *SimpleQuery {
	term := q.params.Get(ParamSearch)
	if term == "" {
		return q
	}
	q.filter["$or"] = searchOr(term, fields)
	return q
}

// Select restricts the returned fields.
func (q *SimpleQuery) Select(fields ...string) *SimpleQuery {
	q.projection = projectionDoc(fields)
	return q
}

// All fetches the ordered page of results into out.
func (q *SimpleQuery) All(ctx context.Context, out any) error {
	skip, limit := pageWindow(q.params)
	opts := options.Find().
		SetSort(sortSpec(q.params)).
		SetSkip(skip).
		SetLimit(limit)
	if q.projection != nil {
		opts.SetProjection(q.projection)
	}
	cur, err := q.coll.Find(ctx, q.filter, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

// Page recomputes the total matching count, ignoring pagination.
func (q *SimpleQuery) Page(ctx context.Context) (PageMeta, error) {
	total, err := q.coll.CountDocuments(ctx, q.filter)
	if err != nil {
		return PageMeta{}, err
	}
	return pageMeta(q.params, total), nil
}
