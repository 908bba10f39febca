// internal/app/system/query/pipeline.go
package query

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PipelineQuery is the aggregation variant, seeded with caller-supplied
// stages (lookups, unwinds, projections specific to a view). Search adds
// a match stage ahead of the seeded ones; sort and pagination append as
// further stages.
type PipelineQuery struct {
	coll   *mongo.Collection
	params Params
	stages mongo.Pipeline
	search bson.M
}

// Aggregate starts an aggregation query against coll seeded with stages.
func Aggregate(coll *mongo.Collection, params Params, stages mongo.Pipeline) *PipelineQuery {
	return &PipelineQuery{coll: coll, params: params, stages: stages}
}

// Search records a case-insensitive substring match across fields when
// the request carries a non-empty search term. It runs before the seeded
// stages so lookups only see matching documents, and it is folded into
// the Page count alongside the seeded filter.
func (q *PipelineQuery) Search(fields ...string) *PipelineQuery {
	term := q.params.Get(ParamSearch)
	if term == "" {
		return q
	}
	q.search = bson.M{"$or": searchOr(term, fields)}
	return q
}

// Select appends a projection stage restricting the returned fields.
func (q *PipelineQuery) Select(fields ...string) *PipelineQuery {
	q.stages = append(q.stages, bson.D{{Key: "$project", Value: projectionDoc(fields)}})
	return q
}

// finalStages is the executed pipeline: search match (when set), seeded
// stages, then sort, skip, and limit.
func (q *PipelineQuery) finalStages() mongo.Pipeline {
	skip, limit := pageWindow(q.params)
	stages := q.stages
	if q.search != nil {
		stages = append(mongo.Pipeline{bson.D{{Key: "$match", Value: q.search}}}, stages...)
	}
	return append(stages,
		bson.D{{Key: "$sort", Value: sortSpec(q.params)}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	)
}

// All runs the pipeline and decodes the ordered page of results into out.
func (q *PipelineQuery) All(ctx context.Context, out any) error {
	cur, err := q.coll.Aggregate(ctx, q.finalStages())
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

// Page recomputes the total by counting documents that satisfy the
// pipeline's first match stage combined with the search predicate. Later
// stages (lookups, unwinds) are assumed not to change cardinality of the
// root documents; existing report callers depend on this count, so the
// behavior is kept as-is.
func (q *PipelineQuery) Page(ctx context.Context) (PageMeta, error) {
	total, err := q.coll.CountDocuments(ctx, q.matchFilter())
	if err != nil {
		return PageMeta{}, err
	}
	return pageMeta(q.params, total), nil
}

// matchFilter is the count filter: the first seeded $match stage ANDed
// with the search predicate. Either side may be absent.
func (q *PipelineQuery) matchFilter() any {
	seeded := q.seededMatch()
	switch {
	case seeded != nil && q.search != nil:
		return bson.M{"$and": bson.A{seeded, q.search}}
	case q.search != nil:
		return q.search
	case seeded != nil:
		return seeded
	}
	return bson.M{}
}

// seededMatch extracts the first $match stage of the seeded pipeline, or
// nil when it has none.
func (q *PipelineQuery) seededMatch() any {
	for _, stage := range q.stages {
		for _, e := range stage {
			if e.Key == "$match" {
				return e.Value
			}
		}
	}
	return nil
}
