package utils

import (
	"context"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindAndDecode runs a Find and decodes every document into T.
func FindAndDecode[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []T
	for cur.Next(ctx) {
		var item T
		if err := cur.Decode(&item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, cur.Err()
}

// ParsePagination reads page/limit query params and returns skip and limit
// for Mongo, clamping limit to max.
func ParsePagination(r *http.Request, def, max int64) (skip, limit int64) {
	q := r.URL.Query()

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return (page - 1) * limit, limit
}

// ParseSort maps a sort query value to a Mongo sort document, falling back
// to def for unknown values.
func ParseSort(value string, def bson.D, allowed map[string]bson.D) bson.D {
	if value == "" || allowed == nil {
		return def
	}
	if sort, ok := allowed[value]; ok {
		return sort
	}
	return def
}
