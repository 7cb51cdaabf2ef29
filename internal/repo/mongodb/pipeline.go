package mongodb

import (
	"fmt"

	"github.com/kumarshivu12/advanced-todo/internal/domain/todo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListPipeline turns a list query into a $match + $sort aggregation.
func ListPipeline(q todo.ListQuery) (mongo.Pipeline, error) {
	match, err := matchStage(q.Filter)
	if err != nil {
		return nil, err
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: sortStage(q.Sort)}},
	}, nil
}

func matchStage(f todo.Filter) (bson.M, error) {
	owner, err := primitive.ObjectIDFromHex(f.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", f.Owner, err)
	}

	match := bson.M{"owner": owner}

	startDate := bson.M{}
	if f.StartAfter != nil {
		startDate["$gt"] = *f.StartAfter
	}
	if f.StartAtOrBefore != nil {
		startDate["$lte"] = *f.StartAtOrBefore
	}
	if len(startDate) > 0 {
		match["startDate"] = startDate
	}

	endDate := bson.M{}
	if f.EndBefore != nil {
		endDate["$lt"] = *f.EndBefore
	}
	if f.EndAtOrAfter != nil {
		endDate["$gte"] = *f.EndAtOrAfter
	}
	if len(endDate) > 0 {
		match["endDate"] = endDate
	}

	if f.Status != nil {
		match["status"] = *f.Status
	}

	// an empty list still constrains: $in: [] matches no document
	if f.Priorities != nil {
		in := make(bson.A, 0, len(f.Priorities))
		for _, p := range f.Priorities {
			in = append(in, string(p))
		}
		match["priority"] = bson.M{"$in": in}
	}

	return match, nil
}

func sortStage(s todo.Sort) bson.D {
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: string(s.Field), Value: dir}, {Key: "_id", Value: 1}}
}
