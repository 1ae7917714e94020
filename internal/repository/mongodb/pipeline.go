package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/watermeter/internal/domain/models"
)

func parseHomeID(homeID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(homeID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", models.ErrInvalidHomeID, homeID)
	}
	return oid, nil
}

// recordFilter builds the $match document for a home and an inclusive day window.
// The end bound is turned into an exclusive bound on the following day.
func recordFilter(homeID string, window models.DateWindow) (bson.M, error) {
	filter := bson.M{}

	if homeID != "" {
		oid, err := parseHomeID(homeID)
		if err != nil {
			return nil, err
		}
		filter["homeId"] = oid
	}

	dateFilter := bson.M{}
	if window.Start != nil {
		dateFilter["$gte"] = models.CalendarDay(*window.Start)
	}
	if window.End != nil {
		dateFilter["$lt"] = models.CalendarDay(*window.End).AddDate(0, 0, 1)
	}
	if len(dateFilter) > 0 {
		filter["date"] = dateFilter
	}

	return filter, nil
}

func findOptions(query models.RecordQuery) *options.FindOptions {
	direction := 1
	if query.SortDesc {
		direction = -1
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: direction}})
	if query.Limit > 0 {
		opts.SetLimit(query.Limit)
	}
	return opts
}

func aggregatePipeline(query models.AggregateQuery) (mongo.Pipeline, error) {
	var groupID any
	switch query.Key {
	case models.GroupByDay:
		groupID = bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$date"}}
	case models.GroupByHome:
		groupID = bson.M{"$toString": "$homeId"}
	default:
		return nil, fmt.Errorf("unsupported group key %q", query.Key)
	}

	match, err := recordFilter(query.HomeID, query.Window)
	if err != nil {
		return nil, err
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   groupID,
			"sum":   bson.M{"$sum": "$totalLiters"},
			"avg":   bson.M{"$avg": "$totalLiters"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}, nil
}
