package database

import (
	"math"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/toystacks/toy-server/models"
)

// ToyFilter builds the find filter for q. An empty query matches every document.
func ToyFilter(q models.ToyQuery) bson.M {
	filter := bson.M{}
	if q.NameContains != "" {
		// Literal, case-insensitive substring match.
		filter["toyName"] = bson.M{"$regex": regexp.QuoteMeta(q.NameContains), "$options": "i"}
	}
	if q.SubCategory != "" {
		filter["subCategory"] = q.SubCategory
	}
	if q.SellerEmail != "" {
		filter["sellerEmail"] = q.SellerEmail
	}
	return filter
}

// PriceSortPipeline builds the aggregation that casts price to a double and
// sorts on it. Prices that cannot be converted, and NaN or infinite results,
// become null and sort first in ascending order, last in descending order.
func PriceSortPipeline(q models.ToyQuery) mongo.Pipeline {
	direction := 1
	if q.PriceSort == models.PriceDescending {
		direction = -1
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: ToyFilter(q)}},
		{{Key: "$addFields", Value: bson.M{
			"price": bson.M{"$convert": bson.M{
				"input":   "$price",
				"to":      "double",
				"onError": nil,
				"onNull":  nil,
			}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"price": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{"$price", nonFinite}},
				"then": nil,
				"else": "$price",
			}},
		}}},
		// _id breaks ties so equal prices come back in a stable order.
		{{Key: "$sort", Value: bson.D{{Key: "price", Value: direction}, {Key: "_id", Value: 1}}}},
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	return pipeline
}

// nonFinite lists the doubles JSON cannot carry. MongoDB treats NaN as equal to NaN.
var nonFinite = bson.A{math.NaN(), math.Inf(1), math.Inf(-1)}

// NullNonFinitePrices replaces NaN and infinite float prices with nil.
func NullNonFinitePrices(toys []bson.M) {
	for _, toy := range toys {
		if f, ok := toy["price"].(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			toy["price"] = nil
		}
	}
}
