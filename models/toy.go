package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive" // Import primitive
)

// Toy describes the fields a toy document usually carries in the all_toys collection.
// Documents are stored and served as free-form maps, so this struct documents the
// expected shape rather than enforcing it. Price is kept as interface{} because
// clients send it both as text ("25.50") and as a number.
type Toy struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"` // MongoDB primary key
	ToyName     string             `json:"toyName" bson:"toyName"`
	Photo       string             `json:"photo" bson:"photo"`
	SellerName  string             `json:"sellerName" bson:"sellerName"`
	SellerEmail string             `json:"sellerEmail" bson:"sellerEmail"`
	SubCategory string             `json:"subCategory" bson:"subCategory"`
	Price       interface{}        `json:"price" bson:"price"`
	Rating      float64            `json:"rating" bson:"rating"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	Description string             `json:"description" bson:"description"`
}

// UpdatableFields is the fixed set of fields overwritten by an update.
// Fields missing from the request body are written as null.
var UpdatableFields = []string{
	"photo",
	"toyName",
	"sellerName",
	"sellerEmail",
	"subCategory",
	"price",
	"rating",
	"quantity",
	"description",
}

// PriceSort selects the ordering applied to the numeric price.
type PriceSort int

// Price orderings understood by the store.
const (
	PriceUnsorted PriceSort = iota
	PriceAscending
	PriceDescending
)

// ToyQuery describes a read against the collection. Empty string fields mean
// "no restriction", a zero Limit means "no limit".
type ToyQuery struct {
	NameContains string
	SubCategory  string
	SellerEmail  string
	Limit        int64
	PriceSort    PriceSort
}

// InsertAck is returned after a toy is created.
type InsertAck struct {
	Acknowledged bool        `json:"acknowledged"`
	InsertedID   interface{} `json:"insertedId"`
}

// UpdateAck is returned after a toy is updated.
type UpdateAck struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

// DeleteAck is returned after a delete, DeletedCount is 0 when nothing matched.
type DeleteAck struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
