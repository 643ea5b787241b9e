package db

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilterBuilder helps build MongoDB filters fluently
type FilterBuilder struct {
	filter bson.M
}

// NewFilter creates a new FilterBuilder
func NewFilter() *FilterBuilder {
	return &FilterBuilder{filter: bson.M{}}
}

// Eq adds an equality condition
func (f *FilterBuilder) Eq(field string, value interface{}) *FilterBuilder {
	f.filter[field] = value
	return f
}

// In adds an $in condition (value in array)
func (f *FilterBuilder) In(field string, values interface{}) *FilterBuilder {
	f.filter[field] = bson.M{"$in": values}
	return f
}

// IsNull matches documents where field is null or missing
func (f *FilterBuilder) IsNull(field string) *FilterBuilder {
	f.filter[field] = nil
	return f
}

// ObjectID adds an ObjectID equality condition. The returned bool is false
// when id is not a valid hex ObjectID, in which case the filter is unchanged.
func (f *FilterBuilder) ObjectID(field string, id string) (*FilterBuilder, bool) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return f, false
	}
	f.filter[field] = objectID
	return f, true
}

// Or combines multiple filters with OR
func (f *FilterBuilder) Or(filters ...bson.M) *FilterBuilder {
	if len(filters) > 0 {
		f.filter["$or"] = filters
	}
	return f
}

// Build returns the final bson.M filter
func (f *FilterBuilder) Build() bson.M {
	return f.filter
}
