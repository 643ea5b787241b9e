package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLatestFirst_BreaksTiesByInsertionOrder(t *testing.T) {
	assert.Equal(t, bson.D{
		{Key: "startedAt", Value: -1},
		{Key: "_id", Value: -1},
	}, latestFirst("startedAt"))
}
