package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func decodeMetric(t *testing.T, raw bson.M) metricDoc {
	t.Helper()
	data, err := bson.Marshal(raw)
	require.NoError(t, err)
	var doc metricDoc
	require.NoError(t, bson.Unmarshal(data, &doc))
	return doc
}

func TestMetricFromDocDates(t *testing.T) {
	store := New(nil, time.UTC)
	native := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date interface{}
		want *time.Time
	}{
		{name: "native", date: native, want: &native},
		{name: "iso string", date: "2024-03-10T08:00:00Z", want: &native},
		{name: "zone-less string", date: "2024-03-10 08:00", want: &native},
		{name: "garbage", date: "yesterday-ish", want: nil},
		{name: "missing", date: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := bson.M{
				"_id":    primitive.NewObjectID(),
				"userId": "u1",
				"type":   "weight",
				"value":  72.5,
				"details": bson.M{"unit": "kg"},
			}
			if tt.date != nil {
				raw["date"] = tt.date
			}

			metric := store.metricFromDoc(decodeMetric(t, raw))

			assert.Equal(t, domain.MetricWeight, metric.Type)
			assert.Equal(t, "kg", metric.Details.Unit)
			if tt.want == nil {
				assert.Nil(t, metric.Date)
				return
			}
			require.NotNil(t, metric.Date)
			assert.True(t, tt.want.Equal(*metric.Date), "got %v", *metric.Date)
		})
	}
}

func TestSortMetricsPutsUndatedLast(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	metrics := []domain.UserMetric{
		{ID: "a", Date: nil},
		{ID: "b", Date: day(1)},
		{ID: "c", Date: day(3)},
		{ID: "d", Date: nil},
		{ID: "e", Date: day(2)},
	}

	sortMetrics(metrics)

	ids := make([]string, len(metrics))
	for i, m := range metrics {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"c", "e", "b", "a", "d"}, ids)
}

func TestObjectIDMalformedIsNotFound(t *testing.T) {
	_, err := objectID("meal", "not-hex")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	oid := primitive.NewObjectID()
	got, err := objectID("meal", oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)
}

func TestDateRange(t *testing.T) {
	assert.Nil(t, dateRange(nil, nil))

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	assert.Equal(t, bson.M{"$gte": from, "$lt": to}, dateRange(&from, &to))
	assert.Equal(t, bson.M{"$lt": to}, dateRange(nil, &to))
}

func TestStreakDocumentCarriesUserID(t *testing.T) {
	store := New(nil, time.UTC)
	last := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	data, err := bson.Marshal(streakToDoc(&domain.UserStreak{UserID: "u1", CurrentStreak: 2, LongestStreak: 5, LastActive: &last}))
	require.NoError(t, err)
	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "u1", raw["userId"])
	assert.NotContains(t, raw, "_id", "the server assigns _id on upsert")

	// a row written by another client keeps its ObjectID and a string date
	data, err = bson.Marshal(bson.M{
		"_id":           primitive.NewObjectID(),
		"userId":        "u1",
		"currentStreak": 3,
		"longestStreak": 4,
		"lastActive":    "2024-03-10T00:00:00Z",
	})
	require.NoError(t, err)
	var doc streakDoc
	require.NoError(t, bson.Unmarshal(data, &doc))

	streak := store.streakFromDoc(doc)
	assert.Equal(t, "u1", streak.UserID)
	assert.Equal(t, 3, streak.CurrentStreak)
	require.NotNil(t, streak.LastActive)
	assert.True(t, last.Equal(*streak.LastActive))
}
