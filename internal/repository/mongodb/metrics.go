package mongodb

import (
	"context"
	"sort"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type metricDetailsDoc struct {
	Unit      string  `bson:"unit,omitempty"`
	Bedtime   string  `bson:"bedtime,omitempty"`
	Wakeup    string  `bson:"wakeup,omitempty"`
	Quality   int     `bson:"quality,omitempty"`
	Category  string  `bson:"category,omitempty"`
	Intensity string  `bson:"intensity,omitempty"`
	Calories  float64 `bson:"calories,omitempty"`
	Duration  float64 `bson:"duration,omitempty"`
}

type metricDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Type      string             `bson:"type"`
	Date      interface{}        `bson:"date"`
	Value     float64            `bson:"value"`
	Details   metricDetailsDoc   `bson:"details"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (s *Store) CreateMetric(ctx context.Context, metric *domain.UserMetric) (string, error) {
	doc := metricDoc{
		UserID:    metric.UserID,
		Type:      string(metric.Type),
		Value:     metric.Value,
		Details:   detailsDoc(metric.Details),
		CreatedAt: metric.CreatedAt,
	}
	if metric.Date != nil {
		doc.Date = *metric.Date
	}
	res, err := s.userMetrics().InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return insertedID(res), nil
}

func (s *Store) GetMetric(ctx context.Context, id string) (*domain.UserMetric, error) {
	oid, err := objectID("metric", id)
	if err != nil {
		return nil, err
	}
	var doc metricDoc
	if err := s.userMetrics().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, "metric", id)
	}
	metric := s.metricFromDoc(doc)
	return &metric, nil
}

// ListMetrics sorts in the database, then again after date normalization so
// string dates order correctly against native ones
func (s *Store) ListMetrics(ctx context.Context, q domain.MetricQuery) ([]domain.UserMetric, error) {
	filter := bson.M{"userId": q.UserID}
	if q.Type != "" {
		filter["type"] = string(q.Type)
	}
	if r := dateRange(q.From, q.To); r != nil {
		filter["date"] = r
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.userMetrics().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var metrics []domain.UserMetric
	for cursor.Next(ctx) {
		var doc metricDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		metrics = append(metrics, s.metricFromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	sortMetrics(metrics)
	return metrics, nil
}

func (s *Store) UpdateMetric(ctx context.Context, id string, patch domain.MetricPatch) error {
	oid, err := objectID("metric", id)
	if err != nil {
		return err
	}

	set := bson.M{}
	setValue(set, "value", patch.Value)
	setValue(set, "date", patch.Date)
	if patch.Details != nil {
		set["details"] = detailsDoc(*patch.Details)
	}
	return s.updateOne(ctx, s.userMetrics().Name(), "metric", id, oid, set)
}

func (s *Store) DeleteMetric(ctx context.Context, id string) error {
	oid, err := objectID("metric", id)
	if err != nil {
		return nil
	}
	_, err = s.userMetrics().DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// metricFromDoc keeps metrics with unreadable dates, reporting the date as nil
func (s *Store) metricFromDoc(doc metricDoc) domain.UserMetric {
	metric := domain.UserMetric{
		ID:     doc.ID.Hex(),
		UserID: doc.UserID,
		Type:   domain.MetricType(doc.Type),
		Value:  doc.Value,
		Details: domain.MetricDetails{
			Unit:      doc.Details.Unit,
			Bedtime:   doc.Details.Bedtime,
			Wakeup:    doc.Details.Wakeup,
			Quality:   doc.Details.Quality,
			Category:  doc.Details.Category,
			Intensity: doc.Details.Intensity,
			Calories:  doc.Details.Calories,
			Duration:  doc.Details.Duration,
		},
		CreatedAt: doc.CreatedAt,
	}
	if doc.Date == nil {
		return metric
	}
	date, err := utils.NormalizeTime(doc.Date, s.loc)
	if err != nil {
		logger.Warn("Unreadable metric date", "metric_id", metric.ID, "value", doc.Date, "error", err)
	}
	metric.Date = date
	return metric
}

func detailsDoc(d domain.MetricDetails) metricDetailsDoc {
	return metricDetailsDoc{
		Unit:      d.Unit,
		Bedtime:   d.Bedtime,
		Wakeup:    d.Wakeup,
		Quality:   d.Quality,
		Category:  d.Category,
		Intensity: d.Intensity,
		Calories:  d.Calories,
		Duration:  d.Duration,
	}
}

// sortMetrics orders newest first with undated metrics last, keeping the
// database order for ties
func sortMetrics(metrics []domain.UserMetric) {
	sort.SliceStable(metrics, func(i, j int) bool {
		a, b := metrics[i].Date, metrics[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
}
