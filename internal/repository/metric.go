package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"gorm.io/gorm"
)

// MetricRepository stores user metrics in the user_metrics table
type MetricRepository struct {
	db *gorm.DB
}

var _ domain.MetricRepository = (*MetricRepository)(nil)

func NewMetricRepository(db *gorm.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) CreateMetric(ctx context.Context, metric *domain.UserMetric) (string, error) {
	row := database.UserMetric{
		ID:        uuid.NewString(),
		UserID:    metric.UserID,
		Type:      string(metric.Type),
		Date:      metric.Date,
		Value:     metric.Value,
		Details:   metric.Details,
		CreatedAt: metric.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (r *MetricRepository) GetMetric(ctx context.Context, id string) (*domain.UserMetric, error) {
	var row database.UserMetric
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err, "metric", id)
	}
	metric := metricFromRow(row)
	return &metric, nil
}

func (r *MetricRepository) ListMetrics(ctx context.Context, q domain.MetricQuery) ([]domain.UserMetric, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", q.UserID)
	if q.Type != "" {
		query = query.Where("type = ?", string(q.Type))
	}
	if q.From != nil {
		query = query.Where("date >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("date < ?", *q.To)
	}

	var rows []database.UserMetric
	if err := query.Order("date DESC NULLS LAST").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	metrics := make([]domain.UserMetric, 0, len(rows))
	for _, row := range rows {
		metrics = append(metrics, metricFromRow(row))
	}
	return metrics, nil
}

func (r *MetricRepository) UpdateMetric(ctx context.Context, id string, patch domain.MetricPatch) error {
	fields := make(map[string]interface{})
	setField(fields, "value", patch.Value)
	setField(fields, "date", patch.Date)
	if d := patch.Details; d != nil {
		fields["detail_unit"] = d.Unit
		fields["detail_bedtime"] = d.Bedtime
		fields["detail_wakeup"] = d.Wakeup
		fields["detail_quality"] = d.Quality
		fields["detail_category"] = d.Category
		fields["detail_intensity"] = d.Intensity
		fields["detail_calories"] = d.Calories
		fields["detail_duration"] = d.Duration
	}
	return updateByID(r.db.WithContext(ctx), &database.UserMetric{}, "metric", id, fields)
}

func (r *MetricRepository) DeleteMetric(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&database.UserMetric{}).Error
}

func metricFromRow(row database.UserMetric) domain.UserMetric {
	return domain.UserMetric{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      domain.MetricType(row.Type),
		Date:      row.Date,
		Value:     row.Value,
		Details:   row.Details,
		CreatedAt: row.CreatedAt,
	}
}
