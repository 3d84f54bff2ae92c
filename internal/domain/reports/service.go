package reports

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/pkg/logger"
)

// defaultSummaryDays is the period used when the caller gives no From date.
const defaultSummaryDays = 30

// Service provides report generation operations.
type Service struct {
	repo   Repository
	alerts *AlertEngine
}

// NewService creates a new reports service.
func NewService(repo Repository, alerts *AlertEngine) *Service {
	return &Service{repo: repo, alerts: alerts}
}

// GetSummary generates the movement summary report.
func (s *Service) GetSummary(ctx context.Context, f SummaryFilter) (*Summary, error) {
	if f.To.IsZero() {
		f.To = time.Now().UTC()
	}
	if f.From.IsZero() {
		f.From = f.To.AddDate(0, 0, -defaultSummaryDays)
	}
	if f.From.After(f.To) {
		return nil, apperror.NewValidation("from must not be after to").
			WithDetail("from", f.From).
			WithDetail("to", f.To)
	}

	summary, err := s.repo.GetSummary(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get movement summary: %w", err)
	}
	return summary, nil
}

// GetOverview generates the stock overview.
func (s *Service) GetOverview(ctx context.Context, f OverviewFilter) (*Overview, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}

	overview, err := s.repo.GetOverview(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get stock overview: %w", err)
	}
	return overview, nil
}

// GetAlerts evaluates the threshold rules over the stock overview.
// Zero-quantity rows stay included: an empty balance still matters to the
// low-stock rule.
func (s *Service) GetAlerts(ctx context.Context, f OverviewFilter) ([]Alert, error) {
	f.ExcludeZero = false
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 1000
	}

	overview, err := s.repo.GetOverview(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("get stock overview: %w", err)
	}

	alerts := make([]Alert, 0)
	for _, item := range overview.Items {
		matched, err := s.alerts.Evaluate(item)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, matched...)
	}
	return alerts, nil
}

// CheckMovementAlerts evaluates the rules for the pair a movement touched
// and logs what triggered. Registered as an after-post hook on the
// movement engine, so posting never fails because of alerting.
func (s *Service) CheckMovementAlerts(ctx context.Context, m *entity.Movement) error {
	overview, err := s.repo.GetOverview(ctx, OverviewFilter{
		WarehouseID: &m.WarehouseID,
		ProductID:   &m.ProductID,
		Limit:       1,
	})
	if err != nil {
		return fmt.Errorf("get overview for alert check: %w", err)
	}

	for _, item := range overview.Items {
		alerts, err := s.alerts.Evaluate(item)
		if err != nil {
			return err
		}
		for _, a := range alerts {
			logger.Warn(ctx, "stock alert",
				"rule", a.Rule,
				"warehouse", a.WarehouseCode,
				"product", a.ProductCode,
				"quantity", a.Quantity,
				"message", a.Message,
			)
		}
	}
	return nil
}
