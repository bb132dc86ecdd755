package ports

import (
	"context"
	"ghostmap-route-service/internal/domain"
)

// Optional sink for completed planning runs.
type PlanPublisher interface {
	PublishPlan(ctx context.Context, planID string, result *domain.SelectionResult) error
}
