package repositories

import (
	"context"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// EventRuleReader resolves accounting event rules. Rules are immutable
// configuration; there is no writer.
type EventRuleReader interface {
	// FindEventRuleByCode retrieves an event rule with its account determination rules.
	FindEventRuleByCode(ctx context.Context, eventCode string) (*domain.AccountingEventRule, error)

	// FindEventCodesByChartPosition lists the event codes whose rules post
	// against the given chart position. Used by the reserved-account check.
	FindEventCodesByChartPosition(ctx context.Context, chartPositionID string) ([]string, error)
}
