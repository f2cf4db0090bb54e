package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
)

type PgxEventRuleRepository struct {
	BaseRepository
}

// newPgxEventRuleRepository creates a read-side repository for accounting
// event rules. Rules are configuration loaded by account management; this
// engine never writes them.
func newPgxEventRuleRepository(pool *pgxpool.Pool) portsrepo.EventRuleReader {
	return &PgxEventRuleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EventRuleReader = (*PgxEventRuleRepository)(nil)

// FindEventRuleByCode retrieves an event rule with its account determination rules.
func (r *PgxEventRuleRepository) FindEventRuleByCode(ctx context.Context, eventCode string) (*domain.AccountingEventRule, error) {
	headerQuery := `
		SELECT event_code, description, chain_entry, next_event_code
		FROM accounting_event_rules
		WHERE event_code = $1;
	`
	var rule domain.AccountingEventRule
	err := r.Pool.QueryRow(ctx, headerQuery, eventCode).Scan(
		&rule.EventCode,
		&rule.Description,
		&rule.ChainEntry,
		&rule.NextEventCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event rule %s: %w", eventCode, err)
	}

	rulesQuery := `
		SELECT rule_id, event_code, chart_position_id, direction
		FROM accounting_rules
		WHERE event_code = $1
		ORDER BY rule_id;
	`
	rows, err := r.Pool.Query(ctx, rulesQuery, eventCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounting rules for %s: %w", eventCode, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ar domain.AccountingRule
		if err := rows.Scan(&ar.RuleID, &ar.EventCode, &ar.ChartPositionID, &ar.Direction); err != nil {
			return nil, fmt.Errorf("failed to scan accounting rule row: %w", err)
		}
		rule.Rules = append(rule.Rules, ar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounting rule rows: %w", err)
	}
	return &rule, nil
}

// FindEventCodesByChartPosition lists the event codes whose rules post against
// the given chart position.
func (r *PgxEventRuleRepository) FindEventCodesByChartPosition(ctx context.Context, chartPositionID string) ([]string, error) {
	query := `
		SELECT DISTINCT event_code
		FROM accounting_rules
		WHERE chart_position_id = $1
		ORDER BY event_code;
	`
	rows, err := r.Pool.Query(ctx, query, chartPositionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event codes for chart position %s: %w", chartPositionID, err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan event code row: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event code rows: %w", err)
	}
	return codes, nil
}
