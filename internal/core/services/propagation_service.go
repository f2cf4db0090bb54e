package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/middleware"
)

var (
	ErrNoSourceEntries = errors.New("expansion requires at least one source entry")
	ErrNoBranches      = errors.New("expansion requires at least one eligible branch")
	ErrAmountNotFound  = errors.New("no source entry matches the branch code")
	ErrRuleCycle       = errors.New("event rule chain loops back on itself")
)

// propagationService expands one business event into per-branch staged lines
// against liaison accounts, ready for independent sealing and approval.
type propagationService struct {
	ruleRepo    portsrepo.EventRuleReader
	accountRepo portsrepo.AccountRepositoryFacade
	resolver    portssvc.AccountResolverSvcFacade
	staging     portssvc.StagingSvcFacade
}

// NewPropagationService creates a new branch propagation service.
func NewPropagationService(ruleRepo portsrepo.EventRuleReader, accountRepo portsrepo.AccountRepositoryFacade, resolver portssvc.AccountResolverSvcFacade, staging portssvc.StagingSvcFacade) portssvc.PropagationSvcFacade {
	return &propagationService{
		ruleRepo:    ruleRepo,
		accountRepo: accountRepo,
		resolver:    resolver,
		staging:     staging,
	}
}

var _ portssvc.PropagationSvcFacade = (*propagationService)(nil)

// ExpandAcrossBranches fans the source event out to every eligible branch.
// Each branch gets its own reference (<original>-<branchCode>) and its own set
// of system-staged lines, which then run through the normal seal and approval
// pipeline per branch.
func (s *propagationService) ExpandAcrossBranches(ctx context.Context, input portssvc.ExpandInput) ([]portssvc.BranchExpansion, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(input.SourceEntries) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrNoSourceEntries)
	}
	if len(input.Branches) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrNoBranches)
	}

	sourceRef := input.SourceEntries[0].Reference
	sourceAccounts, err := s.loadSourceAccounts(ctx, input.SourceEntries)
	if err != nil {
		return nil, err
	}

	expansions := make([]portssvc.BranchExpansion, 0, len(input.Branches))
	for _, branch := range input.Branches {
		amount, err := branchAmount(input.SourceEntries, sourceAccounts, branch)
		if err != nil {
			return nil, err
		}

		reference := fmt.Sprintf("%s-%s", sourceRef, branch.Code)
		expansion := portssvc.BranchExpansion{
			Branch:    branch,
			Reference: reference,
		}

		// Walk the event chain for this branch, staging one line per rule.
		visited := make(map[string]bool)
		eventCode := input.EventCode
		for eventCode != "" {
			if visited[eventCode] {
				return nil, fmt.Errorf("%w: event %s", ErrRuleCycle, eventCode)
			}
			visited[eventCode] = true

			rule, err := s.ruleRepo.FindEventRuleByCode(ctx, eventCode)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return nil, fmt.Errorf("%w: event rule %s", apperrors.ErrNotFound, eventCode)
				}
				return nil, fmt.Errorf("failed to load event rule %s: %w", eventCode, err)
			}

			entries, err := s.stageRuleLines(ctx, rule, branch, input, reference, amount)
			if err != nil {
				return nil, err
			}
			expansion.Entries = append(expansion.Entries, entries...)

			if rule.ChainEntry && rule.NextEventCode != nil {
				eventCode = *rule.NextEventCode
			} else {
				eventCode = ""
			}
		}

		expansions = append(expansions, expansion)
	}

	logger.Info("Event expanded across branches",
		slog.String("event_code", input.EventCode),
		slog.String("source_reference", sourceRef),
		slog.Int("branch_count", len(expansions)))
	return expansions, nil
}

// stageRuleLines resolves the liaison account for each determination rule and
// stages one system line per rule under the branch reference.
func (s *propagationService) stageRuleLines(ctx context.Context, rule *domain.AccountingEventRule, branch domain.Branch, input portssvc.ExpandInput, reference string, amount decimal.Decimal) ([]domain.StagedEntry, error) {
	entries := make([]domain.StagedEntry, 0, len(rule.Rules))
	for _, r := range rule.Rules {
		account, err := s.resolver.ResolveAccount(ctx, r.ChartPositionID, branch, &input.ActingBranch.BranchID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve liaison account for rule %s (branch %s): %w", r.RuleID, branch.BranchID, err)
		}

		staged, err := s.staging.StageEntry(ctx, portssvc.StageEntryInput{
			AccountID: account.AccountID,
			Amount:    amount,
			Direction: r.Direction,
			Reference: reference,
			EventCode: rule.EventCode,
			Narrative: fmt.Sprintf("%s settlement for branch %s", rule.Description, branch.Code),
			Source:    domain.SourceSystem,
			CreatorID: input.CreatorID,
			BranchID:  branch.BranchID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to stage propagated line for branch %s: %w", branch.BranchID, err)
		}
		entries = append(entries, *staged)
	}
	return entries, nil
}

// loadSourceAccounts fetches the accounts behind the source lines so their
// account numbers can be matched against branch codes.
func (s *propagationService) loadSourceAccounts(ctx context.Context, sourceEntries []domain.StagedEntry) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(sourceEntries))
	seen := make(map[string]struct{}, len(sourceEntries))
	for _, e := range sourceEntries {
		if _, ok := seen[e.AccountID]; !ok {
			seen[e.AccountID] = struct{}{}
			ids = append(ids, e.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load source accounts: %w", err)
	}
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accounts, nil
}

// branchAmount locates the movement amount for a branch: the source line whose
// account number carries the branch code. A missing match is an explicit
// error, never a silent zero posting.
func branchAmount(sourceEntries []domain.StagedEntry, accounts map[string]domain.Account, branch domain.Branch) (decimal.Decimal, error) {
	for _, e := range sourceEntries {
		account := accounts[e.AccountID]
		if strings.Contains(account.AccountNumber, branch.Code) {
			return e.Amount, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: branch %s (code %s)", ErrAmountNotFound, branch.BranchID, branch.Code)
}
