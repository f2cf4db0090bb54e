package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
)

// NewRepositoryContainer wires the pgx repositories over one shared pool.
func NewRepositoryContainer(dbPool *pgxpool.Pool) portsrepo.RepositoryContainer {
	accountRepo := newPgxAccountRepository(dbPool)
	stagedEntryRepo := newPgxStagedEntryRepository(dbPool)
	postedEntryRepo := newPgxPostedEntryRepository(dbPool, accountRepo)
	ledgerEntryRepo := newPgxLedgerEntryRepository(dbPool)
	eventRuleRepo := newPgxEventRuleRepository(dbPool)

	return portsrepo.RepositoryContainer{
		Account:     accountRepo,
		StagedEntry: stagedEntryRepo,
		PostedEntry: postedEntryRepo,
		LedgerEntry: ledgerEntryRepo,
		EventRule:   eventRuleRepo,
	}
}
