package services

import (
	portsrepo "github.com/corebank/posting-engine/internal/core/ports/repositories"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/pkg/config"
)

// NewServiceContainer wires the posting engine's services over the given
// repositories and external collaborators.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryContainer, provisioner portssvc.AccountProvisioner, audit portssvc.AuditLogger) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	reserved := ReservedAccountRules{
		NumberPrefixes: cfg.ReservedAccountPrefixes,
		EventCodes:     cfg.ReservedEventCodes,
	}

	container.Staging = NewStagingService(repos.Account, repos.StagedEntry, repos.EventRule, reserved)
	container.Batch = NewBatchService(repos.StagedEntry, repos.PostedEntry, audit)
	container.Approval = NewApprovalService(repos.StagedEntry, repos.PostedEntry, audit)
	container.Resolver = NewResolverService(repos.Account, provisioner)
	container.Propagation = NewPropagationService(repos.EventRule, repos.Account, container.Resolver, container.Staging)
	container.Account = NewAccountService(repos.Account, repos.LedgerEntry)

	return container
}
