package repositories

// RepositoryContainer bundles the concrete repositories handed to the service layer.
type RepositoryContainer struct {
	Account     AccountRepositoryFacade
	StagedEntry StagedEntryRepositoryFacade
	PostedEntry PostedEntryRepositoryFacade
	LedgerEntry LedgerEntryReader
	EventRule   EventRuleReader
}
