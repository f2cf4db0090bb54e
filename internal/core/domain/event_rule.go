package domain

// AccountingRule names the chart-of-account position a business event posts
// against, and on which side. Rules are immutable configuration.
type AccountingRule struct {
	RuleID          string         `json:"ruleID"`
	EventCode       string         `json:"eventCode"`
	ChartPositionID string         `json:"chartPositionID"`
	Direction       EntryDirection `json:"direction"`
}

// AccountingEventRule maps a business event to its account determination rules.
// ChainEntry links settlement events into a chain: after expanding this event
// across branches, propagation continues with NextEventCode for the same set.
type AccountingEventRule struct {
	EventCode     string           `json:"eventCode"`
	Description   string           `json:"description"`
	ChainEntry    bool             `json:"chainEntry"`
	NextEventCode *string          `json:"nextEventCode"`
	Rules         []AccountingRule `json:"rules"`
}
