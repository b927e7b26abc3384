// Package events publishes in-process notifications about portfolio changes.
package events

import "time"

// EventType names an event.
type EventType string

const (
	TransactionRecorded EventType = "TRANSACTION_RECORDED"
	PortfolioChanged    EventType = "PORTFOLIO_CHANGED"
	MaturityCredited    EventType = "MATURITY_CREDITED"
	SnapshotRecorded    EventType = "SNAPSHOT_RECORDED"
	HistoryNormalized   EventType = "HISTORY_NORMALIZED"
	StrategyGenerated   EventType = "STRATEGY_GENERATED"
	BackupCompleted     EventType = "BACKUP_COMPLETED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type, for subscribers that want everything.
var AllTypes = []EventType{
	TransactionRecorded,
	PortfolioChanged,
	MaturityCredited,
	SnapshotRecorded,
	HistoryNormalized,
	StrategyGenerated,
	BackupCompleted,
	ErrorOccurred,
}

// Event is one published notification.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Module    string                 `json:"module"`
	Data      map[string]interface{} `json:"data"`
}
