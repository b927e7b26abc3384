package events

// EventData is implemented by every typed payload.
type EventData interface {
	EventType() EventType
}

// TransactionRecordedData is emitted after a ledger append.
type TransactionRecordedData struct {
	UserID        string  `json:"user_id"`
	TransactionID string  `json:"transaction_id"`
	Kind          string  `json:"kind"`
	Currency      string  `json:"currency"`
	Amount        float64 `json:"amount"`
}

// EventType returns the event type for TransactionRecordedData
func (d *TransactionRecordedData) EventType() EventType {
	return TransactionRecorded
}

// PortfolioChangedData is emitted when positions or cash balances change.
type PortfolioChangedData struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// EventType returns the event type for PortfolioChangedData
func (d *PortfolioChangedData) EventType() EventType {
	return PortfolioChanged
}

// MaturityCreditedData is emitted when a matured deposit or caución pays out.
type MaturityCreditedData struct {
	UserID     string  `json:"user_id"`
	PositionID string  `json:"position_id"`
	Currency   string  `json:"currency"`
	Principal  float64 `json:"principal"`
	Interest   float64 `json:"interest"`
}

// EventType returns the event type for MaturityCreditedData
func (d *MaturityCreditedData) EventType() EventType {
	return MaturityCredited
}

// SnapshotRecordedData is emitted after a daily record is written.
type SnapshotRecordedData struct {
	UserID     string  `json:"user_id"`
	Date       string  `json:"date"`
	TotalARS   float64 `json:"total_ars"`
	TotalUSD   float64 `json:"total_usd"`
	Incomplete bool    `json:"incomplete"`
}

// EventType returns the event type for SnapshotRecordedData
func (d *SnapshotRecordedData) EventType() EventType {
	return SnapshotRecorded
}

// HistoryNormalizedData is emitted after a normalization pass that changed records.
type HistoryNormalizedData struct {
	UserID    string `json:"user_id"`
	Strategy  string `json:"strategy"`
	Records   int    `json:"records"`
	Corrected int    `json:"corrected"`
	Persisted bool   `json:"persisted"`
}

// EventType returns the event type for HistoryNormalizedData
func (d *HistoryNormalizedData) EventType() EventType {
	return HistoryNormalized
}

// StrategyGeneratedData is emitted when an allocation strategy is built.
type StrategyGeneratedData struct {
	UserID          string `json:"user_id"`
	RiskAppetite    string `json:"risk_appetite"`
	Recommendations int    `json:"recommendations"`
}

// EventType returns the event type for StrategyGeneratedData
func (d *StrategyGeneratedData) EventType() EventType {
	return StrategyGenerated
}

// BackupCompletedData is emitted after a successful backup upload.
type BackupCompletedData struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
	Databases int    `json:"databases"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// ErrorEventData carries a failure surfaced to subscribers.
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
