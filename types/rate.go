package types

import "time"

// RateResult is a successfully fetched exchange rate. Rate always has exactly
// two fractional digits.
type RateResult struct {
	From      string
	To        string
	Rate      string
	FetchedAt time.Time
}

// RateRecord is what gets persisted for a successful fetch.
type RateRecord struct {
	TaskID    int64     `json:"task_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"create_at"`
}

// NewRateRecord ties a fetched rate to the task it was fetched for.
func NewRateRecord(taskID int64, r RateResult) RateRecord {
	return RateRecord{
		TaskID:    taskID,
		From:      r.From,
		To:        r.To,
		Rate:      r.Rate,
		CreatedAt: r.FetchedAt,
	}
}

// CurrencyPair is a conversion the producer seeds into the queue.
type CurrencyPair struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}
