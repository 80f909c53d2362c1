package types

import "time"

// OrderLog is a single immutable audit entry on an order.
type OrderLog struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderLogs is the newest-first, append-only audit trail persisted as jsonb.
type OrderLogs []OrderLog

// Prepend returns the trail with a new entry at the head. The receiver is not
// modified; callers persist the returned slice.
func (l OrderLogs) Prepend(message string, at time.Time) OrderLogs {
	out := make(OrderLogs, 0, len(l)+1)
	out = append(out, OrderLog{Message: message, Timestamp: at})
	out = append(out, l...)
	return out
}
