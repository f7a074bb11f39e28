package service

import "time"

// NewLedgerForTest returns a copy of l whose clock is frozen at now.
func NewLedgerForTest(l *Ledger, now time.Time) *Ledger {
	c := *l
	c.now = func() time.Time { return now }
	return &c
}
