package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShareRecord is one investor's derived position in a cycle. It is
// computed from the ledger, never persisted.
type ShareRecord struct {
	InvestorID      uuid.UUID       `json:"investorId"`
	CycleID         uuid.UUID       `json:"cycleId"`
	Contribution    decimal.Decimal `json:"contributionUsdt"`
	SharePercentage decimal.Decimal `json:"sharePercentage"`
	MarkedValuation decimal.Decimal `json:"markedValuation"`
	DCTBalance      decimal.Decimal `json:"dctBalance"`
}

// ShareReport is the full distribution of a cycle.
type ShareReport struct {
	CycleID           uuid.UUID                  `json:"cycleId"`
	TotalContribution decimal.Decimal            `json:"totalContribution"`
	MarkPrice         decimal.NullDecimal        `json:"markPrice,omitempty"`
	Records           map[uuid.UUID]*ShareRecord `json:"records"`
}

// Record returns the share record for an investor, or a zero record.
func (r *ShareReport) Record(investorID uuid.UUID) *ShareRecord {
	if rec, ok := r.Records[investorID]; ok {
		return rec
	}
	return &ShareRecord{InvestorID: investorID, CycleID: r.CycleID}
}

// Available returns the balance a withdrawal is checked against:
// marked valuation when a price feed produced one, otherwise the
// net contribution.
func (r *ShareReport) Available(investorID uuid.UUID) decimal.Decimal {
	rec := r.Record(investorID)
	if r.MarkPrice.Valid && rec.DCTBalance.IsPositive() {
		return rec.MarkedValuation
	}
	return rec.Contribution
}
