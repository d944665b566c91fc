package models

import "time"

// DecisionStatus is the underwriting outcome.
type DecisionStatus string

const (
	StatusApproved    DecisionStatus = "Approved"
	StatusConditional DecisionStatus = "Conditional"
	StatusRejected    DecisionStatus = "Rejected"
)

// RationaleCode explains which policy branch produced the decision.
type RationaleCode string

const (
	RationaleInstantApproval RationaleCode = "instant_approval"
	RationaleReducedAmount   RationaleCode = "reduced_amount_approval"
	RationaleIncomeProof     RationaleCode = "income_proof_required"
	RationaleLowCreditScore  RationaleCode = "low_credit_score"
	RationaleExceedsLimit    RationaleCode = "exceeds_limit"
)

// Decision is the immutable underwriting verdict for one submitted
// LoanRequest. Confidence is a cosmetic quality signal in [82,98] and never
// influences status or amount.
type Decision struct {
	Status          DecisionStatus `json:"status"`
	RequestedAmount int64          `json:"requestedAmount"`
	ApprovedAmount  int64          `json:"approvedAmount"`
	TenureMonths    int            `json:"tenureMonths"`
	Rate            float64        `json:"rate"`
	EMI             float64        `json:"emi"`
	Confidence      int            `json:"confidence"`
	Rationale       RationaleCode  `json:"rationale"`
	CreatedAt       time.Time      `json:"createdAt"`

	// ValidityNote is attached when a conditional approval is parked
	// without document upload; metadata only, never re-evaluated.
	ValidityNote string `json:"validityNote,omitempty"`
}

// AmountReduced reports whether the approval differs from what was requested.
// Callers must surface this to the applicant, never substitute silently.
func (d *Decision) AmountReduced() bool {
	return d.Status != StatusRejected && d.ApprovedAmount != d.RequestedAmount
}

// Accepted reports whether the applicant got an approval of any kind.
func (d *Decision) Accepted() bool {
	return d.Status == StatusApproved || d.Status == StatusConditional
}

// ApplicationRecord is the append-only ledger row written once per computed
// Decision.
type ApplicationRecord struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	Name             string    `json:"name"`
	Age              int       `json:"age"`
	City             string    `json:"city"`
	Amount           int64     `json:"amount"`
	TenureMonths     int       `json:"tenureMonths"`
	Rate             float64   `json:"rate"`
	CreditScore      int       `json:"creditScore"`
	PreApprovedLimit int64     `json:"preApprovedLimit"`
	Salary           int64     `json:"salary"`
	Status           string    `json:"status"`
	Confidence       int       `json:"confidence"`
}
