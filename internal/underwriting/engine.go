// Package underwriting holds the deterministic eligibility policy. Given a
// verified applicant profile and a submitted request, Assess produces an
// immutable decision; randomness only feeds the cosmetic confidence figure.
package underwriting

import (
	"fmt"
	"math"
	"time"

	"loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/metrics"
	"loan-assistant/internal/models"
)

// Rand is the randomness source injected into the engine. Production wiring
// passes a seeded math/rand; tests pass a fixed sequence.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Engine evaluates loan requests against the eligibility policy.
type Engine struct {
	rng Rand
	log logger.Logger
}

// New creates an underwriting engine.
func New(rng Rand, log logger.Logger) *Engine {
	return &Engine{rng: rng, log: log}
}

const (
	// maxEMIRatio caps the EMI to monthly salary ratio for full approvals.
	maxEMIRatio = 0.45

	// conditionalEMIRatio is the tighter affordability bound for over-limit
	// requests held as conditional approvals pending income proof.
	conditionalEMIRatio = 0.40

	// overLimitFactor bounds how far past the pre-approved limit a
	// conditional approval may stretch.
	overLimitFactor = 2

	lowScoreCutoff = 650
)

// Assess runs the eligibility policy. It returns an error only when called
// outside its contract; every in-contract outcome, rejection included, is a
// decision.
//
// The policy branches in order:
//  1. Sub-650 score: approve min(half the limit, 2.5x salary), floored at
//     the minimum viable amount, else reject outright.
//  2. Within limit and affordable EMI: approve in full.
//  3. Up to twice the limit with the EMI comfortably inside salary: hold the
//     full amount as a conditional approval pending income proof.
//  4. Otherwise: approve min(limit, 4x salary), floored at the minimum
//     viable amount, else reject.
func (e *Engine) Assess(p *models.ApplicantProfile, amount int64, tenureMonths int) (*models.Decision, error) {
	if p == nil {
		return nil, errors.NewDecisionContractViolationError("nil profile")
	}
	if !p.KYCVerified {
		return nil, errors.NewDecisionContractViolationError(fmt.Sprintf("unverified profile: %s", p.Name))
	}
	if amount <= 0 {
		return nil, errors.NewDecisionContractViolationError(fmt.Sprintf("non-positive amount: %d", amount))
	}
	if !models.ValidTenure(tenureMonths) {
		return nil, errors.NewDecisionContractViolationError(fmt.Sprintf("tenure not offered: %d", tenureMonths))
	}

	rate := RateFor(p.CreditScore)
	d := &models.Decision{
		RequestedAmount: amount,
		TenureMonths:    tenureMonths,
		Rate:            rate,
		Confidence:      82 + e.rng.Intn(17),
		CreatedAt:       time.Now().UTC(),
	}

	switch {
	case p.CreditScore < lowScoreCutoff:
		reduced := minInt64(p.PreApprovedLimit/2, int64(float64(p.MonthlySalary)*2.5))
		if reduced >= models.MinLoanAmount {
			d.Status = models.StatusApproved
			d.ApprovedAmount = reduced
			d.Rationale = models.RationaleReducedAmount
			d.EMI = EMI(reduced, rate, tenureMonths)
		} else {
			d.Status = models.StatusRejected
			d.Rationale = models.RationaleLowCreditScore
		}

	case amount <= p.PreApprovedLimit &&
		EMI(amount, rate, tenureMonths) <= maxEMIRatio*float64(p.MonthlySalary):
		d.Status = models.StatusApproved
		d.ApprovedAmount = amount
		d.Rationale = models.RationaleInstantApproval
		d.EMI = EMI(amount, rate, tenureMonths)

	case amount > p.PreApprovedLimit &&
		amount <= overLimitFactor*p.PreApprovedLimit &&
		EMI(amount, rate, tenureMonths) <= conditionalEMIRatio*float64(p.MonthlySalary):
		d.Status = models.StatusConditional
		d.ApprovedAmount = amount
		d.Rationale = models.RationaleIncomeProof
		d.EMI = EMI(amount, rate, tenureMonths)

	default:
		reduced := minInt64(p.PreApprovedLimit, p.MonthlySalary*4)
		if reduced >= models.MinLoanAmount {
			d.Status = models.StatusApproved
			d.ApprovedAmount = reduced
			d.Rationale = models.RationaleReducedAmount
			d.EMI = EMI(reduced, rate, tenureMonths)
		} else {
			d.Status = models.StatusRejected
			d.Rationale = models.RationaleExceedsLimit
		}
	}

	metrics.DecisionsIssued.WithLabelValues(string(d.Status), string(d.Rationale)).Inc()
	e.log.Info("Decision issued", map[string]interface{}{
		"applicant":      p.Name,
		"creditScore":    p.CreditScore,
		"requested":      amount,
		"approved":       d.ApprovedAmount,
		"tenureMonths":   tenureMonths,
		"rate":           rate,
		"status":         string(d.Status),
		"rationale":      string(d.Rationale),
	})

	return d, nil
}

// RateFor returns the annual interest rate for a credit score band.
func RateFor(score int) float64 {
	switch {
	case score >= 800:
		return 11.5
	case score >= 750:
		return 12.0
	case score >= 700:
		return 12.5
	default:
		return 13.0
	}
}

// EMI computes the equated monthly installment for a principal at an annual
// percentage rate over the given number of months.
func EMI(principal int64, annualRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	if r == 0 {
		return float64(principal) / float64(months)
	}
	factor := math.Pow(1+r, float64(months))
	return float64(principal) * r * factor / (factor - 1)
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
