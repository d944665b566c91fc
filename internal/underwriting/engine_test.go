package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// fixedRand returns constant values so decisions are fully deterministic.
type fixedRand struct {
	n int
	f float64
}

func (r *fixedRand) Intn(n int) int   { return r.n % n }
func (r *fixedRand) Float64() float64 { return r.f }

func newTestEngine(t *testing.T) *Engine {
	return New(&fixedRand{n: 5, f: 0.5}, logger.NewTestLogger(t))
}

func profile(score int, limit, salary int64) *models.ApplicantProfile {
	return &models.ApplicantProfile{
		Name:             "Rahul",
		KYCVerified:      true,
		CreditScore:      score,
		PreApprovedLimit: limit,
		MonthlySalary:    salary,
	}
}

func TestAssessInstantApproval(t *testing.T) {
	e := newTestEngine(t)

	d, err := e.Assess(profile(780, 300000, 60000), 250000, 24)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, d.Status)
	assert.Equal(t, models.RationaleInstantApproval, d.Rationale)
	assert.Equal(t, int64(250000), d.ApprovedAmount)
	assert.Equal(t, int64(250000), d.RequestedAmount)
	assert.Equal(t, 12.0, d.Rate)
	assert.InDelta(t, 11768.46, d.EMI, 0.5)
	assert.False(t, d.AmountReduced())
	assert.True(t, d.Accepted())
	assert.GreaterOrEqual(t, d.Confidence, 82)
	assert.LessOrEqual(t, d.Confidence, 98)
}

func TestAssessLowScoreReducedOffer(t *testing.T) {
	e := newTestEngine(t)

	// score 620: approve min(200000/2, 45000*2.5) = 100000
	d, err := e.Assess(profile(620, 200000, 45000), 150000, 24)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, d.Status)
	assert.Equal(t, models.RationaleReducedAmount, d.Rationale)
	assert.Equal(t, int64(100000), d.ApprovedAmount)
	assert.Equal(t, int64(150000), d.RequestedAmount)
	assert.Equal(t, 13.0, d.Rate)
	assert.True(t, d.AmountReduced())
	assert.True(t, d.Accepted())
	assert.Greater(t, d.EMI, 0.0)
}

func TestAssessLowScoreRejection(t *testing.T) {
	e := newTestEngine(t)

	// score 600 with tiny limit and salary: reduced offer falls under floor
	d, err := e.Assess(profile(600, 60000, 16000), 100000, 24)
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, d.Status)
	assert.Equal(t, models.RationaleLowCreditScore, d.Rationale)
	assert.Equal(t, int64(0), d.ApprovedAmount)
	assert.Equal(t, 0.0, d.EMI)
	assert.False(t, d.Accepted())
}

func TestAssessOverLimitReducedApproval(t *testing.T) {
	e := newTestEngine(t)

	// far over limit with a heavy EMI: approve min(400000, 80000*4) = 320000
	d, err := e.Assess(profile(710, 400000, 80000), 750000, 24)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, d.Status)
	assert.Equal(t, models.RationaleReducedAmount, d.Rationale)
	assert.Equal(t, int64(320000), d.ApprovedAmount)
	assert.Equal(t, int64(750000), d.RequestedAmount)
	assert.Equal(t, 12.5, d.Rate)
	assert.True(t, d.AmountReduced())
}

func TestAssessOverLimitAffordableIsConditional(t *testing.T) {
	e := newTestEngine(t)

	// above limit but within twice of it, and the EMI sits well inside
	// salary: the full amount is held pending income proof
	d, err := e.Assess(profile(710, 400000, 80000), 600000, 24)
	require.NoError(t, err)

	assert.Equal(t, models.StatusConditional, d.Status)
	assert.Equal(t, models.RationaleIncomeProof, d.Rationale)
	assert.Equal(t, int64(600000), d.ApprovedAmount)
	assert.Equal(t, int64(600000), d.RequestedAmount)
	assert.InDelta(t, 28385, d.EMI, 5)
	assert.False(t, d.AmountReduced())
	assert.True(t, d.Accepted())
}

func TestAssessUnaffordableEMIFallsToReducedOffer(t *testing.T) {
	e := newTestEngine(t)

	// within limit but EMI over 45% of salary on a 12 month tenure
	p := profile(760, 900000, 20000)
	p.MonthlySalary = 20000
	d, err := e.Assess(p, 800000, 12)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, d.Status)
	assert.Equal(t, int64(80000), d.ApprovedAmount)
	assert.Equal(t, models.RationaleReducedAmount, d.Rationale)
}

func TestAssessRejectsBelowFloorReducedOffer(t *testing.T) {
	e := newTestEngine(t)

	// reduced offer min(limit, 4x salary) under the floor
	p := &models.ApplicantProfile{
		Name:             "Vikram",
		KYCVerified:      true,
		CreditScore:      700,
		PreApprovedLimit: 40000,
		MonthlySalary:    20000,
	}
	d, err := e.Assess(p, 500000, 24)
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, d.Status)
	assert.Equal(t, models.RationaleExceedsLimit, d.Rationale)
	assert.Equal(t, int64(0), d.ApprovedAmount)
}

func TestAssessContractViolations(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name    string
		profile *models.ApplicantProfile
		amount  int64
		tenure  int
	}{
		{"nil profile", nil, 200000, 24},
		{"unverified profile", &models.ApplicantProfile{Name: "Arjun", CreditScore: 700, MonthlySalary: 50000, PreApprovedLimit: 200000}, 200000, 24},
		{"zero amount", profile(780, 300000, 60000), 0, 24},
		{"tenure not offered", profile(780, 300000, 60000), 200000, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Assess(tt.profile, tt.amount, tt.tenure)
			assert.Error(t, err)
			assert.Nil(t, d)
		})
	}
}

func TestAssessDeterministicGivenFixedRand(t *testing.T) {
	e := newTestEngine(t)
	p := profile(780, 300000, 60000)

	d1, err := e.Assess(p, 250000, 24)
	require.NoError(t, err)
	d2, err := e.Assess(p, 250000, 24)
	require.NoError(t, err)

	assert.Equal(t, d1.Status, d2.Status)
	assert.Equal(t, d1.ApprovedAmount, d2.ApprovedAmount)
	assert.Equal(t, d1.Rate, d2.Rate)
	assert.Equal(t, d1.EMI, d2.EMI)
	assert.Equal(t, d1.Confidence, d2.Confidence)
}

func TestApprovedAmountStaysWithinPolicyBounds(t *testing.T) {
	e := newTestEngine(t)

	profiles := []*models.ApplicantProfile{
		profile(620, 200000, 45000),
		profile(710, 400000, 80000),
		profile(780, 300000, 60000),
		profile(820, 500000, 95000),
	}
	amounts := []int64{60000, 150000, 300000, 700000}
	tenures := []int{12, 24, 36, 60}

	for _, p := range profiles {
		for _, amt := range amounts {
			for _, tn := range tenures {
				d, err := e.Assess(p, amt, tn)
				require.NoError(t, err)
				switch d.Status {
				case models.StatusRejected:
					assert.Zero(t, d.ApprovedAmount)
				case models.StatusConditional:
					// conditional approvals carry the full request, capped
					// at twice the limit
					assert.Equal(t, d.RequestedAmount, d.ApprovedAmount)
					assert.LessOrEqual(t, d.ApprovedAmount, 2*p.PreApprovedLimit)
					assert.GreaterOrEqual(t, d.ApprovedAmount, models.MinLoanAmount)
				default:
					assert.LessOrEqual(t, d.ApprovedAmount, p.PreApprovedLimit)
					assert.GreaterOrEqual(t, d.ApprovedAmount, models.MinLoanAmount)
				}
			}
		}
	}
}

func TestRateFor(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{820, 11.5},
		{800, 11.5},
		{780, 12.0},
		{750, 12.0},
		{749, 12.5},
		{700, 12.5},
		{699, 13.0},
		{620, 13.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RateFor(tt.score), "score %d", tt.score)
	}
}

func TestEMI(t *testing.T) {
	// standard amortization check
	assert.InDelta(t, 11768.46, EMI(250000, 12.0, 24), 0.5)
	assert.InDelta(t, 8908.60, EMI(100000, 12.5, 12), 1.0)

	// zero rate degenerates to straight division
	assert.Equal(t, 10000.0, EMI(240000, 0, 24))

	// longer tenure always lowers the installment
	assert.Less(t, EMI(250000, 12.0, 36), EMI(250000, 12.0, 24))
}
