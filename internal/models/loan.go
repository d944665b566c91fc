package models

// LoanPurpose is the enumerated category a loan is requested for.
type LoanPurpose string

const (
	PurposePersonal       LoanPurpose = "Personal Loan"
	PurposeBusiness       LoanPurpose = "Business Loan"
	PurposeHomeRenovation LoanPurpose = "Home Renovation Loan"
	PurposeWedding        LoanPurpose = "Wedding Loan"
	PurposeTravel         LoanPurpose = "Travel Loan"
	PurposeMedical        LoanPurpose = "Medical Loan"
	PurposeEducation      LoanPurpose = "Education Loan"
)

const (
	// DefaultTenureMonths applies when the applicant never states a tenure.
	DefaultTenureMonths = 24

	// MinLoanAmount is the minimum viable loan. No decision approves below
	// this floor; it degrades to a rejection instead.
	MinLoanAmount int64 = 50_000
)

// ValidTenures is the closed set of repayment tenures offered, in months.
var ValidTenures = []int{12, 24, 36, 48, 60}

// ValidTenure reports whether months is one of the offered tenures.
func ValidTenure(months int) bool {
	for _, t := range ValidTenures {
		if t == months {
			return true
		}
	}
	return false
}

// LoanRequest is what the applicant has asked for. Amount and purpose may be
// revised before submission; the interest rate is computed at underwriting,
// never requested.
type LoanRequest struct {
	Amount       int64       `json:"amount"`
	TenureMonths int         `json:"tenureMonths"`
	Purpose      LoanPurpose `json:"purpose"`
}
