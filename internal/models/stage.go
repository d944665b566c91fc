package models

// Stage identifies where a conversation sits in the origination journey.
// The set is closed: every transition in the conversation package maps onto
// one of these values, and anything else is a contract violation.
type Stage string

const (
	StageGreeting         Stage = "greeting"
	StageIdentification   Stage = "identification"
	StageKYCVerification  Stage = "kyc_verification"
	StageSalesPitch       Stage = "sales_pitch"
	StageNewCustomerPitch Stage = "new_customer_pitch"
	StageNewCustomerInfo  Stage = "new_customer_info"
	StageLoanTypeSelect   Stage = "loan_type_selection"
	StageLoanRequirement  Stage = "loan_requirement"
	StageTermsConfirm     Stage = "terms_confirmation"
	StageKYCUpload        Stage = "kyc_upload"
	StageUnderwriting     Stage = "underwriting"
	StageConditionalDocs  Stage = "conditional_docs"
	StageSanction         Stage = "sanction"
	StageCompleted        Stage = "completed"
)

var allStages = map[Stage]bool{
	StageGreeting:         true,
	StageIdentification:   true,
	StageKYCVerification:  true,
	StageSalesPitch:       true,
	StageNewCustomerPitch: true,
	StageNewCustomerInfo:  true,
	StageLoanTypeSelect:   true,
	StageLoanRequirement:  true,
	StageTermsConfirm:     true,
	StageKYCUpload:        true,
	StageConditionalDocs:  true,
	StageUnderwriting:     true,
	StageSanction:         true,
	StageCompleted:        true,
}

// Valid reports whether s belongs to the declared stage graph.
func (s Stage) Valid() bool {
	return allStages[s]
}

// Terminal reports whether the conversation has ended. A completed session is
// only re-enterable through an explicit reset.
func (s Stage) Terminal() bool {
	return s == StageCompleted
}
