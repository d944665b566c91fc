package models

// ApplicantProfile carries the identity and risk attributes used by the
// underwriting engine. Profiles come from the seed book (known applicants) or
// are synthesized for new applicants from self-reported facts. Once a decision
// has been computed for a request, the profile is not mutated again; the only
// permitted write beforehand is the one-time KYC flip.
type ApplicantProfile struct {
	Name             string           `json:"name"`
	Age              int              `json:"age"`
	City             string           `json:"city"`
	Phone            string           `json:"phone,omitempty"`
	Email            string           `json:"email,omitempty"`
	Address          string           `json:"address,omitempty"`
	KYCVerified      bool             `json:"kycVerified"`
	CreditScore      int              `json:"creditScore"`
	PreApprovedLimit int64            `json:"preApprovedLimit"`
	MonthlySalary    int64            `json:"monthlySalary"`
	Obligations      map[string]int64 `json:"existingObligations,omitempty"`

	// Seeded marks profiles loaded from the applicant book; KYC flips for
	// those must go through the repository so concurrent sessions agree.
	Seeded bool `json:"seeded"`
}

// Clone returns a deep copy so per-session mutation never leaks into the
// shared seed book.
func (p *ApplicantProfile) Clone() *ApplicantProfile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Obligations != nil {
		cp.Obligations = make(map[string]int64, len(p.Obligations))
		for k, v := range p.Obligations {
			cp.Obligations[k] = v
		}
	}
	return &cp
}

// ProfileRepository is the injected applicant store: read-only lookup plus a
// serialized, one-time KYC update per applicant name.
type ProfileRepository interface {
	// Lookup resolves a profile by case-insensitive name. The returned
	// profile is a copy; callers may hold it per session.
	Lookup(name string) (*ApplicantProfile, bool)

	// VerifyKYC flips kyc_verified for the named seed applicant exactly
	// once and returns the updated profile. Flipping an already-verified
	// profile is a no-op, not an error.
	VerifyKYC(name string) (*ApplicantProfile, error)
}
