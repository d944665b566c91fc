package profile

import (
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// Rand is the randomness source for profile synthesis.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Synthesizer generates a risk profile for applicants absent from the seed
// book, from the facts they reported themselves. Synthesized profiles start
// KYC-unverified; documents are collected before underwriting.
type Synthesizer struct {
	rng Rand
	log logger.Logger
}

func NewSynthesizer(rng Rand, log logger.Logger) *Synthesizer {
	return &Synthesizer{rng: rng, log: log}
}

// scoreBands tiers the sampled credit score by reported salary. Higher
// earners draw from a better band.
var scoreBands = []struct {
	minSalary int64
	low, high int
}{
	{100000, 750, 850},
	{75000, 700, 780},
	{50000, 650, 750},
	{0, 600, 720},
}

// Synthesize builds a profile from self-reported facts. The pre-approved
// limit is a uniform 4x to 6x multiple of salary.
func (s *Synthesizer) Synthesize(name string, age int, city string, salary int64) *models.ApplicantProfile {
	var low, high int
	for _, band := range scoreBands {
		if salary >= band.minSalary {
			low, high = band.low, band.high
			break
		}
	}
	score := low + s.rng.Intn(high-low+1)
	multiplier := 4 + 2*s.rng.Float64()
	limit := int64(float64(salary) * multiplier)

	p := &models.ApplicantProfile{
		Name:             name,
		Age:              age,
		City:             city,
		KYCVerified:      false,
		CreditScore:      score,
		PreApprovedLimit: limit,
		MonthlySalary:    salary,
	}

	s.log.Info("Profile synthesized", map[string]interface{}{
		"applicant":   name,
		"creditScore": score,
		"limit":       limit,
		"salary":      salary,
	})
	return p
}
