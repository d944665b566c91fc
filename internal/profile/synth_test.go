package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"loan-assistant/internal/common/logger"
)

type fixedRand struct {
	n int
	f float64
}

func (r *fixedRand) Intn(n int) int   { return r.n % n }
func (r *fixedRand) Float64() float64 { return r.f }

func TestSynthesizeScoreBands(t *testing.T) {
	tests := []struct {
		name     string
		salary   int64
		wantLow  int
		wantHigh int
	}{
		{"top band", 120000, 750, 850},
		{"band boundary 100k", 100000, 750, 850},
		{"upper middle band", 80000, 700, 780},
		{"middle band", 60000, 650, 750},
		{"bottom band", 30000, 600, 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(&fixedRand{n: 7, f: 0.5}, logger.NewTestLogger(t))
			p := s.Synthesize("Tara", 30, "Indore", tt.salary)
			assert.GreaterOrEqual(t, p.CreditScore, tt.wantLow)
			assert.LessOrEqual(t, p.CreditScore, tt.wantHigh)
		})
	}
}

func TestSynthesizeLimitMultiplier(t *testing.T) {
	// f=0.5 pins the multiplier at 5x
	s := NewSynthesizer(&fixedRand{n: 0, f: 0.5}, logger.NewTestLogger(t))
	p := s.Synthesize("Tara", 30, "Indore", 60000)

	assert.Equal(t, int64(300000), p.PreApprovedLimit)
	assert.False(t, p.KYCVerified)
	assert.False(t, p.Seeded)
	assert.Equal(t, "Tara", p.Name)
	assert.Equal(t, 30, p.Age)
	assert.Equal(t, "Indore", p.City)
	assert.Equal(t, int64(60000), p.MonthlySalary)
}

func TestSynthesizeLimitBounds(t *testing.T) {
	salary := int64(50000)

	low := NewSynthesizer(&fixedRand{n: 0, f: 0.0}, logger.NewTestLogger(t)).
		Synthesize("A", 30, "Pune", salary)
	high := NewSynthesizer(&fixedRand{n: 0, f: 0.999}, logger.NewTestLogger(t)).
		Synthesize("B", 30, "Pune", salary)

	assert.Equal(t, int64(200000), low.PreApprovedLimit)
	assert.GreaterOrEqual(t, high.PreApprovedLimit, int64(290000))
	assert.Less(t, high.PreApprovedLimit, int64(300000))
}
