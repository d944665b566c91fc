package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"rahul@applicants.example.com", true},
		{"meera.k+loans@bank.co.in", true},
		{"not-an-email", false},
		{"@missing-local.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateEmail(tt.email))
		})
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+91-9820011223", true},
		{"9820011223", true},
		{"(022) 4000 1122", true},
		{"12345", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidatePhone(tt.phone))
		})
	}
}
