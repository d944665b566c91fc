// Package profile supplies applicant profiles: a seed book of known
// applicants and a synthesizer for applicants the book has never seen.
package profile

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

//go:embed seed.json
var seedJSON []byte

//go:embed seed_schema.json
var seedSchemaJSON []byte

// SeedStore is an in-memory applicant book loaded from the embedded seed
// data. Lookups return copies; the single permitted mutation is the KYC
// flip, serialized per applicant so concurrent sessions agree.
type SeedStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.ApplicantProfile
	log      logger.Logger
}

// NewSeedStore validates the embedded seed book against its schema and
// loads it keyed by lowercase name.
func NewSeedStore(log logger.Logger) (*SeedStore, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(seedSchemaJSON),
		gojsonschema.NewBytesLoader(seedJSON),
	)
	if err != nil {
		return nil, errors.NewProfileSeedInvalidError(err.Error())
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, errors.NewProfileSeedInvalidError(strings.Join(msgs, "; "))
	}

	var seeds []*models.ApplicantProfile
	if err := json.Unmarshal(seedJSON, &seeds); err != nil {
		return nil, errors.NewProfileSeedInvalidError(err.Error())
	}

	profiles := make(map[string]*models.ApplicantProfile, len(seeds))
	for _, p := range seeds {
		p.Seeded = true
		profiles[strings.ToLower(p.Name)] = p
	}

	log.Info("Seed applicant book loaded", map[string]interface{}{
		"applicants": len(profiles),
	})
	return &SeedStore{profiles: profiles, log: log}, nil
}

// Lookup resolves a profile by case-insensitive name and returns a copy.
func (s *SeedStore) Lookup(name string) (*models.ApplicantProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// VerifyKYC flips kyc_verified for the named seed applicant. Flipping an
// already-verified profile is a no-op. The updated copy is returned.
func (s *SeedStore) VerifyKYC(name string) (*models.ApplicantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.NewProfileNotFoundError(name)
	}

	if !p.KYCVerified {
		p.KYCVerified = true
		s.log.Info("KYC verified", map[string]interface{}{
			"applicant": p.Name,
		})
	}
	return p.Clone(), nil
}

var _ models.ProfileRepository = (*SeedStore)(nil)
