// Package conversation drives the origination dialogue: one turn in, one
// reply out, with every stage transition defined here and nowhere else.
package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/metrics"
	"loan-assistant/internal/extract"
	"loan-assistant/internal/models"
	"loan-assistant/internal/profile"
	"loan-assistant/internal/underwriting"
)

// ==========================
// 1. Collaborator Interfaces
// ==========================

// LedgerSink records issued decisions. A nil sink disables recording.
type LedgerSink interface {
	Append(ctx context.Context, rec *models.ApplicationRecord) error
}

// DocumentRenderer produces the sanction letter.
type DocumentRenderer interface {
	Render(ctx context.Context, applicationID string, p *models.ApplicantProfile, d *models.Decision) (string, error)
}

// Enhancer optionally rewrites a templated reply, with the recent transcript
// as tone context. On error the caller serves the original.
type Enhancer interface {
	Enhance(ctx context.Context, stage string, history []models.Exchange, reply string) (string, error)
}

// Notifier delivers decision notifications out of band.
type Notifier interface {
	DecisionIssued(ctx context.Context, p *models.ApplicantProfile, d *models.Decision)
}

// ==========================
// 2. Machine
// ==========================

// Result is what one processed turn hands back to the transport layer.
type Result struct {
	Reply   string       `json:"reply"`
	Stage   models.Stage `json:"stage"`
	Options []string     `json:"options,omitempty"`
}

// Machine owns the stage graph. All collaborators except the extractor,
// engine and profile repository are optional; nil disables the concern.
type Machine struct {
	extractor *extract.Extractor
	engine    *underwriting.Engine
	profiles  models.ProfileRepository
	synth     *profile.Synthesizer
	ledger    LedgerSink
	renderer  DocumentRenderer
	enhancer  Enhancer
	notifier  Notifier
	log       logger.Logger
}

// Options configures optional collaborators.
type Options struct {
	Ledger   LedgerSink
	Renderer DocumentRenderer
	Enhancer Enhancer
	Notifier Notifier
}

func NewMachine(
	extractor *extract.Extractor,
	engine *underwriting.Engine,
	profiles models.ProfileRepository,
	synth *profile.Synthesizer,
	opts Options,
	log logger.Logger,
) *Machine {
	return &Machine{
		extractor: extractor,
		engine:    engine,
		profiles:  profiles,
		synth:     synth,
		ledger:    opts.Ledger,
		renderer:  opts.Renderer,
		enhancer:  opts.Enhancer,
		notifier:  opts.Notifier,
		log:       log,
	}
}

// Process advances the session by one turn. The caller holds the session
// lock; the machine mutates s freely and the caller persists it.
func (m *Machine) Process(ctx context.Context, s *models.SessionContext, utterance string) (*Result, error) {
	if !s.Stage.Valid() {
		return nil, errors.NewInvalidStageError(string(s.Stage))
	}

	start := time.Now()
	stageBefore := s.Stage
	metrics.ConversationTurns.WithLabelValues(string(stageBefore)).Inc()

	res, err := m.dispatch(ctx, s, utterance)
	if err != nil {
		return nil, err
	}

	res.Reply = m.enhance(ctx, s, res.Reply)
	res.Stage = s.Stage
	res.Options = quickReplies(s.Stage)
	s.Remember(utterance, res.Reply)

	metrics.TurnDuration.WithLabelValues(string(stageBefore)).Observe(time.Since(start).Seconds())
	m.log.Debug("Turn processed", map[string]interface{}{
		"sessionId": s.ID,
		"from":      string(stageBefore),
		"to":        string(s.Stage),
	})
	return res, nil
}

func (m *Machine) dispatch(ctx context.Context, s *models.SessionContext, utterance string) (*Result, error) {
	switch s.Stage {
	case models.StageGreeting:
		return m.handleGreeting(s)
	case models.StageIdentification:
		return m.handleIdentification(s, utterance)
	case models.StageKYCVerification:
		return m.handleKYCVerification(s, utterance)
	case models.StageSalesPitch:
		return m.handleSalesPitch(s, utterance)
	case models.StageNewCustomerPitch:
		return m.handleNewCustomerPitch(s, utterance)
	case models.StageNewCustomerInfo:
		return m.handleNewCustomerInfo(s, utterance)
	case models.StageLoanTypeSelect:
		return m.handleLoanTypeSelect(s, utterance)
	case models.StageLoanRequirement:
		return m.handleLoanRequirement(s, utterance)
	case models.StageTermsConfirm:
		return m.handleTermsConfirm(ctx, s, utterance)
	case models.StageKYCUpload:
		return m.handleKYCUpload(ctx, s, utterance)
	case models.StageConditionalDocs:
		return m.handleConditionalDocs(s, utterance)
	case models.StageSanction:
		return m.handleSanction(ctx, s, utterance)
	case models.StageCompleted:
		return &Result{Reply: replyCompleted()}, nil
	default:
		return nil, errors.NewInvalidStageError(string(s.Stage))
	}
}

// enhance serves the templated reply when enhancement is disabled or fails.
func (m *Machine) enhance(ctx context.Context, s *models.SessionContext, reply string) string {
	if m.enhancer == nil {
		return reply
	}
	out, err := m.enhancer.Enhance(ctx, string(s.Stage), s.History, reply)
	if err != nil {
		m.log.WithError(err).Debug("Reply enhancement skipped", map[string]interface{}{
			"stage": string(s.Stage),
		})
		return reply
	}
	return out
}

// ==========================
// 3. Stage Handlers
// ==========================

func (m *Machine) handleGreeting(s *models.SessionContext) (*Result, error) {
	s.Transition(models.StageIdentification)
	return &Result{Reply: replyGreeting()}, nil
}

func (m *Machine) handleIdentification(s *models.SessionContext, utterance string) (*Result, error) {
	name, ok := m.extractor.Name(utterance)
	if !ok {
		return m.reprompt(s, extract.KindName, replyAskNameAgain(s.RepeatPrompts)), nil
	}

	// opportunistic purpose capture ("I'm Rahul, need a wedding loan")
	m.capturePurpose(s, utterance)

	if p, found := m.profiles.Lookup(name); found {
		s.Profile = p
		s.IsExisting = true
		if !p.KYCVerified {
			s.Transition(models.StageKYCVerification)
			return &Result{Reply: replyAskKYC(p.Name)}, nil
		}
		s.Transition(models.StageSalesPitch)
		return &Result{Reply: replySalesPitch(p)}, nil
	}

	s.Profile = &models.ApplicantProfile{Name: name}
	s.IsExisting = false
	s.Transition(models.StageNewCustomerPitch)
	return &Result{Reply: replyNewCustomerPitch(name)}, nil
}

func (m *Machine) handleKYCVerification(s *models.SessionContext, utterance string) (*Result, error) {
	if extract.IsAffirmative(utterance) {
		p, err := m.profiles.VerifyKYC(s.Profile.Name)
		if err != nil {
			return nil, err
		}
		s.Profile = p
		s.Transition(models.StageSalesPitch)
		return &Result{Reply: replyKYCDone(p)}, nil
	}

	if extract.IsNegative(utterance) {
		// KYC is mandatory; a decline never advances the stage
		s.RepeatPrompts++
		if s.RepeatPrompts == 1 {
			return &Result{Reply: replyKYCPersuade(s.Profile.Name)}, nil
		}
		return &Result{Reply: replyKYCMandatory(s.Profile.Name)}, nil
	}

	return m.reprompt(s, "", replyAskKYC(s.Profile.Name)), nil
}

func (m *Machine) handleSalesPitch(s *models.SessionContext, utterance string) (*Result, error) {
	if m.capturePurpose(s, utterance) || extract.IsAffirmative(utterance) {
		if s.Request != nil && s.Request.Purpose != "" {
			s.Transition(models.StageLoanRequirement)
			return &Result{Reply: replyAskAmount(s.Profile)}, nil
		}
		s.Transition(models.StageLoanTypeSelect)
		return &Result{Reply: replyAskPurpose()}, nil
	}

	if extract.IsNegative(utterance) {
		if s.RepeatPrompts == 0 {
			s.RepeatPrompts++
			return &Result{Reply: replyPitchPersuade(s.Profile)}, nil
		}
		s.Transition(models.StageCompleted)
		return &Result{Reply: replyPoliteClose(s.Profile.Name)}, nil
	}

	return m.reprompt(s, "", replySalesPitch(s.Profile)), nil
}

func (m *Machine) handleNewCustomerPitch(s *models.SessionContext, utterance string) (*Result, error) {
	if m.capturePurpose(s, utterance) || extract.IsAffirmative(utterance) {
		s.Transition(models.StageNewCustomerInfo)
		return &Result{Reply: replyAskSalary()}, nil
	}

	if extract.IsNegative(utterance) {
		if s.RepeatPrompts == 0 {
			s.RepeatPrompts++
			return &Result{Reply: replyNewPitchPersuade()}, nil
		}
		s.Transition(models.StageCompleted)
		return &Result{Reply: replyPoliteClose(s.Profile.Name)}, nil
	}

	return m.reprompt(s, "", replyNewCustomerPitch(s.Profile.Name)), nil
}

func (m *Machine) handleNewCustomerInfo(s *models.SessionContext, utterance string) (*Result, error) {
	// slots fill strictly in order so a numeric answer is never mistaken
	// for a different fact
	if s.CollectedSalary == 0 {
		v, ok := m.extractor.Salary(utterance)
		if !ok {
			return m.reprompt(s, extract.KindSalary, replyAskSalaryAgain(s.RepeatPrompts)), nil
		}
		s.CollectedSalary = v
		s.RepeatPrompts = 0
		return &Result{Reply: replyAskCity()}, nil
	}
	if s.CollectedCity == "" {
		v, ok := m.extractor.City(utterance)
		if !ok {
			return m.reprompt(s, extract.KindCity, replyAskCityAgain(s.RepeatPrompts)), nil
		}
		s.CollectedCity = v
		s.RepeatPrompts = 0
		return &Result{Reply: replyAskAge()}, nil
	}
	if s.CollectedAge == 0 {
		v, ok := m.extractor.Age(utterance)
		if !ok {
			return m.reprompt(s, extract.KindAge, replyAskAgeAgain(s.RepeatPrompts)), nil
		}
		s.CollectedAge = v
	}

	if !s.ProfileSynthesized {
		p := m.synth.Synthesize(s.Profile.Name, s.CollectedAge, s.CollectedCity, s.CollectedSalary)
		s.Profile = p
		s.ProfileSynthesized = true
	}

	if s.Request != nil && s.Request.Purpose != "" {
		s.Transition(models.StageLoanRequirement)
		return &Result{Reply: replyProfileReadyAskAmount(s.Profile)}, nil
	}
	s.Transition(models.StageLoanTypeSelect)
	return &Result{Reply: replyProfileReadyAskPurpose(s.Profile)}, nil
}

func (m *Machine) handleLoanTypeSelect(s *models.SessionContext, utterance string) (*Result, error) {
	if !m.capturePurpose(s, utterance) {
		return m.reprompt(s, extract.KindPurpose, replyAskPurposeAgain(s.RepeatPrompts)), nil
	}
	s.Transition(models.StageLoanRequirement)
	return &Result{Reply: replyAskAmount(s.Profile)}, nil
}

func (m *Machine) handleLoanRequirement(s *models.SessionContext, utterance string) (*Result, error) {
	amount, ok := m.extractor.Amount(utterance)
	if !ok {
		return m.reprompt(s, extract.KindAmount, replyAskAmountAgain(s.RepeatPrompts)), nil
	}

	if s.Request == nil {
		s.Request = &models.LoanRequest{}
	}
	s.Request.Amount = amount
	if tenure, found := m.extractor.Tenure(utterance); found {
		s.Request.TenureMonths = tenure
	} else if s.Request.TenureMonths == 0 {
		s.Request.TenureMonths = models.DefaultTenureMonths
	}

	s.Transition(models.StageTermsConfirm)
	return &Result{Reply: replyTerms(s.Profile, s.Request)}, nil
}

func (m *Machine) handleTermsConfirm(ctx context.Context, s *models.SessionContext, utterance string) (*Result, error) {
	// tenure change: recompute the preview in place
	tenure, mentionedTenure := m.extractor.Tenure(utterance)
	if mentionedTenure && tenure != s.Request.TenureMonths {
		s.Request.TenureMonths = tenure
		s.RepeatPrompts = 0
		return &Result{Reply: replyTerms(s.Profile, s.Request)}, nil
	}

	// amount change: back to the requirement stage. A tenure mention is not
	// an amount even though both are numeric.
	if !mentionedTenure {
		if amount, ok := m.extractor.Amount(utterance); ok && amount != s.Request.Amount {
			s.Request.Amount = 0
			s.Transition(models.StageLoanRequirement)
			return &Result{Reply: replyAskAmountRevised()}, nil
		}
	}

	if extract.IsAffirmative(utterance) {
		if !s.Profile.KYCVerified {
			s.Transition(models.StageKYCUpload)
			return &Result{Reply: replyAskKYCUpload(s.Profile.Name)}, nil
		}
		return m.underwrite(ctx, s)
	}

	if extract.IsNegative(utterance) {
		if s.RepeatPrompts == 0 {
			s.RepeatPrompts++
			return &Result{Reply: replyTermsPersuade()}, nil
		}
		s.Transition(models.StageCompleted)
		return &Result{Reply: replyPoliteClose(s.Profile.Name)}, nil
	}

	return m.reprompt(s, "", replyTerms(s.Profile, s.Request)), nil
}

func (m *Machine) handleKYCUpload(ctx context.Context, s *models.SessionContext, utterance string) (*Result, error) {
	if extract.IsAffirmative(utterance) {
		if s.Profile.Seeded {
			p, err := m.profiles.VerifyKYC(s.Profile.Name)
			if err != nil {
				return nil, err
			}
			s.Profile = p
		} else {
			s.Profile.KYCVerified = true
		}
		return m.underwrite(ctx, s)
	}

	if extract.IsNegative(utterance) {
		// application parked as a draft; nothing is underwritten
		s.Transition(models.StageCompleted)
		return &Result{Reply: replyDraftSaved(s.Profile.Name)}, nil
	}

	return m.reprompt(s, "", replyAskKYCUpload(s.Profile.Name)), nil
}

func (m *Machine) handleConditionalDocs(s *models.SessionContext, utterance string) (*Result, error) {
	if extract.IsAffirmative(utterance) {
		s.Transition(models.StageSanction)
		return &Result{Reply: replyOfferLetter(s.Profile, s.Decision)}, nil
	}

	if extract.IsNegative(utterance) {
		s.Decision.ValidityNote = "Offer valid for 30 days"
		s.Transition(models.StageCompleted)
		return &Result{Reply: replyOfferParked(s.Profile.Name, s.Decision)}, nil
	}

	return m.reprompt(s, "", replyConditionalOffer(s.Profile, s.Decision)), nil
}

func (m *Machine) handleSanction(ctx context.Context, s *models.SessionContext, utterance string) (*Result, error) {
	if extract.IsAffirmative(utterance) {
		if m.renderer == nil {
			s.Transition(models.StageCompleted)
			return &Result{Reply: replyClosingNoLetter(s.Profile.Name)}, nil
		}

		path, err := m.renderer.Render(ctx, s.ID, s.Profile, s.Decision)
		if err != nil {
			metrics.CollaboratorFailures.WithLabelValues("renderer").Inc()
			m.log.WithError(err).Warn("Sanction letter render failed", map[string]interface{}{
				"sessionId": s.ID,
			})
			// stay in sanction so the applicant can retry
			return &Result{Reply: replyLetterFailed()}, nil
		}

		s.Transition(models.StageCompleted)
		return &Result{Reply: replyLetterReady(s.Profile.Name, path)}, nil
	}

	if extract.IsNegative(utterance) {
		s.Transition(models.StageCompleted)
		return &Result{Reply: replyClosingNoLetter(s.Profile.Name)}, nil
	}

	return m.reprompt(s, "", replyOfferLetter(s.Profile, s.Decision)), nil
}

// ==========================
// 4. Underwriting Turn
// ==========================

// underwrite runs the decision exactly once for the submitted request and
// routes the session onward in the same turn.
func (m *Machine) underwrite(ctx context.Context, s *models.SessionContext) (*Result, error) {
	s.Transition(models.StageUnderwriting)

	if s.Decision == nil {
		d, err := m.engine.Assess(s.Profile, s.Request.Amount, s.Request.TenureMonths)
		if err != nil {
			return nil, err
		}
		s.Decision = d

		m.record(ctx, s)
		if m.notifier != nil {
			m.notifier.DecisionIssued(ctx, s.Profile, d)
		}
	}

	switch s.Decision.Status {
	case models.StatusApproved:
		s.Transition(models.StageSanction)
		if s.Decision.AmountReduced() {
			return &Result{Reply: replyReducedApproval(s.Profile, s.Decision)}, nil
		}
		return &Result{Reply: replyApproved(s.Profile, s.Decision)}, nil
	case models.StatusConditional:
		s.Transition(models.StageConditionalDocs)
		return &Result{Reply: replyConditionalOffer(s.Profile, s.Decision)}, nil
	default:
		s.Transition(models.StageCompleted)
		return &Result{Reply: replyRejected(s.Profile, s.Decision)}, nil
	}
}

// record appends the decision to the ledger. A write failure degrades to a
// log line so the applicant still gets their answer.
func (m *Machine) record(ctx context.Context, s *models.SessionContext) {
	if m.ledger == nil {
		return
	}

	d := s.Decision
	rec := &models.ApplicationRecord{
		ID:               uuid.NewString(),
		Timestamp:        d.CreatedAt,
		Name:             s.Profile.Name,
		Age:              s.Profile.Age,
		City:             s.Profile.City,
		Amount:           d.ApprovedAmount,
		TenureMonths:     d.TenureMonths,
		Rate:             d.Rate,
		CreditScore:      s.Profile.CreditScore,
		PreApprovedLimit: s.Profile.PreApprovedLimit,
		Salary:           s.Profile.MonthlySalary,
		Status:           string(d.Status),
		Confidence:       d.Confidence,
	}
	if d.Status == models.StatusRejected {
		rec.Amount = d.RequestedAmount
	}

	if err := m.ledger.Append(ctx, rec); err != nil {
		metrics.CollaboratorFailures.WithLabelValues("ledger").Inc()
		m.log.WithError(err).Error("Ledger append failed", map[string]interface{}{
			"sessionId": s.ID,
			"applicant": s.Profile.Name,
		})
	}
}

// ==========================
// 5. Helpers
// ==========================

// capturePurpose stores a purpose mentioned anywhere in the utterance.
func (m *Machine) capturePurpose(s *models.SessionContext, utterance string) bool {
	purpose, ok := m.extractor.Purpose(utterance)
	if !ok {
		return false
	}
	if s.Request == nil {
		s.Request = &models.LoanRequest{}
	}
	s.Request.Purpose = models.LoanPurpose(purpose)
	return true
}

// reprompt counts the miss and serves an escalating prompt for the stage.
func (m *Machine) reprompt(s *models.SessionContext, kind extract.Kind, reply string) *Result {
	s.RepeatPrompts++
	if kind != "" {
		metrics.ExtractionMisses.WithLabelValues(string(kind)).Inc()
	}
	return &Result{Reply: reply}
}
