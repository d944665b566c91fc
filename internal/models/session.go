package models

import "time"

// historyLimit bounds the per-session transcript kept in the context. Older
// exchanges are dropped oldest-first.
const historyLimit = 20

// Exchange is one applicant utterance with the reply that answered it.
type Exchange struct {
	Utterance string    `json:"utterance"`
	Response  string    `json:"response"`
	Stage     Stage     `json:"stage"`
	At        time.Time `json:"at"`
}

// SessionContext is the full mutable state of one conversation. It is the
// unit of persistence in the session store and the unit of locking in the
// session manager; the conversation machine is the only writer.
type SessionContext struct {
	ID    string `json:"id"`
	Stage Stage  `json:"stage"`

	Profile  *ApplicantProfile `json:"profile,omitempty"`
	Request  *LoanRequest      `json:"request,omitempty"`
	Decision *Decision         `json:"decision,omitempty"`

	// IsExisting marks a session whose applicant resolved against the seed
	// book. ProfileSynthesized marks a new-applicant profile that has been
	// generated; synthesis runs at most once per session.
	IsExisting         bool `json:"isExisting"`
	ProfileSynthesized bool `json:"profileSynthesized"`

	// Collected* hold self-reported facts gathered before a profile exists.
	CollectedSalary int64  `json:"collectedSalary,omitempty"`
	CollectedCity   string `json:"collectedCity,omitempty"`
	CollectedAge    int    `json:"collectedAge,omitempty"`

	// RepeatPrompts counts consecutive unparseable turns in the current
	// stage, used to escalate re-prompt wording. Reset on every transition.
	RepeatPrompts int `json:"repeatPrompts,omitempty"`

	History []Exchange `json:"history,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSessionContext returns a fresh session positioned at the greeting stage.
func NewSessionContext(id string) *SessionContext {
	now := time.Now().UTC()
	return &SessionContext{
		ID:        id,
		Stage:     StageGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Remember appends one exchange to the bounded history.
func (s *SessionContext) Remember(utterance, response string) {
	s.History = append(s.History, Exchange{
		Utterance: utterance,
		Response:  response,
		Stage:     s.Stage,
		At:        time.Now().UTC(),
	})
	if len(s.History) > historyLimit {
		s.History = s.History[len(s.History)-historyLimit:]
	}
}

// Transition moves the session to the given stage and resets the re-prompt
// counter.
func (s *SessionContext) Transition(to Stage) {
	s.Stage = to
	s.RepeatPrompts = 0
}
