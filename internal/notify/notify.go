// Package notify sends decision notifications over email and SMS. Delivery
// is fire and forget: the conversation never waits on a channel and a
// failed send only surfaces in logs and metrics.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/metrics"
	"loan-assistant/internal/common/validation"
	"loan-assistant/internal/models"
)

// EmailSender abstracts the SES call so tests can substitute a fake.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender abstracts the SNS call so tests can substitute a fake.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Dispatcher fans a decision notification out to the enabled channels.
type Dispatcher struct {
	email     EmailSender
	sms       SMSSender
	fromEmail string
	log       logger.Logger
}

func NewDispatcher(email EmailSender, sms SMSSender, fromEmail string, log logger.Logger) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, fromEmail: fromEmail, log: log}
}

// DecisionIssued notifies the applicant about their decision on every
// configured channel. Errors are logged, never returned.
func (d *Dispatcher) DecisionIssued(ctx context.Context, p *models.ApplicantProfile, dec *models.Decision) {
	subject, body := decisionMessage(p, dec)

	// synthesized profiles carry no email; the channel is skipped for them
	if d.email != nil && validation.ValidateEmail(p.Email) {
		input := &ses.SendEmailInput{
			Source: aws.String(d.fromEmail),
			Destination: &sestypes.Destination{
				ToAddresses: []string{p.Email},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		}
		if _, err := d.email.SendEmail(ctx, input); err != nil {
			metrics.CollaboratorFailures.WithLabelValues("email").Inc()
			d.log.WithError(err).Warn("Decision email failed", map[string]interface{}{
				"applicant": p.Name,
			})
		}
	}

	if d.sms != nil && validation.ValidatePhone(p.Phone) {
		input := &sns.PublishInput{
			PhoneNumber: aws.String(p.Phone),
			Message:     aws.String(body),
		}
		if _, err := d.sms.Publish(ctx, input); err != nil {
			metrics.CollaboratorFailures.WithLabelValues("sms").Inc()
			d.log.WithError(err).Warn("Decision SMS failed", map[string]interface{}{
				"applicant": p.Name,
			})
		}
	}
}

func decisionMessage(p *models.ApplicantProfile, dec *models.Decision) (subject, body string) {
	switch dec.Status {
	case models.StatusApproved:
		subject = "Your loan is approved"
		body = fmt.Sprintf(
			"Dear %s, your loan of Rs.%d for %d months at %.1f%% is approved. EMI: Rs.%.2f.",
			p.Name, dec.ApprovedAmount, dec.TenureMonths, dec.Rate, dec.EMI,
		)
	case models.StatusConditional:
		subject = "Your loan offer is ready"
		body = fmt.Sprintf(
			"Dear %s, we can offer Rs.%d for %d months at %.1f%% pending documents. EMI: Rs.%.2f.",
			p.Name, dec.ApprovedAmount, dec.TenureMonths, dec.Rate, dec.EMI,
		)
	default:
		subject = "Update on your loan application"
		body = fmt.Sprintf(
			"Dear %s, we are unable to approve your loan request of Rs.%d at this time.",
			p.Name, dec.RequestedAmount,
		)
	}
	return subject, body
}
