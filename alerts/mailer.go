package alerts

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog/log"
)

// Mailer sends operational alert emails through SES. A nil Mailer is valid
// and drops alerts to the log only, so tests and local runs need no AWS
// credentials.
type Mailer struct {
	client *ses.Client
	from   string
	to     string
}

// NewFromEnv builds a Mailer from AWS_REGION, ALERT_EMAIL_FROM and
// ALERT_EMAIL_TO. Returns nil (not an error) when alerting is unconfigured.
func NewFromEnv(ctx context.Context) (*Mailer, error) {
	from := os.Getenv("ALERT_EMAIL_FROM")
	to := os.Getenv("ALERT_EMAIL_TO")
	if from == "" || to == "" {
		return nil, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		return nil, fmt.Errorf("AWS config load failed: %w", err)
	}
	return &Mailer{
		client: ses.NewFromConfig(cfg),
		from:   from,
		to:     to,
	}, nil
}

func (m *Mailer) send(ctx context.Context, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{m.to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(m.from),
	}
	_, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

// ReconciliationFailure alerts on a confirmed payment that could not be
// durably recorded. The money has already moved, so this must never be
// silently dropped; the email backs up the error log for manual recovery.
func (m *Mailer) ReconciliationFailure(ctx context.Context, paymentRef, userID string, cause error) {
	subject := "Gruby: payment without durable order"
	body := fmt.Sprintf(
		"Payment %s for user %s was confirmed by the provider but the order could not be recorded.\n\nCause: %v\n\nRecover manually.",
		paymentRef, userID, cause,
	)
	if m == nil {
		log.Error().Str("payment_ref", paymentRef).Str("user_id", userID).Err(cause).
			Msg("reconciliation failure (alert mailer unconfigured)")
		return
	}
	if err := m.send(ctx, subject, body); err != nil {
		log.Error().Str("payment_ref", paymentRef).Err(err).Msg("reconciliation alert email failed")
	}
}
