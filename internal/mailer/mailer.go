// Package mailer emails guests their invitation links through Amazon SES.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"

	"wedding-site/internal/models"
)

// SESClient is the part of the SES v2 API the mailer calls.
type SESClient interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type Config struct {
	Region     string
	FromEmail  string
	FromName   string
	EventTitle string
}

// Mailer sends invitation emails
type Mailer struct {
	client SESClient
	cfg    Config
	log    zerolog.Logger
}

// New loads the default AWS configuration for cfg.Region. It returns nil
// when no sender address is configured, which leaves email delivery off.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Mailer, error) {
	log = log.With().Str("component", "mailer").Logger()
	if cfg.FromEmail == "" {
		log.Info().Msg("Email delivery disabled: SES_FROM_EMAIL not configured")
		return nil, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info().Str("from", cfg.FromEmail).Str("region", cfg.Region).Msg("Email delivery enabled")
	return NewWithClient(sesv2.NewFromConfig(awsCfg), cfg, log), nil
}

func NewWithClient(client SESClient, cfg Config, log zerolog.Logger) *Mailer {
	return &Mailer{client: client, cfg: cfg, log: log}
}

func (m *Mailer) Name() string { return "email" }

// Notify emails one guest their card and guest page links. Guests without an
// email address are skipped.
func (m *Mailer) Notify(ctx context.Context, invite models.SubmittedInvite) error {
	to := strings.TrimSpace(invite.Email)
	if to == "" {
		m.log.Debug().Str("guest", invite.ID).Msg("Skipping email: no address")
		return nil
	}

	msg := message{
		EventTitle: m.cfg.EventTitle,
		Name:       invite.DisplayName(),
		CardURL:    invite.Link.InvitationCardURL,
		GuestURL:   invite.Link.GuestURL,
	}
	subject := fmt.Sprintf("Your invitation to %s", m.cfg.EventTitle)
	htmlBody, textBody, err := msg.render()
	if err != nil {
		return err
	}
	return m.send(ctx, to, subject, htmlBody, textBody)
}

func (m *Mailer) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := m.cfg.FromEmail
	if m.cfg.FromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	ev := m.log.Info().Str("to", toEmail).Str("subject", subject)
	if result != nil && result.MessageId != nil {
		ev = ev.Str("message_id", *result.MessageId)
	}
	ev.Msg("Email sent")
	return nil
}

type message struct {
	EventTitle string
	Name       string
	CardURL    string
	GuestURL   string
}

var htmlTmpl = template.Must(template.New("html").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="text-align: center;">{{.EventTitle}}</h1>
		<p>Dear {{if .Name}}{{.Name}}{{else}}guest{{end}},</p>
		<p>Your RSVP is confirmed. We can't wait to celebrate with you!</p>
		<p><img src="{{.CardURL}}" alt="Invitation card" style="max-width: 100%;"></p>
		<p style="text-align: center;"><a href="{{.GuestURL}}">Open your guest page</a></p>
		<p style="word-break: break-all; font-size: 12px; color: #666;">{{.GuestURL}}</p>
	</div>
</body>
</html>
`))

var textTmpl = texttemplate.Must(texttemplate.New("text").Parse(`Dear {{if .Name}}{{.Name}}{{else}}guest{{end}},

Your RSVP for {{.EventTitle}} is confirmed.

Your invitation card: {{.CardURL}}
Your guest page: {{.GuestURL}}
`))

func (m message) render() (string, string, error) {
	var h, t bytes.Buffer
	if err := htmlTmpl.Execute(&h, m); err != nil {
		return "", "", fmt.Errorf("render html email: %w", err)
	}
	if err := textTmpl.Execute(&t, m); err != nil {
		return "", "", fmt.Errorf("render text email: %w", err)
	}
	return h.String(), t.String(), nil
}
