package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/models"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func invite() models.SubmittedInvite {
	return models.SubmittedInvite{
		ID: "g1", FirstName: "Ada", LastName: "<Okafor>", Email: " ada@example.com ",
		Link: models.GuestLink{InvitationCardURL: "https://cdn.example.com/g1.jpg", GuestURL: "https://site.example.com/guest/g1"},
	}
}

func TestNewDisabledWithoutSender(t *testing.T) {
	m, err := New(context.Background(), Config{Region: "eu-west-1"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestNotifySendsEmail(t *testing.T) {
	ses := &fakeSES{}
	m := NewWithClient(ses, Config{FromEmail: "rsvp@example.com", FromName: "MJ", EventTitle: "MJ's 25th"}, zerolog.Nop())
	assert.Equal(t, "email", m.Name())

	require.NoError(t, m.Notify(context.Background(), invite()))
	require.Len(t, ses.inputs, 1)
	in := ses.inputs[0]
	assert.Equal(t, "MJ <rsvp@example.com>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"ada@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Your invitation to MJ's 25th", aws.ToString(in.Content.Simple.Subject.Data))

	html := aws.ToString(in.Content.Simple.Body.Html.Data)
	assert.Contains(t, html, "&lt;Okafor&gt;")
	assert.NotContains(t, html, "<Okafor>")
	assert.Contains(t, html, "https://site.example.com/guest/g1")

	text := aws.ToString(in.Content.Simple.Body.Text.Data)
	assert.Contains(t, text, "Dear Ada <Okafor>")
	assert.Contains(t, text, "https://cdn.example.com/g1.jpg")
}

func TestNotifySkipsMissingEmail(t *testing.T) {
	ses := &fakeSES{}
	m := NewWithClient(ses, Config{FromEmail: "rsvp@example.com"}, zerolog.Nop())
	inv := invite()
	inv.Email = ""
	require.NoError(t, m.Notify(context.Background(), inv))
	assert.Empty(t, ses.inputs)
}

func TestNotifyPropagatesSESError(t *testing.T) {
	ses := &fakeSES{err: errors.New("throttled")}
	m := NewWithClient(ses, Config{FromEmail: "rsvp@example.com"}, zerolog.Nop())
	err := m.Notify(context.Background(), invite())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ada@example.com")
}
