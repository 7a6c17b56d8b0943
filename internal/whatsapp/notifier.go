package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"wedding-site/internal/models"
)

// Sender sends one text message to a phone number.
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// Notifier sends each newly registered guest their invitation links
type Notifier struct {
	sender     Sender
	eventTitle string
}

func NewNotifier(sender Sender, eventTitle string) *Notifier {
	return &Notifier{sender: sender, eventTitle: eventTitle}
}

func (n *Notifier) Name() string { return "whatsapp" }

func (n *Notifier) Notify(ctx context.Context, invite models.SubmittedInvite) error {
	if strings.TrimSpace(invite.Phone) == "" {
		return fmt.Errorf("guest %s has no phone number", invite.ID)
	}
	return n.sender.SendMessage(ctx, invite.Phone, InviteMessage(n.eventTitle, invite))
}

// InviteMessage is the text sent to a guest after their RSVP.
func InviteMessage(eventTitle string, invite models.SubmittedInvite) string {
	name := invite.DisplayName()
	if name == "" {
		name = "guest"
	}
	return fmt.Sprintf(
		"🎉 *%s*\n\n"+
			"Dear %s,\n\n"+
			"Your RSVP is confirmed. Here is your personal invitation card:\n%s\n\n"+
			"Your guest page, where photos from the day will appear:\n%s\n\n"+
			"Please keep this message, the link is unique to you.",
		eventTitle, name, invite.Link.InvitationCardURL, invite.Link.GuestURL,
	)
}
