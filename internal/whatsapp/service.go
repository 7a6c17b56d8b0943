package whatsapp

import (
	"context"
	"fmt"
	"io"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

type Config struct {
	DataDir string
	// DialCode is assumed for local numbers that start with a trunk 0.
	DialCode string
}

// Service is a linked WhatsApp device used to send guests their links
type Service struct {
	client *whatsmeow.Client
	cfg    *Config
	log    zerolog.Logger
}

// NewService opens the device store under cfg.DataDir
func NewService(ctx context.Context, cfg *Config, log zerolog.Logger) (*Service, error) {
	logger := log.With().Str("component", "WhatsApp").Logger()

	// Use nil logger - sqlstore will use a no-op logger by default
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", cfg.DataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, nil)

	service := &Service{
		client: client,
		cfg:    cfg,
		log:    logger,
	}
	client.AddEventHandler(service.eventHandler)

	return service, nil
}

// NormalizePhoneNumber strips formatting and returns digits in international
// form. A leading trunk 0 is replaced by dialCode, and a trunk 0 kept after
// the country code ("+234-0801...") is dropped.
func NormalizePhoneNumber(phoneNumber, dialCode string) string {
	digits := onlyDigits(phoneNumber)
	cc := onlyDigits(dialCode)
	if cc == "" {
		return digits
	}

	// Local format: 0801... -> 234801...
	if strings.HasPrefix(digits, "0") && !strings.HasPrefix(phoneNumber, "+") {
		digits = cc + strings.TrimLeft(digits, "0")
	}

	// Country code followed by the trunk 0
	if strings.HasPrefix(digits, cc+"0") {
		digits = cc + digits[len(cc)+1:]
	}

	return digits
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Paired reports whether the device store already holds a login.
func (s *Service) Paired() bool {
	return s.client.Store.ID != nil
}

// Connect connects to WhatsApp, printing a pairing QR code to out when the
// device has never been linked.
func (s *Service) Connect(ctx context.Context, out io.Writer) error {
	if s.Paired() {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, _ := s.client.GetQRChannel(ctx)
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	for evt := range qrChan {
		if evt.Event != "code" {
			s.log.Info().Str("event", evt.Event).Msg("Login event")
			continue
		}
		q, err := qrcode.New(evt.Code, qrcode.Medium)
		if err != nil {
			fmt.Fprintf(out, "QR Code: %s\n", evt.Code)
			fmt.Fprintln(out, "Please scan this QR code with WhatsApp to connect.")
			continue
		}
		fmt.Fprintln(out, "\n"+q.ToSmallString(false))
		fmt.Fprintln(out, "📱 Please scan the QR code above with WhatsApp:")
		fmt.Fprintln(out, "   1. Open WhatsApp on your phone")
		fmt.Fprintln(out, "   2. Go to Settings > Linked Devices")
		fmt.Fprintln(out, "   3. Tap 'Link a Device'")
		fmt.Fprintln(out, "   4. Scan the QR code shown above")
	}
	return nil
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// SendMessage sends a text message to a number after checking it is on WhatsApp.
func (s *Service) SendMessage(ctx context.Context, phoneNumber, message string) error {
	phoneNumber = NormalizePhoneNumber(phoneNumber, s.cfg.DialCode)
	if phoneNumber == "" {
		return fmt.Errorf("empty phone number")
	}

	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phoneNumber})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phoneNumber)
	}

	// Use the verified JID from WhatsApp
	jid := resp[0].JID
	s.log.Debug().Str("jid", jid.String()).Str("phone", phoneNumber).Msg("Attempting to send message")

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &message,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", jid, err)
	}
	s.log.Info().Str("id", string(sent.ID)).Time("timestamp", sent.Timestamp).Str("jid", jid.String()).Msg("Message sent")
	return nil
}

func (s *Service) eventHandler(evt any) {
	switch evt := evt.(type) {
	case *events.Message:
		s.handleMessage(evt)
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Warn().Msg("Logged out from WhatsApp")
	}
}

// handleMessage logs guest replies so the couple can follow up by hand.
func (s *Service) handleMessage(msg *events.Message) {
	if msg.Info.IsFromMe || msg.Message == nil {
		return
	}
	if msg.Info.Chat.Server != types.DefaultUserServer {
		return
	}
	s.log.Info().
		Str("sender", msg.Info.Sender.User).
		Str("message", msg.Message.GetConversation()).
		Msg("Received message")
}
