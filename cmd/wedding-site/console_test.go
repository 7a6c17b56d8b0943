package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"wedding-site/internal/api"
	"wedding-site/internal/api/apitest"
	"wedding-site/internal/gallery"
	"wedding-site/internal/gate"
	"wedding-site/internal/models"
)

func runConsole(t *testing.T, srv *apitest.Server, input string) (string, bool) {
	t.Helper()
	client := api.NewWithDoer(srv.URL, srv.Client())
	var out bytes.Buffer
	stopped := false
	c := &console{
		in:        bufio.NewScanner(strings.NewReader(input)),
		out:       &out,
		gate:      gate.New(client, zerolog.Nop()),
		gallery:   gallery.NewService(client, 3, zerolog.Nop()),
		publicURL: "https://site.example.com/",
		maxGuests: 1,
		stop:      func() { stopped = true },
	}
	c.run(context.Background())
	return out.String(), stopped
}

func TestConsoleCheckInvite(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddLink(models.InvitationLink{ID: "l1", Code: "abc123", Status: models.LinkUnused, GuestPerEntry: 2})
	srv.AddLink(models.InvitationLink{ID: "l2", Code: "old", Status: models.LinkUsed, GuestPerEntry: 2})

	out, stopped := runConsole(t, srv, "1\nabc123\n1\nold\n3\n")
	assert.Contains(t, out, `✅ "abc123" is UNUSED and accepts up to 2 guests`)
	assert.Contains(t, out, "RSVP link: https://site.example.com/rsvp/abc123")
	assert.Contains(t, out, `❌ "old" cannot RSVP`)
	assert.Contains(t, out, "Exiting...")
	assert.True(t, stopped)
}

func TestConsoleBrowseGallery(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddGuest("abc", models.Guest{Title: "Mr", FirstName: "Ada", LastName: "Okafor",
		Link: models.GuestLink{InvitationCardURL: "https://cdn.example.com/card.jpg", GuestURL: "https://site.example.com/guest/abc"}})
	srv.SetPhotos("abc", []models.GalleryPhoto{
		{ID: "p1", URL: "https://cdn.example.com/p1.jpg", IsGeneral: true},
		{ID: "p2", URL: "https://cdn.example.com/p2.jpg"},
	})

	out, stopped := runConsole(t, srv, "2\nabc\np\nn\nq\n")
	assert.Contains(t, out, "📷 Mr Ada Okafor, page 1")
	assert.Contains(t, out, "General (1):\n  https://cdn.example.com/p1.jpg")
	assert.Contains(t, out, "Personal (1):\n  https://cdn.example.com/p2.jpg")
	assert.Contains(t, out, "Already on the first page.")
	assert.Contains(t, out, "No more pages.")
	assert.NotContains(t, out, "Loading page")
	assert.False(t, stopped)
}

func TestConsoleBrowseUnknownGuest(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	out, _ := runConsole(t, srv, "2\nnobody\n")
	assert.Contains(t, out, `❌ Guest "nobody" could not be loaded`)
	assert.NotContains(t, out, "[n]ext")
}

func TestConsoleRejectsUnknownCommand(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	out, _ := runConsole(t, srv, "9\n")
	assert.Contains(t, out, "Invalid command. Please try again.")
}
