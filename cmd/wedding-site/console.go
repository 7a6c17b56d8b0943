package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"wedding-site/internal/gallery"
	"wedding-site/internal/gate"
	"wedding-site/internal/models"
)

// console is the operator menu on stdin. Gallery pages load in the
// background; a page that arrives after a newer request is dropped.
type console struct {
	in        *bufio.Scanner
	out       io.Writer
	gate      *gate.Gate
	gallery   *gallery.Service
	publicURL string
	maxGuests int
	stop      func()

	mu sync.Mutex
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) prompt(label string) (string, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *console) run(ctx context.Context) {
	for {
		c.printf("\nCommands:\n")
		c.printf("  1. Check invitation code\n")
		c.printf("  2. Browse guest gallery\n")
		c.printf("  3. Exit\n")

		command, ok := c.prompt("\nEnter command (1-3): ")
		if !ok {
			return
		}
		switch command {
		case "1":
			c.checkInvite(ctx)
		case "2":
			c.browseGallery(ctx)
		case "3":
			c.printf("Exiting...\n")
			if c.stop != nil {
				c.stop()
			}
			return
		default:
			c.printf("Invalid command. Please try again.\n")
		}
	}
}

func (c *console) checkInvite(ctx context.Context) {
	code, ok := c.prompt("Enter invitation code: ")
	if !ok {
		return
	}

	res := c.gate.Check(ctx, code)
	if !res.ShowRSVP() {
		c.printf("❌ %q cannot RSVP: %v\n", code, res.Err)
		return
	}
	c.printf("✅ %q is %s and accepts up to %d guests\n", code, *res.Status, res.Link.MaxGuests(c.maxGuests))
	if link := c.link("rsvp", code); link != "" {
		c.printf("RSVP link: %s\n", link)
	}
}

func (c *console) browseGallery(ctx context.Context) {
	code, ok := c.prompt("Enter guest code: ")
	if !ok || code == "" {
		return
	}

	tracker := gallery.NewTracker(c.gallery)
	defer tracker.Stop()

	page := 1
	first := make(chan struct{})
	tracker.Fetch(ctx, code, page, func(v gallery.View, current bool) {
		if current {
			c.printPage(v)
		}
		close(first)
	})
	<-first
	if v, _ := tracker.Current(); v.Redirect() {
		return
	}

	for {
		choice, ok := c.prompt("[n]ext, [p]revious, [q]uit: ")
		if !ok {
			return
		}
		switch strings.ToLower(choice) {
		case "n":
			if v, loaded := tracker.Current(); loaded && v.Pager.Page == page && !v.HasMore {
				c.printf("No more pages.\n")
				continue
			}
			page++
		case "p":
			if page == 1 {
				c.printf("Already on the first page.\n")
				continue
			}
			page--
		case "q", "":
			return
		default:
			c.printf("Invalid choice.\n")
			continue
		}
		c.printf("Loading page %d...\n", page)
		tracker.Fetch(ctx, code, page, func(v gallery.View, current bool) {
			if current {
				c.printPage(v)
			}
		})
	}
}

func (c *console) printPage(v gallery.View) {
	if v.Redirect() {
		c.printf("❌ Guest %q could not be loaded: %v\n", v.Code, v.GuestErr)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\n📷 %s, page %d\n", v.Guest.DisplayName(), v.Pager.Page)
	fmt.Fprintln(c.out, strings.Repeat("-", 60))
	if v.MediaErr != nil {
		fmt.Fprintf(c.out, "Gallery unavailable: %v\n", v.MediaErr)
		return
	}
	printPhotos(c.out, "General", v.General)
	printPhotos(c.out, "Personal", v.Personal)
	if v.HasMore {
		fmt.Fprintln(c.out, "More photos may follow.")
	}
}

func printPhotos(out io.Writer, label string, photos []models.GalleryPhoto) {
	fmt.Fprintf(out, "%s (%d):\n", label, len(photos))
	for _, p := range photos {
		fmt.Fprintf(out, "  %s\n", p.URL)
	}
}

// link builds an absolute site URL for code when PUBLIC_URL is set.
func (c *console) link(section, code string) string {
	if c.publicURL == "" {
		return ""
	}
	return strings.TrimRight(c.publicURL, "/") + "/" + section + "/" + url.PathEscape(code)
}
