package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"wedding-site/internal/api"
	"wedding-site/internal/config"
	"wedding-site/internal/gallery"
	"wedding-site/internal/gate"
	"wedding-site/internal/handler"
	"wedding-site/internal/mailer"
	"wedding-site/internal/rsvp"
	"wedding-site/internal/storage"
	"wedding-site/internal/whatsapp"
)

func main() {
	fmt.Println("💍 Wedding Site")
	fmt.Println("===============")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("wedding site stopped")
	}
	fmt.Println("Goodbye! 👋")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if cfg.LogPretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	event, err := config.LoadEvent(cfg.EventFile)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, storage.Options{
		Driver:        cfg.StoreDriver,
		Path:          cfg.StorePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close store")
			}
		}()
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("visitor state ready")

	client := api.New(cfg.APIURL, cfg.APITimeout)

	var notifiers []rsvp.Notifier
	if cfg.WhatsAppEnabled {
		wa, err := connectWhatsApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer wa.Disconnect()
		notifiers = append(notifiers, whatsapp.NewNotifier(wa, event.Title))
	}
	mail, err := mailer.New(ctx, mailer.Config{
		Region:     cfg.AWSRegion,
		FromEmail:  cfg.SESFromEmail,
		FromName:   cfg.SESFromName,
		EventTitle: event.Title,
	}, log)
	if err != nil {
		return err
	}
	if mail != nil {
		notifiers = append(notifiers, mail)
	}

	dispatcher := rsvp.NewDispatcher(log, notifiers...)
	site, err := handler.New(client, store, dispatcher, nil, handler.Config{
		Event:            event,
		GalleryLimit:     cfg.GalleryLimit,
		DefaultDialCode:  cfg.DefaultDialCode,
		DefaultMaxGuests: cfg.DefaultMaxGuests,
		CookieSecure:     cfg.CookieSecure,
	}, log)
	if err != nil {
		return err
	}

	srv, cancelRequests := newServer(cfg.HTTPAddr, site)
	defer cancelRequests()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("event", event.Title).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if cfg.Console {
		c := &console{
			in:        bufio.NewScanner(os.Stdin),
			out:       os.Stdout,
			gate:      gate.New(client, log),
			gallery:   gallery.NewService(client, cfg.GalleryLimit, log),
			publicURL: cfg.PublicURL,
			maxGuests: cfg.DefaultMaxGuests,
			stop:      stop,
		}
		go c.run(ctx)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	fmt.Println("\n\nShutting down...")
	return shutdown(srv, cancelRequests, dispatcher, log)
}

var (
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 30 * time.Second
)

// newServer serves site with a request context that outlives the shutdown
// signal, so Shutdown can drain in-flight requests. cancel ends them; call it
// once Shutdown has returned. Countdown streams end on Shutdown.
func newServer(addr string, site *handler.Site) (*http.Server, context.CancelFunc) {
	requests, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           site.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// No WriteTimeout: /countdown streams for as long as the page is open.
		BaseContext: func(net.Listener) context.Context { return requests },
	}
	srv.RegisterOnShutdown(site.StopStreams)
	return srv, cancel
}

// shutdown drains in-flight requests, then the invite deliveries they
// started, before the notifiers are torn down.
func shutdown(srv *http.Server, cancelRequests context.CancelFunc, dispatcher *rsvp.Dispatcher, log zerolog.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	cancelRequests()

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout)
	defer cancelDrain()
	if err := dispatcher.Wait(drainCtx); err != nil {
		log.Warn().Err(err).Msg("invite deliveries still pending at shutdown")
	}

	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	return nil
}

func connectWhatsApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*whatsapp.Service, error) {
	if err := os.MkdirAll(cfg.WhatsAppDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create WhatsApp data dir: %w", err)
	}
	wa, err := whatsapp.NewService(ctx, &whatsapp.Config{
		DataDir:  cfg.WhatsAppDataDir,
		DialCode: cfg.DefaultDialCode,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize WhatsApp service: %w", err)
	}

	fmt.Println("Connecting to WhatsApp...")
	if err := wa.Connect(ctx, os.Stdout); err != nil {
		return nil, fmt.Errorf("failed to connect to WhatsApp: %w", err)
	}
	fmt.Println("✅ Connected to WhatsApp! Guests will receive their links there.")
	return wa, nil
}
