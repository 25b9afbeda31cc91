// Command connect links a YouTube channel from the terminal. It starts the
// consent flow, opens the consent page in the system browser and waits for
// the first completion channel to report an outcome.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clip-and-ship/infrastructure/cache"
	"clip-and-ship/infrastructure/handshake"

	"github.com/pkg/browser"
	flag "github.com/spf13/pflag"
)

var errNoChannels = errors.New("no completion channel available: pass --token or a reachable --redis")

type options struct {
	api       string
	token     string
	demo      bool
	timeout   time.Duration
	poll      time.Duration
	redisAddr string
	redisPass string
	noBrowser bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	fs.StringVar(&opts.api, "api", envOr("CLIPSHIP_API_URL", "http://localhost:10001"), "base URL of the API")
	fs.StringVar(&opts.token, "token", os.Getenv("CLIPSHIP_TOKEN"), "user access token (JWT)")
	fs.BoolVar(&opts.demo, "demo", false, "connect the demo identity")
	fs.DurationVar(&opts.timeout, "timeout", handshake.DefaultTimeout, "give up after this long")
	fs.DurationVar(&opts.poll, "poll", 2*time.Second, "status poll interval")
	fs.StringVar(&opts.redisAddr, "redis", "", "redis address for broadcast and storage channels")
	fs.StringVar(&opts.redisPass, "redis-password", os.Getenv("REDIS_PASSWORD"), "redis password")
	fs.BoolVar(&opts.noBrowser, "no-browser", false, "print the consent URL instead of opening it")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.token == "" {
		if !opts.demo {
			return nil, errors.New("--token or CLIPSHIP_TOKEN is required unless --demo is set")
		}
		if opts.redisAddr == "" {
			return nil, errors.New("--demo without --token needs --redis to observe completion")
		}
	}
	return opts, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// browserWindow is a consent page opened in the system browser. Its closing
// cannot be observed.
type browserWindow struct{}

func (browserWindow) Closed() <-chan struct{} { return nil }
func (browserWindow) Close() error { return nil }

type browserLauncher struct {
	open func(url string) error
}

func (l browserLauncher) Open(ctx context.Context, url string) (handshake.Window, error) {
	if err := l.open(url); err != nil {
		return nil, err
	}
	return browserWindow{}, nil
}

func printURL(url string) error {
	fmt.Printf("Open this URL to connect your channel:\n\n  %s\n\n", url)
	return nil
}

func run(ctx context.Context, opts *options) error {
	api := newAPIClient(opts.api, opts.token)

	setup, err := api.Setup(ctx, opts.demo)
	if err != nil {
		return fmt.Errorf("start consent flow: %w", err)
	}

	// The stream, status and wait endpoints all require a user token.
	var channels []handshake.Channel
	if api.token != "" {
		channels = append(channels,
			handshake.NewSSEChannel(nil, api.base+"/api/stream", api.headers()),
			handshake.NewPollChannel(api.Status, opts.poll),
			&waitChannel{api: api, timeout: 30 * time.Second},
		)
	}
	if opts.redisAddr != "" {
		client, err := cache.NewCache(ctx, opts.redisAddr, "", opts.redisPass, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis unavailable, continuing without it: %v\n", err)
		} else {
			defer client.Close()
			store := cache.NewStore(client)
			channels = append(channels,
				handshake.NewBroadcastChannel(store),
				handshake.NewStorageChannel(store, time.Second),
			)
		}
	}

	if len(channels) == 0 {
		return errNoChannels
	}

	open := browser.OpenURL
	if opts.noBrowser {
		open = printURL
	}
	coordinator := handshake.NewCoordinator(channels,
		handshake.WithLauncher(browserLauncher{open: open}),
		handshake.WithTimeout(opts.timeout),
	)

	fmt.Printf("Waiting for YouTube authorization (session %s)...\n", setup.SessionID)
	res, err := coordinator.Run(ctx, setup.AuthURL, setup.SessionID)
	if err != nil {
		return err
	}
	name := res.Outcome.ChannelName
	if name == "" {
		name = "your channel"
	}
	fmt.Printf("Connected %s (via %s)\n", name, res.Channel)
	return nil
}

func exitCode(err error) int {
	var herr *handshake.Error
	if !errors.As(err, &herr) {
		return 1
	}
	switch herr.Kind {
	case handshake.KindTimeout:
		return 3
	case handshake.KindCancelled:
		return 4
	case handshake.KindPopupBlocked:
		return 5
	default:
		return 2
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(64)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "YouTube connection failed: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}
