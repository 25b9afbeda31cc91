// Package handshake drives an OAuth consent flow to a single outcome by racing
// several redundant completion channels.
package handshake

import (
	"context"
	"errors"
	"sync"
	"time"

	"clip-and-ship/domain/model"
	"clip-and-ship/infrastructure/logger"
)

// DefaultTimeout bounds a whole consent flow.
const DefaultTimeout = 45 * time.Minute

// Channel is one way of learning the outcome of a flow. Listen blocks until ctx
// is done, calling deliver for every outcome it observes.
type Channel interface {
	Name() string
	Listen(ctx context.Context, sessionID string, deliver func(model.OAuthOutcome)) error
}

// Window is an opened consent page.
type Window interface {
	// Closed is closed when the user dismissed the window. A nil channel means
	// closing cannot be observed.
	Closed() <-chan struct{}
	Close() error
}

// Launcher opens the consent page.
type Launcher interface {
	Open(ctx context.Context, url string) (Window, error)
}

// Result is a successful handshake.
type Result struct {
	Outcome model.OAuthOutcome
	Channel string
}

type Coordinator struct {
	channels   []Channel
	launcher   Launcher
	timeout    time.Duration
	closeGrace time.Duration
}

type Option func(*Coordinator)

func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLauncher(l Launcher) Option {
	return func(c *Coordinator) { c.launcher = l }
}

// WithCloseGrace sets how long a closed window waits for a late outcome before
// the flow is reported as cancelled.
func WithCloseGrace(d time.Duration) Option {
	return func(c *Coordinator) { c.closeGrace = d }
}

func NewCoordinator(channels []Channel, opts ...Option) *Coordinator {
	c := &Coordinator{channels: channels, timeout: DefaultTimeout, closeGrace: 2 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run opens the consent page and waits for the first outcome.
func (c *Coordinator) Run(ctx context.Context, authURL, sessionID string) (*Result, error) {
	if c.launcher == nil {
		return nil, &Error{Kind: KindPopupBlocked, Message: "no launcher configured"}
	}
	win, err := c.launcher.Open(ctx, authURL)
	if err != nil || win == nil {
		logger.GetLogger().WithField("error", err).Warn("Unable to open consent window")
		return nil, &Error{Kind: KindPopupBlocked, Message: msgPopupBlocked}
	}
	defer func() {
		if err := win.Close(); err != nil {
			logger.GetLogger().WithField("error", err).Debug("Consent window close failed")
		}
	}()
	return c.race(ctx, sessionID, win)
}

// Wait waits for the first outcome of a flow whose page was opened elsewhere.
func (c *Coordinator) Wait(ctx context.Context, sessionID string) (*Result, error) {
	return c.race(ctx, sessionID, nil)
}

type resolution struct {
	result *Result
	err    error
}

func (c *Coordinator) race(parent context.Context, sessionID string, win Window) (*Result, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	var once sync.Once
	done := make(chan resolution, 1)
	resolve := func(r resolution) {
		once.Do(func() {
			done <- r
			cancel()
		})
	}

	var wg sync.WaitGroup
	for _, ch := range c.channels {
		ch := ch
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ch.Listen(ctx, sessionID, func(out model.OAuthOutcome) {
				if out.SessionID != "" && out.SessionID != sessionID {
					return
				}
				if out.Success {
					resolve(resolution{result: &Result{Outcome: out, Channel: ch.Name()}})
					return
				}
				resolve(resolution{err: &Error{Kind: KindProvider, Message: out.Error}})
			})
			if err != nil && ctx.Err() == nil {
				logger.GetLogger().WithField("channel", ch.Name()).WithField("error", err).Warn("Handshake channel stopped")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		switch {
		case parent.Err() != nil:
			resolve(resolution{err: &Error{Kind: KindCancelled, Message: msgCancelled}})
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			resolve(resolution{err: &Error{Kind: KindTimeout, Message: msgTimeout}})
		}
	}()

	if win != nil && win.Closed() != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case <-win.Closed():
			}
			grace := time.NewTimer(c.closeGrace)
			defer grace.Stop()
			select {
			case <-ctx.Done():
			case <-grace.C:
				resolve(resolution{err: &Error{Kind: KindCancelled, Message: msgCancelled}})
			}
		}()
	}

	r := <-done
	wg.Wait()
	if r.err != nil {
		logger.GetLogger().WithField("session_id", sessionID).WithField("error", r.err).Info("Handshake finished without success")
		return nil, r.err
	}
	logger.GetLogger().WithField("session_id", sessionID).WithField("channel", r.result.Channel).Info("Handshake completed")
	return r.result, nil
}
