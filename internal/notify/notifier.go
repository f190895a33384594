// Package notify keeps scheduled watering reminders in line with the plant
// list and delivers them through a pluggable channel. Delivery is best
// effort: a failed reminder never affects the plant list itself.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
)

type Notifier interface {
	// Enabled reports whether this notifier can actually deliver anything.
	Enabled() bool
	Send(ctx context.Context, title, message string) error
}

// ShoutrrrNotifier delivers through one or more shoutrrr service URLs.
type ShoutrrrNotifier struct {
	sender *router.ServiceRouter
}

func NewShoutrrrNotifier(urls []string, timeout time.Duration) (*ShoutrrrNotifier, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one notification URL is required")
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("creating notification sender: %w", err)
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrNotifier{sender: sender}, nil
}

func (notifier *ShoutrrrNotifier) Enabled() bool {
	return true
}

func (notifier *ShoutrrrNotifier) Send(ctx context.Context, title, message string) error {
	params := types.Params{}
	params.SetTitle(title)

	for _, err := range notifier.sender.Send(message, &params) {
		if err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
	}
	return nil
}

// NoopNotifier is the stand-in for platforms with no delivery channel.
type NoopNotifier struct{}

func (NoopNotifier) Enabled() bool { return false }

func (NoopNotifier) Send(ctx context.Context, title, message string) error { return nil }
