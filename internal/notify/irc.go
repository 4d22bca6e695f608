// Package notify announces workflow milestones over IRC. The announcer
// is optional and strictly best-effort: delivery failures are logged,
// never propagated.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/lrstanley/girc"

	"github.com/officedhq/officed/internal/config"
	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/logging"
	"github.com/officedhq/officed/internal/office"
)

// Announcer posts workflow completions and warning-status alerts to a
// configured IRC channel. It implements office.Sink.
type Announcer struct {
	cfg    config.IRCNotify
	client *girc.Client
	log    *logging.Logger

	mu        sync.RWMutex
	connected bool
}

// New creates an announcer from configuration.
func New(cfg config.IRCNotify, log *logging.Logger) *Announcer {
	return &Announcer{cfg: cfg, log: log.Sub("notify.irc")}
}

// Start connects to the IRC server and blocks until the context is
// cancelled or the connection drops.
func (a *Announcer) Start(ctx context.Context) error {
	port := a.cfg.Port
	if port == 0 {
		if a.cfg.UseTLS {
			port = 6697
		} else {
			port = 6667
		}
	}

	gircCfg := girc.Config{
		Server:  a.cfg.Server,
		Port:    port,
		Nick:    a.cfg.Nick,
		User:    a.cfg.Nick,
		Name:    "officed announcer",
		SSL:     a.cfg.UseTLS,
		Version: "officed/1.0",
	}
	if a.cfg.UseTLS {
		gircCfg.TLSConfig = &tls.Config{ServerName: a.cfg.Server}
	}
	if a.cfg.Password != "" {
		gircCfg.ServerPass = a.cfg.Password
	}

	a.client = girc.New(gircCfg)

	a.client.Handlers.Add(girc.CONNECTED, func(c *girc.Client, _ girc.Event) {
		c.Cmd.Join(a.cfg.Channel)
		a.mu.Lock()
		a.connected = true
		a.mu.Unlock()
		a.log.Info().Str("server", a.cfg.Server).Str("channel", a.cfg.Channel).Msg("announcer connected")
	})

	// Connect blocks; run it and race against ctx.
	errCh := make(chan error, 1)
	go func() { errCh <- a.client.Connect() }()

	select {
	case <-ctx.Done():
		a.client.Close()
		<-errCh
		return nil
	case err := <-errCh:
		a.mu.Lock()
		a.connected = false
		a.mu.Unlock()
		if err != nil {
			return fmt.Errorf("irc connection: %w", err)
		}
		return nil
	}
}

// Connected reports whether the announcer has an active connection.
func (a *Announcer) Connected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected
}

// Publish filters office events down to the announceable ones.
func (a *Announcer) Publish(ev office.Event) {
	switch ev.Type {
	case office.EventWorkflowCompleted:
		report, ok := ev.Payload.(*domain.Report)
		if !ok {
			return
		}
		a.say(fmt.Sprintf("workflow complete on thread %s: %s", ev.ThreadID, truncate(report.Task, 120)))

	case office.EventGovernanceAlert:
		alert, ok := ev.Payload.(*domain.GovernanceAlert)
		if !ok || alert.Status != domain.AlertStatusWarning {
			return
		}
		a.say(fmt.Sprintf("governance warning [%s] on thread %s: %s", alert.Source, ev.ThreadID, truncate(alert.Message, 200)))
	}
}

func (a *Announcer) say(text string) {
	a.mu.RLock()
	connected := a.connected
	a.mu.RUnlock()
	if !connected {
		a.log.Debug().Msg("announcer not connected, dropping announcement")
		return
	}
	a.client.Cmd.Message(a.cfg.Channel, text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
