package office

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/officedhq/officed/internal/dispatch"
	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/logging"
	"github.com/officedhq/officed/internal/roster"
	"github.com/officedhq/officed/internal/store"
)

// Classifier turns a checker's free-text response into an alert status.
// It is pluggable so the vocabulary heuristic can later be replaced by a
// structured-output classifier without touching the watcher's scheduling.
type Classifier interface {
	Classify(text string) string // domain.AlertStatusOK | domain.AlertStatusWarning
}

// VocabularyClassifier flags responses containing risk-indicating terms.
// A heuristic, not a structured verdict.
type VocabularyClassifier struct {
	Terms []string
}

// DefaultClassifier returns the stock risk-vocabulary classifier.
func DefaultClassifier() *VocabularyClassifier {
	return &VocabularyClassifier{Terms: []string{
		"violation", "non-compliant", "noncompliant", "illegal", "lawsuit",
		"liability", "harassment", "discrimination", "breach", "risk of",
		"serious concern", "red flag", "warning",
	}}
}

func (c *VocabularyClassifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, term := range c.Terms {
		if strings.Contains(lower, term) {
			return domain.AlertStatusWarning
		}
	}
	return domain.AlertStatusOK
}

// WatcherConfig tunes the governance watcher.
type WatcherConfig struct {
	Cooldown       time.Duration
	DebounceActive time.Duration // while a workflow is running
	DebounceIdle   time.Duration
	RecentMessages int
	RecentTurns    int
}

// checker is one independent audit concern.
type checker struct {
	source   string // alert source tag
	agentID  string // roster agent issuing the audit call
	identity string // that agent's identity prompt
	concern  string // free-text concern description for the prompt
}

// threadAudit is the per-thread scheduling state.
type threadAudit struct {
	lastFingerprint string
	lastCompleted   time.Time
	inFlight        bool
	pending         *time.Timer
}

// Watcher audits recent cross-agent activity for legal and people-process
// concerns without re-auditing unchanged state or overlapping itself.
type Watcher struct {
	dispatcher *dispatch.Dispatcher
	feed       store.Feed
	cfg        WatcherConfig
	checkers   []checker
	classifier Classifier
	active     func(threadID string) bool // workflow-running probe
	publish    func(Event)
	log        *logging.Logger

	mu    sync.Mutex
	state map[string]*threadAudit
}

// NewWatcher creates a governance watcher. The legal and hr checker
// agents are resolved from the roster by id; a missing agent disables
// that checker.
func NewWatcher(d *dispatch.Dispatcher, ros *roster.Roster, feed store.Feed, cfg WatcherConfig, active func(string) bool, publish func(Event), log *logging.Logger) *Watcher {
	w := &Watcher{
		dispatcher: d,
		feed:       feed,
		cfg:        cfg,
		classifier: DefaultClassifier(),
		active:     active,
		publish:    publish,
		log:        log.Sub("governance"),
		state:      make(map[string]*threadAudit),
	}
	for _, c := range []checker{
		{source: domain.AlertSourceLegal, agentID: "legal", concern: "legal and regulatory compliance"},
		{source: domain.AlertSourceHR, agentID: "hr", concern: "people-process and workplace conduct"},
	} {
		if a, ok := ros.Get(c.agentID); ok {
			c.identity = a.Identity
			w.checkers = append(w.checkers, c)
		} else {
			w.log.Warn().Str("agent", c.agentID).Msg("checker agent not in roster, disabled")
		}
	}
	return w
}

// SetClassifier replaces the status classifier.
func (w *Watcher) SetClassifier(c Classifier) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.classifier = c
}

// Trigger schedules a debounced audit of the thread. The delay is
// shorter while a workflow is actively running. Repeated triggers reset
// the pending timer.
func (w *Watcher) Trigger(threadID string) {
	delay := w.cfg.DebounceIdle
	if w.active != nil && w.active(threadID) {
		delay = w.cfg.DebounceActive
	}

	w.mu.Lock()
	st := w.thread(threadID)
	if st.pending != nil {
		st.pending.Stop()
	}
	st.pending = time.AfterFunc(delay, func() {
		w.Audit(context.Background(), threadID)
	})
	w.mu.Unlock()
}

// Audit runs one audit pass now, subject to the single-flight flag, the
// cooldown, and the fingerprint dedup. Returns true when checkers ran.
func (w *Watcher) Audit(ctx context.Context, threadID string) bool {
	snapshot, fingerprint, err := w.snapshot(threadID)
	if err != nil {
		w.log.Warn().Err(err).Str("thread", threadID).Msg("snapshot failed, skipping audit")
		return false
	}

	w.mu.Lock()
	st := w.thread(threadID)
	switch {
	case st.inFlight:
		w.mu.Unlock()
		return false
	case fingerprint == st.lastFingerprint:
		w.mu.Unlock()
		return false
	case !st.lastCompleted.IsZero() && time.Since(st.lastCompleted) < w.cfg.Cooldown:
		w.mu.Unlock()
		return false
	}
	st.inFlight = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		st.inFlight = false
		st.lastCompleted = time.Now()
		st.lastFingerprint = fingerprint
		w.mu.Unlock()
	}()

	// Checkers are independent: a failure in one never cancels the other.
	var wg sync.WaitGroup
	for _, c := range w.checkers {
		wg.Add(1)
		go func(c checker) {
			defer wg.Done()
			w.runChecker(ctx, threadID, c, snapshot)
		}(c)
	}
	wg.Wait()
	return true
}

func (w *Watcher) runChecker(ctx context.Context, threadID string, c checker, snapshot string) {
	text, err := w.dispatcher.GenerateText(ctx, c.agentID, c.identity, auditInput(c.concern, snapshot), dispatch.Options{})

	alert := domain.GovernanceAlert{ThreadID: threadID, Source: c.source}
	if err != nil {
		alert.Status = domain.AlertStatusWarning
		alert.Message = fmt.Sprintf("audit call failed: %v", err)
	} else {
		w.mu.Lock()
		cls := w.classifier
		w.mu.Unlock()
		alert.Status = cls.Classify(text)
		alert.Message = text
	}

	saved, err := w.feed.AppendAlert(alert)
	if err != nil {
		w.log.Warn().Err(err).Str("source", c.source).Msg("failed to persist alert")
		saved = &alert
	}
	if w.publish != nil {
		w.publish(Event{Type: EventGovernanceAlert, ThreadID: threadID, Payload: saved})
	}
	w.log.Debug().Str("thread", threadID).Str("source", c.source).Str("status", alert.Status).Msg("audit complete")
}

// snapshot builds the bounded recent-activity window and its fingerprint.
// The fingerprint covers ids, senders, and timestamps of the included
// records, so identical windows never trigger a second audit.
func (w *Watcher) snapshot(threadID string) (text, fingerprint string, err error) {
	msgs, err := w.feed.RecentMessages(threadID, w.cfg.RecentMessages)
	if err != nil {
		return "", "", err
	}
	turns, err := w.feed.RecentTurns(threadID, w.cfg.RecentTurns)
	if err != nil {
		return "", "", err
	}

	var b, fp strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", m.SenderID, m.Body)
		fmt.Fprintf(&fp, "m|%s|%s|%d\n", m.ID, m.SenderID, m.Timestamp.Unix())
	}
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.SpeakerID, t.Text)
		fmt.Fprintf(&fp, "t|%s|%s|%d\n", t.ID, t.SpeakerID, t.Timestamp.Unix())
	}

	sum := sha256.Sum256([]byte(fp.String()))
	return b.String(), hex.EncodeToString(sum[:]), nil
}

// thread returns the per-thread state; callers must hold w.mu.
func (w *Watcher) thread(threadID string) *threadAudit {
	st, ok := w.state[threadID]
	if !ok {
		st = &threadAudit{}
		w.state[threadID] = st
	}
	return st
}
