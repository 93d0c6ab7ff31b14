package setup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/Jacobbrewer1/broker/pkg/logging"
	"github.com/Jacobbrewer1/broker/pkg/messages"
)

// Timeout is how long the dialogue waits for each answer.
const Timeout = 120 * time.Second

const cancelWord = "cancel"

// OutcomeKind is the transition a message caused.
type OutcomeKind int

const (
	// OutcomeIgnored means the message does not belong to a dialogue.
	OutcomeIgnored OutcomeKind = iota

	// OutcomePrompt means a question was asked.
	OutcomePrompt

	// OutcomeReprompt means the answer was rejected and the question asked again.
	OutcomeReprompt

	// OutcomeCancelled means the user cancelled.
	OutcomeCancelled

	// OutcomeTimedOut means the user did not answer in time.
	OutcomeTimedOut

	// OutcomeCompleted means every field was committed.
	OutcomeCompleted

	// OutcomeFailed means a field could not be committed and the dialogue was dropped.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeIgnored:
		return "ignored"
	case OutcomePrompt:
		return "prompt"
	case OutcomeReprompt:
		return "reprompt"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of advancing a dialogue.
type Outcome struct {
	Kind OutcomeKind

	// ChannelID is where Reply should be sent.
	ChannelID string

	// Reply is the text to send, empty for OutcomeIgnored.
	Reply string

	// Err is set for OutcomeFailed.
	Err error
}

// Dialogue is the state of one running setup: the field being awaited and
// the deadline for the answer.
type Dialogue struct {
	GuildID   string
	ChannelID string
	UserID    string

	// Step is the index of the awaited field.
	Step int

	// Deadline is when the awaited answer times out.
	Deadline time.Time
}

// Field returns the awaited field.
func (d *Dialogue) Field() Field {
	return steps[d.Step].field
}

func (d *Dialogue) prompt() string {
	return fmt.Sprintf(messages.SetupPromptTemplate, d.Step+1, len(steps), steps[d.Step].prompt)
}

type dialogueKey struct {
	channelID string
	userID    string
}

// Engine runs setup dialogues. Each (channel, user) pair has at most one
// dialogue; dialogues in different channels are independent.
type Engine struct {
	l      *slog.Logger
	store  *dataaccess.Store
	prefix string

	mu        sync.Mutex
	dialogues map[dialogueKey]*Dialogue
}

// NewEngine creates a setup engine committing answers to store.
func NewEngine(l *slog.Logger, store *dataaccess.Store, prefix string) *Engine {
	return &Engine{
		l:         l.With(slog.String(logging.KeyComponent, "setup")),
		store:     store,
		prefix:    prefix,
		dialogues: make(map[dialogueKey]*Dialogue),
	}
}

// Start begins a dialogue, replacing any running one for the same user and
// channel, and returns the first prompt.
func (e *Engine) Start(guildID, channelID, userID string, now time.Time) Outcome {
	d := &Dialogue{
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		Deadline:  now.Add(Timeout),
	}

	e.mu.Lock()
	e.dialogues[dialogueKey{channelID: channelID, userID: userID}] = d
	e.mu.Unlock()

	e.l.Debug("Setup started",
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyChannelID, channelID),
		slog.String(logging.KeyUserID, userID),
	)

	return Outcome{
		Kind:      OutcomePrompt,
		ChannelID: channelID,
		Reply:     d.prompt(),
	}
}

// Active reports whether a dialogue is waiting on userID in channelID.
func (e *Engine) Active(channelID, userID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.dialogues[dialogueKey{channelID: channelID, userID: userID}]
	return ok
}

// Handle advances the dialogue owned by userID in channelID with content.
func (e *Engine) Handle(ctx context.Context, channelID, userID, content string, now time.Time) Outcome {
	key := dialogueKey{channelID: channelID, userID: userID}

	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.dialogues[key]
	if !ok {
		return Outcome{Kind: OutcomeIgnored}
	}

	if now.After(d.Deadline) {
		delete(e.dialogues, key)
		return e.timedOut(d)
	}

	if strings.EqualFold(strings.TrimSpace(content), cancelWord) {
		delete(e.dialogues, key)
		e.l.Debug("Setup cancelled", slog.String(logging.KeyGuildID, d.GuildID), slog.String("field", d.Field().String()))
		return Outcome{
			Kind:      OutcomeCancelled,
			ChannelID: channelID,
			Reply:     messages.SetupCancelled,
		}
	}

	st := steps[d.Step]
	value, err := st.parse(content)
	if err != nil {
		d.Deadline = now.Add(Timeout)
		return Outcome{
			Kind:      OutcomeReprompt,
			ChannelID: channelID,
			Reply:     messages.SetupInvalidLink + "\n" + d.prompt(),
		}
	}

	err = e.store.Update(ctx, func(doc *entities.Document) error {
		st.field.set(&doc.Guild(d.GuildID).Setup, value)
		return nil
	})
	if err != nil {
		delete(e.dialogues, key)
		e.l.Error("Error committing setup field",
			slog.String(logging.KeyGuildID, d.GuildID),
			slog.String("field", st.field.String()),
			slog.String(logging.KeyError, err.Error()),
		)
		return Outcome{
			Kind:      OutcomeFailed,
			ChannelID: channelID,
			Reply:     messages.ErrUserErrorProcessing,
			Err:       err,
		}
	}

	d.Step++
	if d.Step >= len(steps) {
		delete(e.dialogues, key)
		e.l.Info("Setup completed", slog.String(logging.KeyGuildID, d.GuildID), slog.String(logging.KeyUserID, userID))
		return Outcome{
			Kind:      OutcomeCompleted,
			ChannelID: channelID,
			Reply:     fmt.Sprintf(messages.SetupComplete, e.prefix),
		}
	}

	d.Deadline = now.Add(Timeout)
	return Outcome{
		Kind:      OutcomePrompt,
		ChannelID: channelID,
		Reply:     d.prompt(),
	}
}

// Expire drops every dialogue whose deadline has passed and returns the
// timeout notices to send.
func (e *Engine) Expire(now time.Time) []Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Outcome
	for key, d := range e.dialogues {
		if now.After(d.Deadline) {
			delete(e.dialogues, key)
			out = append(out, e.timedOut(d))
		}
	}
	return out
}

// Run calls Expire every interval until ctx is done, passing each timeout
// notice to notify.
func (e *Engine) Run(ctx context.Context, interval time.Duration, notify func(Outcome)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, o := range e.Expire(now) {
				notify(o)
			}
		}
	}
}

func (e *Engine) timedOut(d *Dialogue) Outcome {
	e.l.Debug("Setup timed out", slog.String(logging.KeyGuildID, d.GuildID), slog.String("field", d.Field().String()))
	return Outcome{
		Kind:      OutcomeTimedOut,
		ChannelID: d.ChannelID,
		Reply:     messages.SetupTimeout,
	}
}
