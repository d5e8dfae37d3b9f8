// Package exchange runs one request/response cycle against the assistant
// backend and reconciles the reply into the conversation.
//
// Callers must not run two exchanges at once on the same conversation. The
// terminal UI guarantees this by refusing to submit until the previous Send
// has returned.
package exchange

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"assistui/backend"
	"assistui/config"
	"assistui/model"
)

// FallbackMessage is shown as an assistant message when an exchange fails.
const FallbackMessage = "Sorry, I encountered an error. Please make sure the backend server is running and try again."

// ErrEmptyInput is returned in the Outcome of a Send whose text was blank.
// It is never shown to the user.
var ErrEmptyInput = errors.New("empty input")

// Backend is the part of backend.Client the exchange needs.
type Backend interface {
	Chat(ctx context.Context, messages []model.Message) (string, error)
	OpenStream(ctx context.Context, messages []model.Message) (*backend.EventStream, error)
}

// Client sends user turns to the backend and applies replies to a
// conversation it does not own.
type Client struct {
	backend Backend
	conv    *model.Conversation
}

func NewClient(b Backend, conv *model.Conversation) *Client {
	return &Client{
		backend: b,
		conv:    conv,
	}
}

// Send appends userText as a user message and runs one exchange in the given
// mode. Failures are converted into the fallback assistant message; the
// returned Outcome says what happened. Loading is cleared on every path.
func (c *Client) Send(ctx context.Context, userText string, mode model.Mode) Outcome {
	text := strings.TrimSpace(userText)
	if text == "" {
		return Outcome{
			Mode:  mode,
			State: StateSkipped,
			Trace: []State{StateIdle, StateSkipped},
			Err:   ErrEmptyInput,
		}
	}

	id := uuid.NewString()
	log := config.DebugLog.With().Str("exchange_id", id).Str("mode", mode.String()).Logger()

	c.conv.Append(model.Message{Role: model.RoleUser, Content: text})
	c.conv.SetLoading(true)

	p := newProgress()
	err := c.run(backend.WithRequestID(ctx, id), mode, p)

	if err != nil {
		log.Error().Err(err).Str("state", p.current().String()).Msg("exchange failed")
		c.conv.Append(model.Message{Role: model.RoleAssistant, Content: FallbackMessage})
		p.enter(StateFailed)
	} else {
		log.Debug().Int("fragments", p.fragments).Int("skipped", p.skipped).Msg("exchange finished")
	}

	terminal := p.current()
	p.enter(StateIdle)

	return Outcome{
		ExchangeID: id,
		Mode:       mode,
		State:      terminal,
		Trace:      p.trace,
		Fragments:  p.fragments,
		Skipped:    p.skipped,
		Err:        err,
	}
}

// run executes the exchange and guarantees loading is cleared when it
// returns, whatever the strategy did.
func (c *Client) run(ctx context.Context, mode model.Mode, p *progress) error {
	defer c.conv.SetLoading(false)

	history := c.conv.Messages()
	return strategyFor(mode).run(ctx, c.backend, c.conv, history, p)
}
