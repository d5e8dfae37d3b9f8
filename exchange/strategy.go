package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"

	"assistui/model"
)

// strategy is how one mode talks to the backend and applies the reply.
type strategy interface {
	run(ctx context.Context, b Backend, conv *model.Conversation, history []model.Message, p *progress) error
}

// strategyFor is the only place the two modes diverge.
func strategyFor(mode model.Mode) strategy {
	switch mode {
	case model.ModeIncremental:
		return incrementalExchange{}
	default:
		return atomicExchange{}
	}
}

// atomicExchange waits for the whole reply and applies it in one append.
type atomicExchange struct{}

func (atomicExchange) run(ctx context.Context, b Backend, conv *model.Conversation, history []model.Message, p *progress) error {
	p.enter(StateAwaitingResponse)

	reply, err := b.Chat(ctx, history)
	if err != nil {
		return err
	}

	conv.Append(model.Message{Role: model.RoleAssistant, Content: reply})
	conv.SetLoading(false)
	p.enter(StateApplied)
	return nil
}

// incrementalExchange creates an empty assistant message as soon as the
// backend accepts the request and grows it fragment by fragment.
type incrementalExchange struct{}

func (incrementalExchange) run(ctx context.Context, b Backend, conv *model.Conversation, history []model.Message, p *progress) error {
	p.enter(StateAwaitingFirstByte)

	stream, err := b.OpenStream(ctx, history)
	if err != nil {
		return err
	}
	defer stream.Close()
	defer func() { p.skipped = stream.Skipped() }()

	conv.AppendEmptyAssistantPlaceholder()
	// The typing indicator covers the wait for the first byte only.
	conv.SetLoading(false)
	p.enter(StateStreaming)

	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if !ev.IsText() {
			continue
		}
		if err := conv.AppendToLast(ev.Content); err != nil {
			return fmt.Errorf("failed to apply fragment %d: %w", p.fragments+1, err)
		}
		p.fragments++
	}

	p.enter(StateCompleted)
	return nil
}
