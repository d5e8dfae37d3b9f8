package model

import (
	"errors"
	"sync"
	"time"
)

// ErrLastNotAssistant is returned by AppendToLast when the transcript does not
// end in an assistant message. Seeing it means the caller skipped the
// placeholder.
var ErrLastNotAssistant = errors.New("last message is not an assistant message")

// ChangeKind identifies what a mutation did to the conversation.
type ChangeKind int

const (
	ChangeAppended ChangeKind = iota
	ChangeUpdated
	ChangeLoading
)

// Change is delivered to observers after every mutation.
type Change struct {
	Kind  ChangeKind
	Index int // message index; -1 for ChangeLoading
}

// Observer is called synchronously, on the mutating goroutine, after a change
// has been applied. Observers must not mutate the conversation.
type Observer func(Change)

// Conversation is the transcript store: an append-only sequence of messages
// whose last assistant message may grow while a reply streams in, plus the
// loading flag the UI uses to disable input.
//
// There is a single writer (the exchange in flight). The lock exists because
// the renderer reads from another goroutine.
type Conversation struct {
	mu        sync.RWMutex
	messages  []Message
	loading   bool
	observers []Observer
}

// NewConversation starts a transcript with the assistant greeting.
func NewConversation(greeting string) *Conversation {
	return &Conversation{
		messages: []Message{{
			Role:      RoleAssistant,
			Content:   greeting,
			Timestamp: time.Now(),
		}},
	}
}

// Subscribe registers an observer for all subsequent changes.
func (c *Conversation) Subscribe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// Append adds msg to the end of the transcript.
func (c *Conversation) Append(msg Message) {
	c.add(msg)
}

// AppendEmptyAssistantPlaceholder appends an empty assistant message that
// AppendToLast will fill, and returns its index.
func (c *Conversation) AppendEmptyAssistantPlaceholder() int {
	return c.add(Message{Role: RoleAssistant})
}

func (c *Conversation) add(msg Message) int {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	idx := len(c.messages) - 1
	c.mu.Unlock()

	c.notify(Change{Kind: ChangeAppended, Index: idx})
	return idx
}

// AppendToLast concatenates fragment onto the final message, which must be
// an assistant message.
func (c *Conversation) AppendToLast(fragment string) error {
	c.mu.Lock()
	idx := len(c.messages) - 1
	if idx < 0 || c.messages[idx].Role != RoleAssistant {
		c.mu.Unlock()
		return ErrLastNotAssistant
	}
	c.messages[idx].Content += fragment
	c.mu.Unlock()

	c.notify(Change{Kind: ChangeUpdated, Index: idx})
	return nil
}

// Messages returns the transcript in conversation order. The slice is a copy;
// call it again after a change notification to see the change.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the final message, if any.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastAssistant returns the most recent assistant message with content.
func (c *Conversation) LastAssistant() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].IsAssistant() && c.messages[i].Content != "" {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

func (c *Conversation) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// SetLoading updates the loading flag. Observers are only notified when the
// value actually changes.
func (c *Conversation) SetLoading(loading bool) {
	c.mu.Lock()
	changed := c.loading != loading
	c.loading = loading
	c.mu.Unlock()

	if changed {
		c.notify(Change{Kind: ChangeLoading, Index: -1})
	}
}

func (c *Conversation) notify(change Change) {
	c.mu.RLock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.RUnlock()

	for _, o := range observers {
		o(change)
	}
}
