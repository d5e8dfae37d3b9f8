package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationStartsWithGreeting(t *testing.T) {
	conv := NewConversation("Hi there")

	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Hi there", msgs[0].Content)
	assert.False(t, msgs[0].Timestamp.IsZero())
	assert.False(t, conv.Loading())
}

func TestAppendKeepsInsertionOrder(t *testing.T) {
	conv := NewConversation("greeting")

	conv.Append(Message{Role: RoleUser, Content: "one"})
	conv.Append(Message{Role: RoleUser, Content: "two"})
	conv.Append(Message{Role: RoleAssistant, Content: "three"})

	var got []string
	for _, m := range conv.Messages() {
		got = append(got, m.Content)
	}
	assert.Equal(t, []string{"greeting", "one", "two", "three"}, got)
}

func TestAppendEmptyAssistantPlaceholder(t *testing.T) {
	conv := NewConversation("greeting")
	conv.Append(Message{Role: RoleUser, Content: "question"})

	idx := conv.AppendEmptyAssistantPlaceholder()

	assert.Equal(t, 2, idx)
	last, ok := conv.Last()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)
	assert.Empty(t, last.Content)
}

func TestAppendToLastPreservesFragmentOrder(t *testing.T) {
	conv := NewConversation("greeting")
	conv.Append(Message{Role: RoleUser, Content: "q"})
	conv.AppendEmptyAssistantPlaceholder()

	for _, f := range []string{"A", "B", "C"} {
		require.NoError(t, conv.AppendToLast(f))
	}

	last, _ := conv.Last()
	assert.Equal(t, "ABC", last.Content)
	assert.Equal(t, 3, conv.Len())
}

func TestAppendToLastRejectsUserTail(t *testing.T) {
	conv := NewConversation("greeting")
	conv.Append(Message{Role: RoleUser, Content: "q"})

	err := conv.AppendToLast("oops")

	assert.ErrorIs(t, err, ErrLastNotAssistant)
	last, _ := conv.Last()
	assert.Equal(t, "q", last.Content)
}

func TestAppendToLastOnEmptyConversation(t *testing.T) {
	conv := &Conversation{}
	assert.ErrorIs(t, conv.AppendToLast("x"), ErrLastNotAssistant)
}

func TestMessagesIsSideEffectFree(t *testing.T) {
	conv := NewConversation("greeting")
	conv.Append(Message{Role: RoleUser, Content: "q"})

	first := conv.Messages()
	second := conv.Messages()
	assert.Equal(t, first, second)

	// Mutating a returned slice must not leak into the store.
	first[0].Content = "changed"
	assert.Equal(t, "greeting", conv.Messages()[0].Content)
}

func TestObserversSeeEveryMutationInOrder(t *testing.T) {
	conv := NewConversation("greeting")

	var changes []Change
	var contents []string
	conv.Subscribe(func(c Change) {
		changes = append(changes, c)
		if last, ok := conv.Last(); ok {
			contents = append(contents, last.Content)
		}
	})

	conv.Append(Message{Role: RoleUser, Content: "q"})
	conv.SetLoading(true)
	conv.AppendEmptyAssistantPlaceholder()
	conv.SetLoading(false)
	require.NoError(t, conv.AppendToLast("Hel"))
	require.NoError(t, conv.AppendToLast("lo"))

	assert.Equal(t, []Change{
		{Kind: ChangeAppended, Index: 1},
		{Kind: ChangeLoading, Index: -1},
		{Kind: ChangeAppended, Index: 2},
		{Kind: ChangeLoading, Index: -1},
		{Kind: ChangeUpdated, Index: 2},
		{Kind: ChangeUpdated, Index: 2},
	}, changes)
	// Each notification observes the state after its own mutation.
	assert.Equal(t, []string{"q", "q", "", "", "Hel", "Hello"}, contents)
}

func TestSetLoadingNotifiesOnlyOnChange(t *testing.T) {
	conv := NewConversation("greeting")

	count := 0
	conv.Subscribe(func(Change) { count++ })

	conv.SetLoading(false)
	conv.SetLoading(true)
	conv.SetLoading(true)
	conv.SetLoading(false)

	assert.Equal(t, 2, count)
}

func TestLastAssistantSkipsEmptyPlaceholder(t *testing.T) {
	conv := NewConversation("greeting")
	conv.Append(Message{Role: RoleUser, Content: "q"})
	conv.AppendEmptyAssistantPlaceholder()

	msg, ok := conv.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "greeting", msg.Content)
}
