package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(_ context.Context, text string) (string, error) { return "re: " + text, nil }

func TestSendAppends(t *testing.T) {
	c := NewConversation("Hello! How can I help?", nil, echo)

	exchanged, err := c.Send(context.Background(), " my pension stopped ")
	require.NoError(t, err)
	require.Len(t, exchanged, 2)
	assert.Equal(t, RoleUser, exchanged[0].Role)
	assert.Equal(t, "my pension stopped", exchanged[0].Content)
	assert.Equal(t, "re: my pension stopped", exchanged[1].Content)

	tr := c.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, "Hello! How can I help?", tr[0].Content)
	assert.Equal(t, RoleAssistant, tr[2].Role)
}

func TestFailedSendLeavesTranscript(t *testing.T) {
	boom := errors.New("service unavailable")
	fail := false
	c := NewConversation("hi", nil, func(ctx context.Context, text string) (string, error) {
		if fail {
			return "", boom
		}
		return echo(ctx, text)
	})
	_, err := c.Send(context.Background(), "first")
	require.NoError(t, err)
	before := c.Transcript()

	fail = true
	exchanged, err := c.Send(context.Background(), "second")
	assert.Nil(t, exchanged)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, boom)

	var serr *SendError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "second", serr.Text)
	assert.Equal(t, before, c.Transcript())
}

func TestEmptyMessageIsRejected(t *testing.T) {
	called := false
	c := NewConversation("", nil, func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})
	_, err := c.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.False(t, called)
	assert.Empty(t, c.Transcript())
}

func TestResumeHistory(t *testing.T) {
	history := []Message{{Role: RoleUser, Content: "a"}, {Role: RoleAssistant, Content: "b"}}
	c := NewConversation("greeting", history, echo)
	history[0].Content = "mutated"

	tr := c.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, "a", tr[1].Content)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Append(ctx, "acct", "complaint", Message{Role: RoleUser, Content: "x"}))
	require.NoError(t, s.Append(ctx, "acct", "complaint", Message{Role: RoleAssistant, Content: "y"}))

	got, err := s.Load(ctx, "acct", "complaint")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	other, err := s.Load(ctx, "acct", "scheme:pm-kisan")
	require.NoError(t, err)
	assert.Empty(t, other)
}
