package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscriber(selfID string) (*Subscriber, *[]*Envelope) {
	var received []*Envelope
	s := newSubscriber(nil, ChannelUpdates, selfID, func(env *Envelope) {
		received = append(received, env)
	})
	return s, &received
}

func marshalEnvelope(t *testing.T, env *Envelope) string {
	t.Helper()
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return string(data)
}

func TestSubscriberDispatchesPeerEnvelope(t *testing.T) {
	s, received := newTestSubscriber("instance-a")

	env, err := NewEnvelope(KindContentUpdate, "doc-1", "conn-9", "instance-b", map[string]string{"content": "hi"})
	require.NoError(t, err)

	s.handleMessage(marshalEnvelope(t, env))

	require.Len(t, *received, 1)
	assert.Equal(t, "doc-1", (*received)[0].DocumentID)
	assert.Equal(t, KindContentUpdate, (*received)[0].Kind)
}

func TestSubscriberDropsOwnInstanceEnvelope(t *testing.T) {
	s, received := newTestSubscriber("instance-a")

	env, err := NewEnvelope(KindContentUpdate, "doc-1", "conn-1", "instance-a", map[string]string{"content": "hi"})
	require.NoError(t, err)

	s.handleMessage(marshalEnvelope(t, env))
	assert.Empty(t, *received)
}

func TestSubscriberDropsMalformedPayload(t *testing.T) {
	s, received := newTestSubscriber("instance-a")

	s.handleMessage("{not json")
	assert.Empty(t, *received)
}

func TestSubscriberDropsEnvelopeWithoutDocument(t *testing.T) {
	s, received := newTestSubscriber("instance-a")

	env, err := NewEnvelope(KindCursorMove, "", "conn-1", "instance-b", map[string]int{"position": 4})
	require.NoError(t, err)

	s.handleMessage(marshalEnvelope(t, env))
	assert.Empty(t, *received)
}

func TestEnvelopePayloadRoundTrip(t *testing.T) {
	type cursor struct {
		UserID   string `json:"user_id"`
		Position int    `json:"position"`
	}

	env, err := NewEnvelope(KindCursorMove, "doc-1", "conn-1", "instance-a", &cursor{UserID: "u1", Position: 17})
	require.NoError(t, err)
	assert.False(t, env.Timestamp.IsZero())

	var got cursor
	require.NoError(t, env.UnmarshalPayload(&got))
	assert.Equal(t, cursor{UserID: "u1", Position: 17}, got)
}
