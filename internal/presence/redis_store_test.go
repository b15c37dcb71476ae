package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumendocs/collab-service/internal/domain"
)

func member(userID, username, connID string) Member {
	return Member{
		Identity:     domain.Identity{UserID: userID, Username: username},
		ConnectionID: connID,
	}
}

func TestMemberValueCollapsesConnections(t *testing.T) {
	s := &redisStore{keyPrefix: "document"}

	// Two connections from the same identity marshal to the same set
	// member, so a second tab never shows up twice.
	a, err := s.memberValue(member("u1", "alice", "conn-1"))
	require.NoError(t, err)
	b, err := s.memberValue(member("u1", "alice", "conn-2"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.JSONEq(t, `{"user_id":"u1","username":"alice"}`, a)
}

func TestMemberValuePerConnection(t *testing.T) {
	s := &redisStore{keyPrefix: "document", perConnection: true}

	a, err := s.memberValue(member("u1", "alice", "conn-1"))
	require.NoError(t, err)
	b, err := s.memberValue(member("u1", "alice", "conn-2"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.JSONEq(t, `{"user_id":"u1","username":"alice","connection_id":"conn-1"}`, a)
}

func TestUsersKey(t *testing.T) {
	s := &redisStore{keyPrefix: "document"}
	assert.Equal(t, "document:doc-1:users", s.usersKey("doc-1"))

	s = &redisStore{keyPrefix: "collab"}
	assert.Equal(t, "collab:doc-1:users", s.usersKey("doc-1"))
}
