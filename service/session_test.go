package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSessionAppendBoundsTurns(t *testing.T) {
	session := NewChatSession("s1", 3)
	for i := 0; i < 5; i++ {
		session.Append(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	turns := session.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "q2", turns[0].Question)
	assert.Equal(t, "q4", turns[2].Question)
}

func TestChatSessionClear(t *testing.T) {
	session := NewChatSession("s1", 10)
	session.Append("q", "a")
	session.Clear()

	assert.Empty(t, session.Turns())
}

func TestChatSessionTurnsReturnsCopy(t *testing.T) {
	session := NewChatSession("s1", 10)
	session.Append("q", "a")

	turns := session.Turns()
	turns[0].Question = "mutated"

	assert.Equal(t, "q", session.Turns()[0].Question)
}

func TestSessionManagerGetCreatesOnce(t *testing.T) {
	manager := NewSessionManager(10)

	first := manager.Get("abc")
	second := manager.Get("abc")

	assert.Same(t, first, second)
	assert.Equal(t, "abc", first.ID())
}

func TestSessionManagerReset(t *testing.T) {
	manager := NewSessionManager(10)
	session := manager.Get("abc")
	session.Append("q", "a")

	manager.Reset("abc")

	assert.Empty(t, session.Turns())
	// Resetting an unknown session is a no-op.
	manager.Reset("missing")
}

func TestSessionManagerRemove(t *testing.T) {
	manager := NewSessionManager(10)
	first := manager.Get("abc")
	first.Append("q", "a")

	manager.Remove("abc")

	assert.Empty(t, manager.Get("abc").Turns())
}
