package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_MultiDeviceStaysOnlineUntilLastSocket(t *testing.T) {
	d := NewDirectory()

	online, _ := d.Register("u1", "c1")
	assert.True(t, online, "first socket should bring the user online")

	online, _ = d.Register("u1", "c2")
	assert.False(t, online, "second device must not re-announce online")

	userID, offline, ok := d.Unregister("c1")
	require.True(t, ok)
	assert.Equal(t, "u1", userID)
	assert.False(t, offline, "user still has c2")
	assert.True(t, d.IsOnline("u1"))
	assert.Equal(t, []string{"c2"}, d.SocketsFor("u1"))

	userID, offline, ok = d.Unregister("c2")
	require.True(t, ok)
	assert.Equal(t, "u1", userID)
	assert.True(t, offline)
	assert.False(t, d.IsOnline("u1"))
	assert.Empty(t, d.SocketsFor("u1"))
	assert.Empty(t, d.Snapshot())
}

func TestDirectory_UnregisterIsIdempotent(t *testing.T) {
	d := NewDirectory()
	d.Register("u1", "c1")

	_, offline, ok := d.Unregister("c1")
	require.True(t, ok)
	require.True(t, offline)

	for i := 0; i < 2; i++ {
		userID, offline, ok := d.Unregister("c1")
		assert.False(t, ok)
		assert.False(t, offline)
		assert.Empty(t, userID)
	}

	_, _, ok = d.Unregister("never-registered")
	assert.False(t, ok)
}

func TestDirectory_RegisterSameSocketTwiceIsNoop(t *testing.T) {
	d := NewDirectory()

	online, _ := d.Register("u1", "c1")
	require.True(t, online)

	online, detached := d.Register("u1", "c1")
	assert.False(t, online)
	assert.False(t, detached.OK)
	assert.Equal(t, []string{"c1"}, d.SocketsFor("u1"))
}

func TestDirectory_ReRegisterUnderAnotherUserDetachesPrevious(t *testing.T) {
	d := NewDirectory()
	d.Register("alice", "c1")

	online, detached := d.Register("bob", "c1")

	assert.True(t, online)
	assert.True(t, detached.OK)
	assert.Equal(t, "alice", detached.UserID)
	assert.True(t, detached.Offline)
	assert.False(t, d.IsOnline("alice"))

	owner, ok := d.OwnerOf("c1")
	require.True(t, ok)
	assert.Equal(t, "bob", owner)
}

func TestDirectory_SnapshotIsSorted(t *testing.T) {
	d := NewDirectory()
	d.Register("carol", "c3")
	d.Register("alice", "c1")
	d.Register("bob", "c2")
	d.Register("alice", "c4")

	assert.Equal(t, []string{"alice", "bob", "carol"}, d.Snapshot())

	users, sockets, multi := d.Stats()
	assert.Equal(t, 3, users)
	assert.Equal(t, 4, sockets)
	assert.Equal(t, 1, multi)
}

func TestDirectory_ConcurrentRegistrationsDoNotLoseUpdates(t *testing.T) {
	d := NewDirectory()

	var wg sync.WaitGroup
	var mu sync.Mutex
	transitions := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if online, _ := d.Register("u1", fmt.Sprintf("c%d", i)); online {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, transitions, "exactly one registration flips the user online")
	assert.Len(t, d.SocketsFor("u1"), 100)
}
