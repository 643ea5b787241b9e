package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashveerji/LinkedIn-B/internal/event"
	"github.com/yashveerji/LinkedIn-B/internal/presence"
	"go.uber.org/zap"
)

type fakeMirror struct {
	mu       sync.Mutex
	calls    []string
	online   map[string]bool
	lastSeen map[string]time.Time
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{online: make(map[string]bool), lastSeen: make(map[string]time.Time)}
}

func (m *fakeMirror) Online(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "online:"+userID)
	m.online[userID] = true
	return nil
}

func (m *fakeMirror) Offline(_ context.Context, userID string, lastSeen time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "offline:"+userID)
	delete(m.online, userID)
	m.lastSeen[userID] = lastSeen
	return nil
}

func (m *fakeMirror) snapshot() ([]string, map[string]bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	online := make(map[string]bool, len(m.online))
	for k, v := range m.online {
		online[k] = v
	}
	return append([]string(nil), m.calls...), online
}

func TestMirrorQueue_SkipsOvertakenTransitions(t *testing.T) {
	mirror := newFakeMirror()
	dir := presence.NewDirectory()
	effects := newEffectRunner(zap.NewNop(), nil)

	dir.Register("alice", "c1")
	q := newMirrorQueue(mirror, dir, effects)
	q.push(mirrorJob{userID: "alice", seenAt: time.Unix(100, 0)}) // overtaken by the reconnect
	q.push(mirrorJob{userID: "alice", online: true})
	q.close()

	calls, online := mirror.snapshot()
	assert.Equal(t, []string{"online:alice"}, calls)
	assert.True(t, online["alice"])

	dir.Unregister("c1")
	seenAt := time.Unix(200, 0)
	q = newMirrorQueue(mirror, dir, effects)
	q.push(mirrorJob{userID: "alice", online: true})
	q.push(mirrorJob{userID: "alice", seenAt: seenAt})
	q.close()

	calls, online = mirror.snapshot()
	assert.Equal(t, []string{"online:alice", "offline:alice"}, calls)
	assert.False(t, online["alice"])
	assert.True(t, mirror.lastSeen["alice"].Equal(seenAt))
}

func TestHub_MirrorEndsOnlineAfterReconnectChurn(t *testing.T) {
	mirror := newFakeMirror()
	h := NewHub(Options{
		Store:     newFakeStore(),
		Directory: presence.NewDirectory(),
		Logger:    zap.NewNop(),
		Mirror:    mirror,
	})

	register := event.WsEvent{Event: event.EventRegister, Payload: []byte(`"alice"`)}
	for i := 0; i < 25; i++ {
		c := newClient(h, nil, "")
		h.addClient(c)
		h.handleEvent(register, c)
		h.disconnect(c)
	}
	last := newClient(h, nil, "")
	h.addClient(last)
	h.handleEvent(register, last)

	h.Stop()

	calls, online := mirror.snapshot()
	require.NotEmpty(t, calls)
	assert.Equal(t, "online:alice", calls[len(calls)-1])
	assert.True(t, online["alice"])
}
