package sio

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Session is the immutable outcome of a successful handshake. One
// exists if and only if the engine is connected.
type Session struct {
	ID           string
	PingInterval time.Duration
	PingTimeout  time.Duration
	Upgrades     mapset.Set[string]
	MaxPayload   int64

	// Deadline for the next heartbeat; pushed forward by every write.
	heartbeat time.Time
}

func newSession(id string, pingInterval, pingTimeout time.Duration, upgrades []string, maxPayload int64) *Session {
	return &Session{
		ID:           id,
		PingInterval: pingInterval,
		PingTimeout:  pingTimeout,
		Upgrades:     mapset.NewThreadUnsafeSet(upgrades...),
		MaxPayload:   maxPayload,
		heartbeat:    time.Now().Add(pingInterval),
	}
}

// touch pushes the heartbeat deadline one ping interval ahead.
func (s *Session) touch() {
	s.heartbeat = time.Now().Add(s.PingInterval)
}

// NeedsHeartbeat reports whether the heartbeat deadline has passed
// and a ping is due.
func (s *Session) NeedsHeartbeat() bool {
	return s.PingInterval > 0 && !time.Now().Before(s.heartbeat)
}
