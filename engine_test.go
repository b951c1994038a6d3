package sio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	e, err := New("ws://example.com:3000", nil)
	require.NoError(t, err)
	assert.Equal(t, "http", e.url.Scheme)
	assert.Equal(t, "/socket.io", e.url.Path)
	assert.Equal(t, 4, e.opts.Version)
	assert.False(t, e.Connected())

	e, err = New("https://example.com/custom/", &Options{Version: 3})
	require.NoError(t, err)
	assert.Equal(t, "/custom", e.url.Path)
	assert.IsType(t, &version3{}, e.proto)

	_, err = New("http://example.com", &Options{Version: 9})
	assert.Error(t, err)
}

func TestConnectIdempotent(t *testing.T) {
	proto := &fakeProtocol{}
	e := newTestEngine(proto)

	// The fake handshake leaves no stream behind, so fake one up on
	// the first call.
	s := newFakeStream()
	err := e.Connect()
	require.NoError(t, err)
	e.stream = s

	err = e.Connect()
	require.NoError(t, err)
	err = e.Connect()
	require.NoError(t, err)

	assert.Equal(t, 1, proto.handshakes, "handshake must happen exactly once")
}

func TestConnectInvalidTransport(t *testing.T) {
	proto := &fakeProtocol{}
	e := newTestEngine(proto)
	e.opts.Transport = Transport("carrier-pigeon")

	err := e.Connect()
	assert.ErrorIs(t, err, ErrInvalidTransport)
	assert.Zero(t, proto.handshakes)
}

func TestCloseDisconnectedIsNoop(t *testing.T) {
	proto := &fakeProtocol{}
	e := newTestEngine(proto)

	require.NoError(t, e.Close())
	assert.Zero(t, proto.closes)
}

func TestCloseTearsDown(t *testing.T) {
	proto := &fakeProtocol{}
	e := newTestEngine(proto)
	s := newFakeStream()
	e.stream = s
	e.session = newSession("abc", time.Second, time.Second, nil, 0)
	e.cookies = []string{"io=abc"}

	require.NoError(t, e.Close())
	assert.Equal(t, 1, proto.closes)
	assert.Nil(t, e.stream)
	assert.Nil(t, e.session)
	assert.Nil(t, e.cookies)
	assert.False(t, s.connected)
}

func TestReset(t *testing.T) {
	e := newTestEngine(nil)

	// Safe with nothing to release.
	e.Reset()

	s := newFakeStream()
	e.stream = s
	e.session = newSession("abc", time.Second, time.Second, nil, 0)
	e.Reset()
	assert.Nil(t, e.stream)
	assert.Nil(t, e.session)
	assert.False(t, s.connected)
}

func TestIsUpgradable(t *testing.T) {
	e := newTestEngine(nil)

	// No session: must not panic, must be false.
	assert.False(t, e.isUpgradable())

	e.session = newSession("abc", time.Second, time.Second, []string{"websocket"}, 0)
	assert.True(t, e.isUpgradable())

	e.session = newSession("abc", time.Second, time.Second, []string{"webtransport"}, 0)
	assert.False(t, e.isUpgradable())

	e.session = newSession("abc", time.Second, time.Second, []string{"websocket"}, 0)
	e.opts.Transports = transportSet("polling")
	assert.False(t, e.isUpgradable())

	e.opts.Transports = transportSet("polling", "websocket")
	assert.True(t, e.isUpgradable())
}

func TestOf(t *testing.T) {
	proto := &fakeProtocol{}
	e := newTestEngine(proto)

	sent, err := e.Of("/chat")
	require.NoError(t, err)
	assert.Equal(t, "chat", sent)
	assert.Equal(t, "chat", e.Namespace())

	// Same namespace again, normalized or not: no message.
	sent, err = e.Of("chat")
	require.NoError(t, err)
	assert.Empty(t, sent)
	sent, err = e.Of("/chat")
	require.NoError(t, err)
	assert.Empty(t, sent)

	assert.Equal(t, []string{"chat"}, proto.nsChanges)
}

func TestEmitNotConnected(t *testing.T) {
	e := newTestEngine(nil)
	assert.ErrorIs(t, e.Emit("hello"), ErrNotConnected)
}

func TestReadBytesPartialOnTimeout(t *testing.T) {
	s := newFakeStream()
	s.reads = [][]byte{[]byte("ab")}

	e := newTestEngine(nil)
	e.stream = s

	buf, err := e.readBytes(4, 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), buf, "short read is returned as-is")
}

func TestReadBytesAccumulates(t *testing.T) {
	s := newFakeStream()
	s.reads = [][]byte{[]byte("ab"), nil, []byte("cd"), []byte("ef")}

	e := newTestEngine(nil)
	e.stream = s

	buf, err := e.readBytes(6, 200*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), buf)
}

func TestReadBytesConnectionLost(t *testing.T) {
	s := newFakeStream()
	s.connected = false

	e := newTestEngine(nil)
	e.stream = s

	_, err := e.readBytes(2, 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrConnectionLost)
}

func TestWriteNoStream(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.write([]byte("x"))
	assert.ErrorIs(t, err, ErrNoStream)
}

func TestWriteTouchesHeartbeat(t *testing.T) {
	s := newFakeStream()
	e := newTestEngine(nil)
	e.stream = s
	e.session = newSession("abc", time.Minute, time.Second, nil, 0)
	before := e.session.heartbeat

	time.Sleep(5 * time.Millisecond)
	n, err := e.write([]byte("2"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, e.session.heartbeat.After(before))
	require.Len(t, s.writes, 1)
	assert.Equal(t, []byte("2"), s.writes[0])
}

func TestStoreSession(t *testing.T) {
	e := newTestEngine(nil)

	handshake := map[string]any{
		"sid":          "abc",
		"pingInterval": 25000,
		"pingTimeout":  5000,
		"upgrades":     []any{"websocket"},
		"maxPayload":   1000000,
	}
	headers := []string{
		"Content-Type: text/plain",
		"Set-Cookie: io=abc; Path=/",
	}

	require.NoError(t, e.storeSession(handshake, headers))
	require.NotNil(t, e.session)
	assert.Equal(t, "abc", e.session.ID)
	assert.Equal(t, 25*time.Second, e.session.PingInterval)
	assert.Equal(t, 5*time.Second, e.session.PingTimeout)
	assert.True(t, e.session.Upgrades.Contains("websocket"))
	assert.Equal(t, int64(1000000), e.session.MaxPayload)
	assert.Equal(t, []string{"io=abc"}, e.cookies)
	assert.Equal(t, "abc", e.ID())
}

func TestStoreSessionReplacesCookies(t *testing.T) {
	e := newTestEngine(nil)
	e.cookies = []string{"stale=1"}

	handshake := map[string]any{
		"sid": "xyz", "pingInterval": 1000, "pingTimeout": 1000, "upgrades": []any{},
	}
	require.NoError(t, e.storeSession(handshake, []string{"SET-COOKIE: io=xyz; HttpOnly"}))
	assert.Equal(t, []string{"io=xyz"}, e.cookies)
}

func TestDrainPollingNon200(t *testing.T) {
	s := newFakeStream()
	s.status = 204

	e := newTestEngine(nil)
	e.stream = s
	e.transport = TransportPolling

	p, err := e.Drain(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, p, "only a 200 response carries packets")
	require.Len(t, s.requests, 1)
	assert.Contains(t, s.requests[0].uri, "transport=polling")
	assert.Contains(t, s.requests[0].uri, "EIO=4")
	assert.Contains(t, s.requests[0].uri, "t=")
}

func TestWaitDeadline(t *testing.T) {
	s := newFakeStream()
	s.status = 204

	e := newTestEngine(nil)
	e.stream = s
	e.transport = TransportPolling

	_, err := e.WaitDeadline("news", time.Now().Add(30*time.Millisecond))
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestSetTimeout(t *testing.T) {
	e := newTestEngine(nil)

	// No stream yet: stored for the next construction.
	e.SetTimeout(7 * time.Second)
	assert.Equal(t, 7*time.Second, e.opts.Timeout)

	s := newFakeStream()
	e.stream = s
	e.SetTimeout(9 * time.Second)
	assert.Equal(t, 9*time.Second, s.timeout)

	e.opts.ReuseConnection = false
	e.SetTimeout(11 * time.Second)
	assert.Equal(t, 9*time.Second, s.timeout, "live stream untouched when not reusing")
	assert.Equal(t, 11*time.Second, e.opts.Timeout)
}

func TestRequestHeadersIncludeCookies(t *testing.T) {
	e := newTestEngine(nil)
	e.cookies = []string{"io=abc", "theme=dark"}

	lines := e.requestHeaders()
	assert.Contains(t, lines, "Cookie: io=abc; theme=dark")
}
