// Package sio implements a blocking client-side engine for the
// Engine.IO / Socket.IO wire protocol: handshake over HTTP
// long-polling or websocket, in-place transport upgrade, websocket
// frame decoding, heartbeats and namespace multiplexing over one
// physical connection.
//
// Every operation is synchronous. Reads and writes block the calling
// goroutine, bounded only by the configured timeout or the per-call
// timeout argument; the engine never starts goroutines of its own.
package sio

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/tomruk/yeast"

	"github.com/siowire/socket.io-client-go/parser"
	"github.com/siowire/socket.io-client-go/stream"
)

// yeaster generates the monotonically unique cache-busting tokens for
// the "t" query parameter.
var yeaster = yeast.New()

// Engine owns the stream, the session and the configuration, and
// drives connect, upgrade, read/write and namespace routing. An
// Engine must not be used from more than one goroutine at a time.
type Engine struct {
	url   *url.URL
	opts  *Options
	proto protocol

	stream    stream.Stream
	session   *Session
	transport Transport
	namespace string
	cookies   []string

	debug Debugger
}

// New builds an engine for the given server URL. The URL may use the
// http, https, ws or wss scheme; a missing path defaults to the
// configured (or default) mount path.
func New(rawURL string, opts *Options) (*Engine, error) {
	if opts == nil {
		opts = new(Options)
	}
	if opts.Version == 0 {
		opts.Version = defaultOptions().Version
	}
	proto, err := protocolForVersion(opts.Version)
	if err != nil {
		return nil, err
	}
	opts.merge(proto.defaultOptions())

	u, err := parseURL(rawURL, opts.Path)
	if err != nil {
		return nil, err
	}

	debug := Debugger(noopDebugger{})
	if opts.Debug {
		debug = NewPrintDebugger()
	}

	return &Engine{
		url:   u,
		opts:  opts,
		proto: proto,
		debug: debug.WithContext("sio: Engine"),
	}, nil
}

func parseURL(rawURL, defaultPath string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	case "ws":
		u.Scheme = "http"
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	if u.Path == "" {
		u.Path = defaultPath
	}
	return u, nil
}

// Connected is derived from the stream, never cached: no stream means
// disconnected.
func (e *Engine) Connected() bool {
	return e.stream != nil && e.stream.Connected()
}

// Connect performs the handshake and, when the negotiated session
// allows it, the upgrade to websocket. Calling Connect on a connected
// engine is a no-op.
func (e *Engine) Connect() error {
	if e.Connected() {
		return nil
	}
	if err := e.setTransport(e.opts.Transport); err != nil {
		return err
	}
	if err := e.proto.handshake(e); err != nil {
		return err
	}
	if err := e.proto.postHandshake(e); err != nil {
		return err
	}
	if e.isUpgradable() {
		e.debug.Log("Connect", "upgrading to", TransportWebSocket)
		return e.proto.upgrade(e)
	}
	return e.proto.skipUpgrade(e)
}

// Close performs the protocol-level goodbye when a session is live,
// then releases all local state. Closing a disconnected engine is a
// no-op.
func (e *Engine) Close() error {
	if !e.Connected() {
		return nil
	}
	var err error
	if e.session != nil {
		err = e.proto.close(e)
	}
	e.Reset()
	return err
}

// Reset unconditionally releases the stream and discards the session
// and cookies. Always safe to call.
func (e *Engine) Reset() {
	if e.stream != nil {
		e.stream.Close()
		e.stream = nil
	}
	e.session = nil
	e.cookies = nil
}

// Of switches the engine to the given namespace. Switching to the
// namespace already current is a no-op, so redundant namespace-join
// messages are never sent. The returned string is the message the
// protocol sent, empty for the no-op case.
func (e *Engine) Of(namespace string) (string, error) {
	namespace = normalizeNamespace(namespace)
	if namespace == e.namespace {
		return "", nil
	}
	e.namespace = namespace
	return e.proto.changeNamespace(e, namespace)
}

// Emit sends an event with arguments to the current namespace.
func (e *Engine) Emit(event string, args ...any) error {
	if e.session == nil {
		return ErrNotConnected
	}
	return e.proto.emit(e, event, args)
}

// Drain retrieves whatever the transport has to offer and decodes it.
// A nil packet with a nil error means nothing arrived within the
// timeout. A timeout of zero falls back to the configured I/O
// timeout.
func (e *Engine) Drain(timeout time.Duration) (*parser.Packet, error) {
	if timeout <= 0 {
		timeout = e.opts.Timeout
	}

	var data []byte
	switch e.transport {
	case TransportWebSocket:
		var err error
		data, err = e.readFrame(timeout)
		if err != nil {
			return nil, err
		}
	default:
		if err := e.poll(); err != nil {
			return nil, err
		}
		// Only a 200 carries packets.
		if e.stream.Status() == 200 {
			data = e.stream.Body()
		}
	}

	if len(data) == 0 {
		return nil, nil
	}
	return e.proto.processPacket(e, data)
}

// Wait blocks until a packet carrying event on the current namespace
// arrives. It retries forever: Wait has no timeout of its own. Use
// WaitDeadline for a bounded wait.
func (e *Engine) Wait(event string) (*parser.Packet, error) {
	for {
		packet, err := e.Drain(0)
		if err != nil {
			return nil, err
		}
		if packet == nil {
			continue
		}
		if match := e.proto.matchEvent(e, packet, event); match != nil {
			return match, nil
		}
	}
}

// WaitDeadline is Wait with a hard deadline. It fails with
// ErrDeadlineExceeded when no matching event arrived in time.
func (e *Engine) WaitDeadline(event string, deadline time.Time) (*parser.Packet, error) {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrDeadlineExceeded
		}
		if ambient := e.opts.Timeout; ambient > 0 && ambient < remaining {
			remaining = ambient
		}
		packet, err := e.Drain(remaining)
		if err != nil {
			return nil, err
		}
		if packet == nil {
			continue
		}
		if match := e.proto.matchEvent(e, packet, event); match != nil {
			return match, nil
		}
	}
}

// SetTimeout updates the I/O timeout. With a reused stream the live
// stream is updated as well; otherwise the value applies to the next
// stream construction.
func (e *Engine) SetTimeout(timeout time.Duration) {
	e.opts.Timeout = timeout
	if e.opts.ReuseConnection && e.stream != nil {
		e.stream.SetTimeout(timeout)
	}
}

// ID returns the session id, empty when disconnected.
func (e *Engine) ID() string {
	if e.session == nil {
		return ""
	}
	return e.session.ID
}

func (e *Engine) Session() *Session { return e.session }

func (e *Engine) Namespace() string { return e.namespace }

func (e *Engine) TransportName() Transport { return e.transport }

func (e *Engine) Cookies() []string { return e.cookies }

func (e *Engine) setTransport(t Transport) error {
	if !t.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidTransport, t)
	}
	e.transport = t
	return nil
}

// isUpgradable reports whether the session advertises websocket as an
// upgrade candidate and the allow-list permits it. Safe to call with
// no session.
func (e *Engine) isUpgradable() bool {
	return e.session != nil &&
		e.session.Upgrades.Contains(string(TransportWebSocket)) &&
		e.opts.allowsTransport(TransportWebSocket)
}

// readBytes accumulates exactly n bytes from the stream, looping
// until the timeout budget runs out. Short results on timeout are
// returned as-is; callers must check for short reads. The keep-alive
// hook runs once per iteration so client-driven heartbeats stay on
// schedule during long reads.
func (e *Engine) readBytes(n int, timeout time.Duration) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, 0, n)
	start := time.Now()
	for len(buf) < n {
		if timeout > 0 && time.Since(start) >= timeout {
			break
		}
		e.proto.keepAlive(e)
		if e.stream == nil || !e.stream.Connected() {
			return nil, ErrConnectionLost
		}
		chunk, err := e.stream.Read(n - len(buf))
		if err != nil {
			if stream.IsTimeout(err) {
				continue
			}
			if !e.stream.Connected() {
				return nil, ErrConnectionLost
			}
			if len(chunk) == 0 {
				return nil, fmt.Errorf("%w: %v", ErrRead, err)
			}
		}
		buf = append(buf, chunk...)
	}
	return buf, nil
}

// write sends raw bytes through the stream, pushes the heartbeat
// deadline forward and sleeps the pacing delay.
func (e *Engine) write(data []byte) (int, error) {
	if e.stream == nil {
		return 0, ErrNoStream
	}
	n, err := e.stream.Write(data)
	if err != nil {
		return n, err
	}
	e.debug.Log("write", n, "bytes")
	if e.session != nil {
		e.session.touch()
	}
	if e.opts.Wait > 0 {
		time.Sleep(e.opts.Wait)
	}
	return n, nil
}

// poll issues one long-polling GET. The outcome stays on the stream.
func (e *Engine) poll() error {
	if e.stream == nil {
		return ErrNoStream
	}
	sid := ""
	if e.session != nil {
		sid = e.session.ID
	}
	return e.stream.Request(e.requestURI(TransportPolling, sid), e.requestHeaders(), nil)
}

// post sends a payload as one long-polling POST exchange, with the
// same heartbeat and pacing bookkeeping as write.
func (e *Engine) post(body []byte) error {
	if e.stream == nil {
		return ErrNoStream
	}
	sid := ""
	if e.session != nil {
		sid = e.session.ID
	}
	err := e.stream.Request(e.requestURI(TransportPolling, sid), e.requestHeaders(), &stream.RequestOptions{
		Method: "POST",
		Body:   body,
	})
	if err != nil {
		return err
	}
	if e.stream.Status() != 200 {
		return fmt.Errorf("sio: non-200 response to POST: %d", e.stream.Status())
	}
	if e.session != nil {
		e.session.touch()
	}
	if e.opts.Wait > 0 {
		time.Sleep(e.opts.Wait)
	}
	return nil
}

// requestURI builds the request target: mount path plus the EIO,
// transport, cache-busting and session query parameters.
func (e *Engine) requestURI(transport Transport, sid string) string {
	q := url.Values{}
	for k, vs := range e.opts.Query {
		q[k] = vs
	}
	q.Set("EIO", strconv.Itoa(e.opts.Version))
	q.Set("transport", transport.String())
	q.Set("t", yeaster.Yeast())
	if sid != "" {
		q.Set("sid", sid)
	}
	return e.url.Path + "/?" + q.Encode()
}

// requestHeaders renders the configured headers plus captured cookies
// as raw header lines.
func (e *Engine) requestHeaders() []string {
	var lines []string
	for name, values := range e.opts.Headers {
		for _, value := range values {
			lines = append(lines, name+": "+value)
		}
	}
	if len(e.cookies) > 0 {
		lines = append(lines, "Cookie: "+strings.Join(e.cookies, "; "))
	}
	return lines
}

const setCookiePrefix = "set-cookie:"

// storeSession captures cookies from the handshake response headers
// and builds the session from the handshake fields. Presence of the
// required fields is the calling protocol's contract; they validate
// the server response before coming here.
func (e *Engine) storeSession(handshake map[string]any, headerLines []string) error {
	var cookies []string
	for _, line := range headerLines {
		if len(line) < len(setCookiePrefix) || !strings.EqualFold(line[:len(setCookiePrefix)], setCookiePrefix) {
			continue
		}
		value := strings.TrimSpace(line[len(setCookiePrefix):])
		if i := strings.IndexByte(value, ';'); i >= 0 {
			value = value[:i]
		}
		cookies = append(cookies, value)
	}
	e.cookies = cookies

	var hs parser.Handshake
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &hs,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err = decoder.Decode(handshake); err != nil {
		return fmt.Errorf("sio: malformed handshake: %w", err)
	}

	e.session = newSession(hs.SID, hs.GetPingInterval(), hs.GetPingTimeout(), hs.Upgrades, hs.MaxPayload)
	e.debug.Log("storeSession", "sid", hs.SID, "pingInterval", hs.GetPingInterval(), "pingTimeout", hs.GetPingTimeout())
	return nil
}

// createStream makes sure a stream exists, dialing a fresh one when
// there is none or when connections are not reused.
func (e *Engine) createStream() error {
	if e.stream != nil && !e.opts.ReuseConnection {
		e.stream.Close()
		e.stream = nil
	}
	if e.stream == nil {
		s, err := stream.Dial(e.url, &stream.Options{
			Timeout:   e.opts.Timeout,
			TLSConfig: e.opts.TLSConfig,
		})
		if err != nil {
			return wrapSocketError(err)
		}
		e.stream = s
	}
	return nil
}
