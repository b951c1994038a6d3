package sio

import (
	"net/url"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/siowire/socket.io-client-go/parser"
	"github.com/siowire/socket.io-client-go/stream"
)

func transportSet(names ...string) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(names...)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "fake: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type fakeRequest struct {
	uri     string
	headers []string
	opts    *stream.RequestOptions
}

// fakeStream scripts the Stream collaborator: reads come from a
// chunk queue (a nil chunk simulates a read timeout), writes and
// requests are recorded.
type fakeStream struct {
	connected bool

	reads  [][]byte
	writes [][]byte

	requests []fakeRequest
	status   int
	body     []byte
	headers  []string

	timeout time.Duration
}

var _ stream.Stream = (*fakeStream)(nil)

func newFakeStream() *fakeStream {
	return &fakeStream{connected: true, status: 200}
}

func (s *fakeStream) Connected() bool { return s.connected }

func (s *fakeStream) Read(max int) ([]byte, error) {
	if len(s.reads) == 0 {
		return nil, timeoutError{}
	}
	chunk := s.reads[0]
	if chunk == nil {
		s.reads = s.reads[1:]
		return nil, timeoutError{}
	}
	if len(chunk) > max {
		s.reads[0] = chunk[max:]
		return chunk[:max], nil
	}
	s.reads = s.reads[1:]
	return chunk, nil
}

func (s *fakeStream) Write(p []byte) (int, error) {
	s.writes = append(s.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (s *fakeStream) Close() error {
	s.connected = false
	return nil
}

func (s *fakeStream) Request(uri string, headers []string, opts *stream.RequestOptions) error {
	s.requests = append(s.requests, fakeRequest{uri: uri, headers: headers, opts: opts})
	return nil
}

func (s *fakeStream) Status() int { return s.status }

func (s *fakeStream) Body() []byte { return s.body }

func (s *fakeStream) HeaderLines() []string { return s.headers }

func (s *fakeStream) SetTimeout(timeout time.Duration) { s.timeout = timeout }

// fakeProtocol counts hook invocations; every hook succeeds.
type fakeProtocol struct {
	handshakes int
	closes     int
	nsChanges  []string
}

var _ protocol = (*fakeProtocol)(nil)

func (p *fakeProtocol) defaultOptions() *Options { return defaultOptions() }

func (p *fakeProtocol) handshake(e *Engine) error {
	p.handshakes++
	return nil
}

func (p *fakeProtocol) postHandshake(e *Engine) error { return nil }

func (p *fakeProtocol) upgrade(e *Engine) error { return nil }

func (p *fakeProtocol) skipUpgrade(e *Engine) error { return nil }

func (p *fakeProtocol) changeNamespace(e *Engine, namespace string) (string, error) {
	p.nsChanges = append(p.nsChanges, namespace)
	return namespace, nil
}

func (p *fakeProtocol) close(e *Engine) error {
	p.closes++
	return nil
}

func (p *fakeProtocol) emit(e *Engine, event string, args []any) error { return nil }

func (p *fakeProtocol) processPacket(e *Engine, data []byte) (*parser.Packet, error) {
	return nil, nil
}

func (p *fakeProtocol) keepAlive(e *Engine) {}

func (p *fakeProtocol) matchEvent(e *Engine, pk *parser.Packet, event string) *parser.Packet {
	return nil
}

func newTestEngine(proto protocol) *Engine {
	if proto == nil {
		proto = &fakeProtocol{}
	}
	opts := defaultOptions()
	opts.Wait = 0
	u, _ := url.Parse("http://127.0.0.1:3000")
	u.Path = opts.Path
	return &Engine{
		url:   u,
		opts:  opts,
		proto: proto,
		debug: NewNoopDebugger(),
	}
}
