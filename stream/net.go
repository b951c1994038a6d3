package stream

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Options struct {
	// Per-operation I/O timeout. Zero disables deadlines.
	Timeout time.Duration

	// TLS configuration for https/wss targets.
	TLSConfig *tls.Config

	// Dial timeout. Defaults to Timeout when zero.
	ConnectTimeout time.Duration
}

type netStream struct {
	conn net.Conn
	// All reads go through br so bytes buffered during an HTTP
	// exchange are not lost to a later raw Read.
	br *bufio.Reader

	host    string
	timeout time.Duration
	closed  bool

	status      int
	body        []byte
	headerLines []string
}

// Dial opens a TCP (and for https/wss targets, TLS) connection to the
// URL's host. The ws/wss schemes are accepted and treated as their
// HTTP equivalents.
func Dial(u *url.URL, opts *Options) (Stream, error) {
	if opts == nil {
		opts = new(Options)
	}

	secure := false
	switch u.Scheme {
	case "https", "wss":
		secure = true
	case "http", "ws":
	default:
		return nil, fmt.Errorf("stream: unsupported scheme: %s", u.Scheme)
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		if secure {
			port = "443"
		} else {
			port = "80"
		}
	}
	addr := net.JoinHostPort(host, port)

	connectTimeout := opts.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = opts.Timeout
	}

	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return nil, err
	}

	if secure {
		config := opts.TLSConfig
		if config == nil {
			config = &tls.Config{}
		}
		if config.ServerName == "" {
			config = config.Clone()
			config.ServerName = host
		}
		tlsConn := tls.Client(conn, config)
		if opts.Timeout > 0 {
			tlsConn.SetDeadline(time.Now().Add(opts.Timeout))
		}
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, err
		}
		tlsConn.SetDeadline(time.Time{})
		conn = tlsConn
	}

	return &netStream{
		conn:    conn,
		br:      bufio.NewReader(conn),
		host:    u.Host,
		timeout: opts.Timeout,
	}, nil
}

func (s *netStream) Connected() bool {
	return s.conn != nil && !s.closed
}

func (s *netStream) deadline() time.Time {
	if s.timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.timeout)
}

func (s *netStream) Read(max int) ([]byte, error) {
	if !s.Connected() {
		return nil, io.ErrClosedPipe
	}
	s.conn.SetReadDeadline(s.deadline())
	buf := make([]byte, max)
	n, err := s.br.Read(buf)
	if err != nil {
		if err == io.EOF {
			s.closed = true
		}
		return nil, err
	}
	return buf[:n], nil
}

func (s *netStream) Write(p []byte) (int, error) {
	if !s.Connected() {
		return 0, io.ErrClosedPipe
	}
	s.conn.SetWriteDeadline(s.deadline())
	return s.conn.Write(p)
}

func (s *netStream) Close() error {
	if s.conn == nil || s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func (s *netStream) Request(uri string, headers []string, opts *RequestOptions) error {
	if !s.Connected() {
		return io.ErrClosedPipe
	}
	if opts == nil {
		opts = new(RequestOptions)
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", method, uri)
	fmt.Fprintf(&b, "Host: %s\r\n", s.host)

	hasContentType := false
	for _, line := range headers {
		b.WriteString(line)
		b.WriteString("\r\n")
		if strings.HasPrefix(strings.ToLower(line), "content-type:") {
			hasContentType = true
		}
	}
	if len(opts.Body) > 0 {
		if !hasContentType {
			b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		}
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(opts.Body))
	}
	b.WriteString("\r\n")

	s.conn.SetWriteDeadline(s.deadline())
	if _, err := s.conn.Write([]byte(b.String())); err != nil {
		return err
	}
	if len(opts.Body) > 0 {
		if _, err := s.conn.Write(opts.Body); err != nil {
			return err
		}
	}

	s.conn.SetReadDeadline(s.deadline())
	resp, err := http.ReadResponse(s.br, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	s.status = resp.StatusCode
	s.headerLines = headerLines(resp.Header)

	// 1xx responses (in particular 101 Switching Protocols) carry no
	// body; draining one would swallow frames.
	if resp.StatusCode >= 200 {
		s.body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
	} else {
		s.body = nil
	}
	return nil
}

func (s *netStream) Status() int { return s.status }

func (s *netStream) Body() []byte { return s.body }

func (s *netStream) HeaderLines() []string { return s.headerLines }

func (s *netStream) SetTimeout(timeout time.Duration) {
	s.timeout = timeout
}

func headerLines(h http.Header) []string {
	lines := make([]string, 0, len(h))
	for name, values := range h {
		for _, value := range values {
			lines = append(lines, name+": "+value)
		}
	}
	return lines
}
