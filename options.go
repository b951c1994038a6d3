package sio

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/mitchellh/mapstructure"
)

// Options configures an Engine. Every field has a working default;
// the zero value is usable. Options are resolved once, when the
// engine is constructed, and are not read back after Connect begins,
// with the exception of Timeout which SetTimeout may update live.
type Options struct {
	// Log protocol traffic to stdout.
	//
	// Default value is: false
	Debug bool

	// Pacing delay slept after every write, for servers that
	// rate-limit rapid successive frames.
	//
	// Default value is: 100ms
	Wait time.Duration

	// I/O timeout for reads, writes and polling exchanges.
	//
	// Default value is: 5s
	Timeout time.Duration

	// Keep one stream open across polling requests. When false every
	// exchange dials a fresh connection, trading setup cost for
	// isolation from stale-connection errors.
	//
	// Default value is: true
	ReuseConnection bool

	// Allow-list restricting which transports may be used, including
	// as upgrade targets. Nil means all transports are allowed.
	Transports mapset.Set[string]

	// Initial transport to connect with.
	//
	// Default value is: polling
	Transport Transport

	// Engine.IO protocol version: 3 or 4.
	//
	// Default value is: 4
	Version int

	// Authentication data sent with the namespace connect packet
	// (protocol version 4). A struct or a map.
	Auth any

	// Additional HTTP headers for handshake, polling and upgrade
	// requests. Can be used for authentication.
	Headers http.Header

	// Additional query parameters for every request.
	Query url.Values

	// Mount path of the server.
	//
	// Default value is: /socket.io
	Path string

	// TLS configuration for https/wss targets.
	TLSConfig *tls.Config
}

func defaultOptions() *Options {
	return &Options{
		Wait:            100 * time.Millisecond,
		Timeout:         5 * time.Second,
		ReuseConnection: true,
		Transport:       TransportPolling,
		Version:         4,
		Path:            "/socket.io",
	}
}

// merge fills o's zero fields from d.
func (o *Options) merge(d *Options) {
	if o.Wait == 0 {
		o.Wait = d.Wait
	}
	if o.Timeout == 0 {
		o.Timeout = d.Timeout
	}
	if o.Transport == "" {
		o.Transport = d.Transport
	}
	if o.Version == 0 {
		o.Version = d.Version
	}
	if o.Path == "" {
		o.Path = d.Path
	}
}

func (o *Options) allowsTransport(t Transport) bool {
	return o.Transports == nil || o.Transports.Contains(string(t))
}

// optionBag is the loosely-typed form accepted by NewOptionsFromMap.
// Durations use the units of the wire protocol configuration: wait
// in milliseconds, timeout in seconds.
type optionBag struct {
	Debug           *bool    `mapstructure:"debug"`
	Wait            *int64   `mapstructure:"wait"`
	Timeout         *int64   `mapstructure:"timeout"`
	ReuseConnection *bool    `mapstructure:"reuse_connection"`
	Transports      []string `mapstructure:"transports"`
	Transport       string   `mapstructure:"transport"`
	Version         *int     `mapstructure:"version"`
	Path            string   `mapstructure:"path"`
}

// NewOptionsFromMap builds Options from a loose key/value bag merged
// over the defaults. Unknown keys are rejected rather than silently
// accepted.
func NewOptionsFromMap(m map[string]any) (*Options, error) {
	bag := new(optionBag)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           bag,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err = decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("sio: invalid options: %w", err)
	}

	o := defaultOptions()
	if bag.Debug != nil {
		o.Debug = *bag.Debug
	}
	if bag.Wait != nil {
		o.Wait = time.Duration(*bag.Wait) * time.Millisecond
	}
	if bag.Timeout != nil {
		o.Timeout = time.Duration(*bag.Timeout) * time.Second
	}
	if bag.ReuseConnection != nil {
		o.ReuseConnection = *bag.ReuseConnection
	}
	if bag.Transports != nil {
		o.Transports = mapset.NewThreadUnsafeSet(bag.Transports...)
	}
	if bag.Transport != "" {
		o.Transport = Transport(bag.Transport)
	}
	if bag.Version != nil {
		o.Version = *bag.Version
	}
	if bag.Path != "" {
		o.Path = bag.Path
	}
	return o, nil
}
