package anchorage

import (
	"math"
	"net/http"

	"github.com/Deivu/Anchorage/logging"
)

// Options configures a new Anchorage fleet registry. Every field is
// optional; the zero value produces sensible defaults.
type Options struct {
	// UserAgent is used in both the stream handshake and HTTP headers.
	// Defaults to "Anchorage/<version>".
	UserAgent string
	// ReconnectTries bounds consecutive stream connect attempts before a
	// node surfaces a failure. Defaults to effectively unbounded.
	ReconnectTries int
	// HTTPClient is shared, clone-cheap, across the whole fleet. Defaults
	// to a freshly constructed client.
	HTTPClient *http.Client
	// Logger is passed to every node manager and its request/response
	// client; the registry itself does not log.
	// Defaults to logging.NewLoggerWithService("anchorage").
	Logger logging.Logger
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.ReconnectTries <= 0 {
		o.ReconnectTries = math.MaxInt32
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Logger == nil {
		o.Logger = logging.NewLoggerWithService("anchorage")
	}
	return o
}

// NodeOptions describes one node to seed a fleet with.
type NodeOptions struct {
	Name string
	Host string
	Port uint16
	Auth string
}
