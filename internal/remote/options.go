package remote

import (
	"net/http"
	"time"
)

// DefaultBaseURL is the students resource of a locally running API.
const DefaultBaseURL = "http://localhost:5000/students"

type Option func(*Options)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithTimeout bounds every request made by a client that was not given its
// own *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = c
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		BaseURL: DefaultBaseURL,
		Timeout: 10 * time.Second,
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}
