package websocket

import (
	"net/http"
	"strings"
	"time"
)

// options holds the dialer settings recognized inside the opaque option
// map. Everything else in the map is pass-through and ignored here.
type options struct {
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	compression      bool
	readBufferSize   int
	writeBufferSize  int
	headers          http.Header
}

func parseOptions(raw map[string]any) options {
	opts := options{
		handshakeTimeout: 10 * time.Second,
		writeTimeout:     10 * time.Second,
	}
	for key, value := range raw {
		switch key {
		case "handshake_timeout":
			if d, ok := asDuration(value); ok {
				opts.handshakeTimeout = d
			}
		case "write_timeout":
			if d, ok := asDuration(value); ok {
				opts.writeTimeout = d
			}
		case "compression":
			if b, ok := value.(bool); ok {
				opts.compression = b
			}
		case "read_buffer_size":
			if n, ok := asInt(value); ok {
				opts.readBufferSize = n
			}
		case "write_buffer_size":
			if n, ok := asInt(value); ok {
				opts.writeBufferSize = n
			}
		case "headers":
			opts.headers = asHeaders(value)
		}
	}
	return opts
}

func asDuration(value any) (time.Duration, bool) {
	switch v := value.(type) {
	case time.Duration:
		return v, true
	case string:
		d, err := time.ParseDuration(v)
		return d, err == nil
	case int:
		return time.Duration(v) * time.Second, true
	}
	return 0, false
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func asHeaders(value any) http.Header {
	headers := http.Header{}
	switch v := value.(type) {
	case http.Header:
		return v
	case map[string]string:
		for name, val := range v {
			headers.Set(name, val)
		}
	case map[string]any:
		for name, val := range v {
			if s, ok := val.(string); ok {
				headers.Set(name, s)
			}
		}
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

// normalizeURL rewrites http(s) schemes to their websocket
// counterparts so callers can keep socket-style http base URLs.
func normalizeURL(rawURL string) string {
	switch {
	case strings.HasPrefix(rawURL, "https://"):
		return "wss://" + strings.TrimPrefix(rawURL, "https://")
	case strings.HasPrefix(rawURL, "http://"):
		return "ws://" + strings.TrimPrefix(rawURL, "http://")
	}
	return rawURL
}
