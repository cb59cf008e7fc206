// Connection URI parsing: redis://host:port or rediss://host:port. Host
// must be non-empty and the port is mandatory; anything else is a
// format error.
package redwire

import (
	"fmt"
	"net"
	"strings"
)

type redisURI struct {
	Host string
	Port string
	TLS  bool
}

func parseURI(uri string) (*redisURI, error) {
	var rest string
	var tlsOn bool
	switch {
	case strings.HasPrefix(uri, "rediss://"):
		rest = uri[len("rediss://"):]
		tlsOn = true
	case strings.HasPrefix(uri, "redis://"):
		rest = uri[len("redis://"):]
	default:
		return nil, fmt.Errorf("redwire: invalid uri %q: must start with redis:// or rediss://", uri)
	}

	host, port, err := net.SplitHostPort(rest)
	if err != nil {
		return nil, fmt.Errorf("redwire: invalid uri %q: %w", uri, err)
	}
	if host == "" {
		return nil, fmt.Errorf("redwire: invalid uri %q: empty host", uri)
	}
	if port == "" {
		return nil, fmt.Errorf("redwire: invalid uri %q: missing port", uri)
	}
	return &redisURI{Host: host, Port: port, TLS: tlsOn}, nil
}
