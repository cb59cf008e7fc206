// Options configures a Dial* entry point. Fields are set directly on
// the struct; every zero value has a usable default.
package redwire

import (
	"crypto/tls"
	"time"

	"go.uber.org/zap"
)

// Options configures a connection. The zero value is usable: it dials
// with no timeout, no TLS override, a no-op logger, and fresh default
// codec registries.
type Options struct {
	// DialTimeout bounds TCP/TLS connection establishment. Zero means no
	// timeout.
	DialTimeout time.Duration

	// TLSConfig is used for rediss:// URIs. A nil value falls back to a
	// config with ServerName set to the URI host.
	TLSConfig *tls.Config

	// Logger receives connection lifecycle and protocol-error events. A
	// nil value is treated as zap.NewNop().
	Logger *zap.Logger

	// Encoders/Decoders seed a new connection's codec. A nil value
	// builds fresh defaults via NewEncoders/NewDecoders. Pass a shared
	// registry's Clone() to extend defaults across every connection a
	// process dials without mutation on one leaking into another.
	Encoders *Encoders
	Decoders *Decoders
}

func (o Options) dialTimeout() time.Duration { return o.DialTimeout }

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func (o Options) encoders() *Encoders {
	if o.Encoders != nil {
		return o.Encoders.Clone()
	}
	return NewEncoders()
}

func (o Options) decoders() *Decoders {
	if o.Decoders != nil {
		return o.Decoders.Clone()
	}
	return NewDecoders()
}
