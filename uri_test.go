package redwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri      string
		wantHost string
		wantPort string
		wantTLS  bool
		wantErr  bool
	}{
		{uri: "redis://localhost:6379", wantHost: "localhost", wantPort: "6379"},
		{uri: "rediss://db.example.com:6380", wantHost: "db.example.com", wantPort: "6380", wantTLS: true},
		{uri: "redis://127.0.0.1:1", wantHost: "127.0.0.1", wantPort: "1"},
		{uri: "redis://localhost", wantErr: true},
		{uri: "redis://:6379", wantErr: true},
		{uri: "http://localhost:6379", wantErr: true},
		{uri: "localhost:6379", wantErr: true},
		{uri: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			u, err := parseURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, u.Host)
			assert.Equal(t, tt.wantPort, u.Port)
			assert.Equal(t, tt.wantTLS, u.TLS)
		})
	}
}
