package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, map[string]string{})
	require.NoError(t, err)

	want := &Config{ServerEndpointAddr: "127.0.0.1:50051", RequestTimeout: 5 * time.Second, OnlineCheckInterval: 3 * time.Second}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfigFile(t, `{"server_endpoint_addr":"json:1","request_timeout":"9s"}`)

	tests := []struct {
		name    string
		args    []string
		environ map[string]string
		want    *Config
	}{
		{
			name: "json only",
			args: []string{"-c", path},
			want: &Config{ServerEndpointAddr: "json:1", RequestTimeout: 9 * time.Second, OnlineCheckInterval: 3 * time.Second},
		},
		{
			name:    "env over json",
			args:    []string{"-c", path},
			environ: map[string]string{"IDKEEPER_CLIENT_SERVER_ADDR": "env:2"},
			want:    &Config{ServerEndpointAddr: "env:2", RequestTimeout: 9 * time.Second, OnlineCheckInterval: 3 * time.Second},
		},
		{
			name:    "flags over env",
			args:    []string{"-config", path, "-a", "flag:3", "-r", "2"},
			environ: map[string]string{"IDKEEPER_CLIENT_SERVER_ADDR": "env:2", "IDKEEPER_CLIENT_REQUEST_TIMEOUT": "1m"},
			want:    &Config{ServerEndpointAddr: "flag:3", RequestTimeout: 2 * time.Second, OnlineCheckInterval: 3 * time.Second},
		},
		{
			name: "interval flag",
			args: []string{"-i", "10"},
			want: &Config{ServerEndpointAddr: "127.0.0.1:50051", RequestTimeout: 5 * time.Second, OnlineCheckInterval: 10 * time.Second},
		},
		{
			name: "unrelated flags ignored",
			args: []string{"-x", "1", "-a", "flag:4"},
			want: &Config{ServerEndpointAddr: "flag:4", RequestTimeout: 5 * time.Second, OnlineCheckInterval: 3 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}
			cfg, err := Load(tt.args, environ)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want, cfg))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	bad := writeConfigFile(t, `{not json`)

	tests := []struct {
		name    string
		args    []string
		environ map[string]string
	}{
		{"missing file", []string{"-c", filepath.Join(t.TempDir(), "nope.json")}, map[string]string{}},
		{"bad json", []string{"-c", bad}, map[string]string{}},
		{"bad timeout flag", []string{"-r", "abc"}, map[string]string{}},
		{"bad env duration", nil, map[string]string{"IDKEEPER_CLIENT_REQUEST_TIMEOUT": "soon"}},
		{"zero timeout", []string{"-r", "0"}, map[string]string{}},
		{"zero interval", []string{"-i", "0"}, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, tt.environ)
			assert.Error(t, err)
		})
	}
}
