package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.APIBaseURL)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.NotEmpty(t, cfg.FilesDir)
	assert.NotEmpty(t, cfg.PrefsDir)
	assert.Equal(t, 15*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string form", input: `"45s"`, want: 45 * time.Second},
		{name: "nanoseconds", input: `1500000000`, want: 1500 * time.Millisecond},
		{name: "unparsable string", input: `"soon"`, wantErr: true},
		{name: "wrong type", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestParseJSON_OverridesOnlyNamedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{"api_base_url": "https://api.example.com", "online_check_interval": "45s"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"app", "-config", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseJSON(cfg))

	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 45*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "info", cfg.LogLevel, "fields absent from the file keep their defaults")
}

func TestParseJSON_MissingFileIsAnError(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"app", "-config", filepath.Join(t.TempDir(), "nope.json")}

	cfg := &Config{}
	cfg.LoadDefaults()
	assert.Error(t, parseJSON(cfg))
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("SITESINC_API_URL", "https://env.example.com")
	t.Setenv("SITESINC_REQUEST_TIMEOUT", "90s")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	args := []string{"-a", "https://flag.example.com", "-i", "60", "-l", "debug", "-config", "ignored.json"}
	require.NoError(t, parseFlags(cfg, args))

	assert.Equal(t, "https://flag.example.com", cfg.APIBaseURL)
	assert.Equal(t, 60*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg.LoadDefaults()
	cfg.APIBaseURL = "not a url"
	assert.Error(t, cfg.Validate())
}
