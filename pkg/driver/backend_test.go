package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		name    string
		want    Backend
		wantErr bool
	}{
		{"chrome", Chrome, false},
		{"Chrome", Chrome, false},
		{"  FIREFOX ", Firefox, false},
		{"edge", Edge, false},
		{"safari", Safari, false},
		{"opera", 0, true},
		{"", 0, true},
		{"chromium", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBackend(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedBrowser))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBackendEngineAndChannel(t *testing.T) {
	tests := []struct {
		backend Backend
		engine  Engine
		channel string
		install string
	}{
		{Chrome, EngineChromium, "chrome", "chrome"},
		{Edge, EngineChromium, "msedge", "msedge"},
		{Firefox, EngineFirefox, "", "firefox"},
		{Safari, EngineWebKit, "", "webkit"},
	}

	for _, tt := range tests {
		t.Run(tt.backend.String(), func(t *testing.T) {
			assert.Equal(t, tt.engine, tt.backend.Engine())
			assert.Equal(t, tt.channel, tt.backend.Channel())
			assert.Equal(t, tt.install, tt.backend.InstallName())
		})
	}
}

func TestBackendRoundTripsThroughName(t *testing.T) {
	for _, b := range Backends {
		got, err := ParseBackend(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
}

func TestUnknownBackendPanics(t *testing.T) {
	assert.Panics(t, func() { Backend(0).Engine() })
	assert.Equal(t, "backend(42)", Backend(42).String())
}

func TestLaunchOptions(t *testing.T) {
	t.Run("chromium gets stability flags and channel", func(t *testing.T) {
		opts := Edge.LaunchOptions(true)
		require.NotNil(t, opts.Headless)
		assert.True(t, *opts.Headless)
		require.NotNil(t, opts.Channel)
		assert.Equal(t, "msedge", *opts.Channel)
		assert.Contains(t, opts.Args, "--disable-notifications")
		assert.Contains(t, opts.Args, "--start-maximized")
		assert.Nil(t, opts.FirefoxUserPrefs)
	})

	t.Run("firefox gets preferences", func(t *testing.T) {
		opts := Firefox.LaunchOptions(false)
		assert.False(t, *opts.Headless)
		assert.Nil(t, opts.Channel)
		assert.Empty(t, opts.Args)
		assert.Equal(t, false, opts.FirefoxUserPrefs["dom.webnotifications.enabled"])
	})

	t.Run("webkit gets defaults only", func(t *testing.T) {
		opts := Safari.LaunchOptions(true)
		assert.Nil(t, opts.Channel)
		assert.Empty(t, opts.Args)
		assert.Nil(t, opts.FirefoxUserPrefs)
	})

	t.Run("callers cannot mutate shared flags", func(t *testing.T) {
		opts := Chrome.LaunchOptions(true)
		opts.Args[0] = "--changed"
		assert.Equal(t, "--start-maximized", Chrome.LaunchOptions(true).Args[0])
	})
}
