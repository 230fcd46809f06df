package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/entrhq/storefront-e2e/pkg/config"
	"github.com/entrhq/storefront-e2e/pkg/driver"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.properties")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestBrowsersToInstall(t *testing.T) {
	cfg := config.FromMap(map[string]string{config.KeyBrowser: "edge"})

	tests := []struct {
		name    string
		cli     CLIConfig
		want    []string
		wantErr error
	}{
		{name: "configured browser", want: []string{"msedge"}},
		{name: "flag overrides config", cli: CLIConfig{Browser: "Safari"}, want: []string{"webkit"}},
		{name: "all backends", cli: CLIConfig{All: true}, want: []string{"chrome", "firefox", "msedge", "webkit"}},
		{name: "unsupported", cli: CLIConfig{Browser: "opera"}, wantErr: driver.ErrUnsupportedBrowser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := tt.cli
			got, err := browsersToInstall(&cli, cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunInstallsConfiguredBrowser(t *testing.T) {
	path := writeConfig(t, "base.url=https://www.saucedemo.com/\nbrowser=firefox\nlog.directory="+t.TempDir()+"\n")

	var got []*playwright.RunOptions
	err := run(&CLIConfig{ConfigFile: path}, func(opts ...*playwright.RunOptions) error {
		got = append(got, opts...)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"firefox"}, got[0].Browsers)
	assert.NotNil(t, got[0].Stdout)
}

func TestRunDryRunSkipsInstall(t *testing.T) {
	path := writeConfig(t, "browser=chrome\n")

	called := false
	err := run(&CLIConfig{ConfigFile: path, DryRun: true}, func(opts ...*playwright.RunOptions) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called)
}

func TestRunWrapsInstallFailure(t *testing.T) {
	path := writeConfig(t, "browser=chrome\n")
	boom := errors.New("download failed")

	err := run(&CLIConfig{ConfigFile: path}, func(opts ...*playwright.RunOptions) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to install playwright")
}

func TestRunMissingConfig(t *testing.T) {
	err := run(&CLIConfig{ConfigFile: filepath.Join(t.TempDir(), "missing.properties")}, nil)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestRootCommand(t *testing.T) {
	path := writeConfig(t, "browser=chrome\n")

	t.Run("version", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCommand(nil)
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--version"})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, "storefront-setup v"+version+"\n", out.String())
	})

	t.Run("browser flag", func(t *testing.T) {
		var got []string
		cmd := newRootCommand(func(opts ...*playwright.RunOptions) error {
			got = opts[0].Browsers
			return nil
		})
		cmd.SetArgs([]string{"--config", path, "-b", "edge"})
		require.NoError(t, cmd.Execute())
		assert.Equal(t, []string{"msedge"}, got)
	})

	t.Run("browser and all conflict", func(t *testing.T) {
		cmd := newRootCommand(nil)
		cmd.SetArgs([]string{"--config", path, "--browser", "edge", "--all"})
		assert.Error(t, cmd.Execute())
	})
}
