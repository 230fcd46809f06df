package driver_test

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/storefront-e2e/pkg/config"
	"github.com/entrhq/storefront-e2e/pkg/driver"
	"github.com/entrhq/storefront-e2e/pkg/driver/drivertest"
	"github.com/entrhq/storefront-e2e/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() driver.Options {
	return driver.Options{
		Backend:  driver.Chrome,
		Headless: true,
		Timeouts: driver.Timeouts{
			ImplicitWait: 10 * time.Second,
			PageLoad:     30 * time.Second,
		},
	}
}

func TestRegistrySessionIsIdempotent(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	first, err := reg.Session("worker-1")
	require.NoError(t, err)
	second, err := reg.Session("worker-1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, launcher.Launches())
	assert.Equal(t, 1, reg.Active())
	assert.Equal(t, driver.WorkerID("worker-1"), first.Worker)
	assert.Equal(t, driver.Chrome, first.Backend)
}

func TestRegistryAppliesTimeoutsOnce(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	for i := 0; i < 3; i++ {
		_, err := reg.Session("worker-1")
		require.NoError(t, err)
	}

	page := launcher.Pages()[0]
	assert.Equal(t, 1, page.TimeoutCalls)
	assert.Equal(t, float64(10000), page.DefaultTimeout)
	assert.Equal(t, float64(30000), page.NavigationTimeout)
}

func TestRegistryMaximizes(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	s, err := reg.Session("worker-1")
	require.NoError(t, err)

	assert.True(t, s.Maximized)
	assert.Equal(t, [2]int{2560, 1440}, launcher.Pages()[0].Viewport)
}

func TestRegistryMaximizeFailureIsNotFatal(t *testing.T) {
	launcher := &drivertest.Launcher{
		NewPage: func() *drivertest.Page {
			p := drivertest.NewPage()
			p.ViewportErr = errors.New("window manager refused")
			return p
		},
	}
	reg := driver.NewRegistry(launcher, testOptions())

	s, err := reg.Session("worker-1")
	require.NoError(t, err)
	assert.False(t, s.Maximized)
	assert.Equal(t, 1, reg.Active())
}

func TestRegistryLaunchFailure(t *testing.T) {
	launcher := &drivertest.Launcher{LaunchErr: drivertest.ErrLaunch}
	reg := driver.NewRegistry(launcher, testOptions())

	s, err := reg.Session("worker-1")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, drivertest.ErrLaunch))
	assert.Equal(t, 0, reg.Active())

	_, ok := reg.Lookup("worker-1")
	assert.False(t, ok)
}

func TestRegistryWorkersAreIsolated(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	a, err := reg.Session("worker-a")
	require.NoError(t, err)
	b, err := reg.Session("worker-b")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, reg.Active())

	reg.Close("worker-a")
	_, ok := reg.Lookup("worker-a")
	assert.False(t, ok)
	still, ok := reg.Lookup("worker-b")
	require.True(t, ok)
	assert.Same(t, b, still)
}

func TestRegistryCloseThenSessionStartsFresh(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	first, err := reg.Session("worker-1")
	require.NoError(t, err)
	reg.Close("worker-1")

	assert.True(t, launcher.Pages()[0].Closed)
	assert.Equal(t, 0, reg.Active())

	second, err := reg.Session("worker-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, launcher.Launches())
}

func TestRegistryCloseWithoutSession(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	assert.NotPanics(t, func() { reg.Close("nobody") })
	assert.Equal(t, 0, launcher.Launches())
}

func TestRegistryCloseSwallowsQuitErrors(t *testing.T) {
	launcher := &drivertest.Launcher{
		NewPage: func() *drivertest.Page {
			p := drivertest.NewPage()
			p.CloseErr = errors.New("browser already gone")
			return p
		},
	}
	reg := driver.NewRegistry(launcher, testOptions())

	_, err := reg.Session("worker-1")
	require.NoError(t, err)

	assert.NotPanics(t, func() { reg.Close("worker-1") })
	assert.Equal(t, 0, reg.Active())
}

func TestRegistryCloseAll(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	for i := 0; i < 3; i++ {
		_, err := reg.Session(driver.WorkerID(fmt.Sprintf("worker-%d", i)))
		require.NoError(t, err)
	}
	require.Equal(t, 3, reg.Active())

	reg.CloseAll()

	assert.Equal(t, 0, reg.Active())
	for _, p := range launcher.Pages() {
		assert.True(t, p.Closed)
	}
	assert.Equal(t, 1, launcher.Stops())

	assert.NotPanics(t, reg.CloseAll)
	assert.Equal(t, 0, reg.Active())
}

func TestRegistryCloseAllLogsSweptSessions(t *testing.T) {
	logging.Configure("", logging.LevelDebug)
	t.Cleanup(func() { logging.Configure("", logging.LevelInfo) })

	path := logging.MustLogger("driver-test").LogPath()
	if path == "" {
		t.Skip("file logging unavailable")
	}

	reg := driver.NewRegistry(&drivertest.Launcher{}, testOptions())
	s, err := reg.Session("worker-sweep")
	require.NoError(t, err)
	info := s.Info()

	reg.CloseAll()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sweeping session "+info.String())
}

func TestRegistryConcurrentWorkers(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			worker := driver.WorkerID(fmt.Sprintf("worker-%d", i))
			s, err := reg.Session(worker)
			if err != nil {
				t.Errorf("Session(%s) error = %v", worker, err)
				return
			}
			ids[i] = s.ID
			reg.Close(worker)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "session %s handed out twice", id)
		seen[id] = true
	}
	assert.Equal(t, workers, launcher.Launches())
	assert.Equal(t, 0, reg.Active())
}

func TestRegistryList(t *testing.T) {
	launcher := &drivertest.Launcher{}
	reg := driver.NewRegistry(launcher, testOptions())

	_, err := reg.Session("worker-b")
	require.NoError(t, err)
	_, err = reg.Session("worker-a")
	require.NoError(t, err)

	infos := reg.List()
	require.Len(t, infos, 2)
	assert.Equal(t, driver.WorkerID("worker-a"), infos[0].Worker)
	assert.Equal(t, driver.WorkerID("worker-b"), infos[1].Worker)
	assert.Contains(t, infos[0].String(), "worker-a/chrome")
}

func TestRegistryPassesLaunchSpec(t *testing.T) {
	launcher := &drivertest.Launcher{}
	opts := testOptions()
	opts.Backend = driver.Firefox
	opts.Headless = false
	reg := driver.NewRegistry(launcher, opts)

	_, err := reg.Session("worker-1")
	require.NoError(t, err)

	specs := launcher.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, driver.LaunchSpec{Backend: driver.Firefox, Headless: false}, specs[0])
}

func TestOptionsFromConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := config.FromMap(map[string]string{
			config.KeyBrowser:         "edge",
			config.KeyHeadless:        "false",
			config.KeyImplicitWait:    "5",
			config.KeyPageLoadTimeout: "20",
		})
		opts, err := driver.OptionsFromConfig(cfg)
		require.NoError(t, err)
		assert.Equal(t, driver.Edge, opts.Backend)
		assert.False(t, opts.Headless)
		assert.Equal(t, 5*time.Second, opts.Timeouts.ImplicitWait)
		assert.Equal(t, 20*time.Second, opts.Timeouts.PageLoad)
	})

	t.Run("unsupported browser", func(t *testing.T) {
		cfg := config.FromMap(map[string]string{
			config.KeyBrowser:         "opera",
			config.KeyImplicitWait:    "5",
			config.KeyPageLoadTimeout: "20",
		})
		_, err := driver.OptionsFromConfig(cfg)
		assert.True(t, errors.Is(err, driver.ErrUnsupportedBrowser))
	})

	t.Run("malformed timeout", func(t *testing.T) {
		cfg := config.FromMap(map[string]string{
			config.KeyImplicitWait:    "soon",
			config.KeyPageLoadTimeout: "20",
		})
		_, err := driver.OptionsFromConfig(cfg)
		assert.True(t, errors.Is(err, config.ErrInvalidValue))
	})
}
