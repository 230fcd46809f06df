// Package main installs the Playwright driver and the browsers the login
// suite runs against, so test runs can pass -skip-install.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/entrhq/storefront-e2e/pkg/config"
	"github.com/entrhq/storefront-e2e/pkg/driver"
	"github.com/entrhq/storefront-e2e/pkg/logging"
	"github.com/playwright-community/playwright-go"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	Browser     string
	All         bool
	Show        bool
	DryRun      bool
	ShowVersion bool
}

func main() {
	if err := newRootCommand(playwright.Install).Execute(); err != nil {
		log.Printf("Setup failed: %v", err)
		os.Exit(1)
	}
}

func newRootCommand(install installFunc) *cobra.Command {
	cli := &CLIConfig{}

	cmd := &cobra.Command{
		Use:   "storefront-setup",
		Short: "Browser install helper for the storefront e2e suite",
		Long: `Install the Playwright driver and the browser the login suite is
configured for, so test runs can pass -skip-install.

	Examples:
	  storefront-setup
	  storefront-setup --browser firefox
	  storefront-setup --all --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cli.ShowVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "storefront-setup v%s\n", version)
				return nil
			}
			return run(cli, install)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cli.ConfigFile, "config", "c", "", "path to config.properties (default: discovered from the working directory)")
	flags.StringVarP(&cli.Browser, "browser", "b", "", "browser to install, overriding the configured one")
	flags.BoolVar(&cli.All, "all", false, "install every supported browser")
	flags.BoolVar(&cli.Show, "show-config", false, "print the resolved configuration")
	flags.BoolVar(&cli.DryRun, "dry-run", false, "print what would be installed without installing")
	flags.BoolVarP(&cli.ShowVersion, "version", "v", false, "show version and exit")
	cmd.MarkFlagsMutuallyExclusive("browser", "all")

	return cmd
}

type installFunc func(opts ...*playwright.RunOptions) error

func run(cli *CLIConfig, install installFunc) error {
	cfg, err := loadConfig(cli.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Configure(cfg.LogDirectory(), cfg.LogLevel())
	logger := logging.MustLogger("setup")

	if cli.Show {
		printConfig(cfg)
	}

	browsers, err := browsersToInstall(cli, cfg)
	if err != nil {
		return err
	}

	if cli.DryRun {
		fmt.Printf("Would install Playwright driver and: %v\n", browsers)
		return nil
	}

	logger.Infof("Installing Playwright driver and %v", browsers)
	fmt.Printf("Installing Playwright driver and %v...\n", browsers)
	if err := install(&playwright.RunOptions{
		Browsers: browsers,
		Stdout:   logger.Writer(),
		Stderr:   logger.Writer(),
	}); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	logger.Infof("Install complete")
	fmt.Println("Done.")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		resolved, err := config.Resolve(".")
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return config.Load(path)
}

// browsersToInstall returns the installer names, deduplicated and sorted.
func browsersToInstall(cli *CLIConfig, cfg *config.Config) ([]string, error) {
	if cli.All {
		seen := map[string]bool{}
		var names []string
		for _, b := range driver.Backends {
			if name := b.InstallName(); !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return names, nil
	}

	name := cli.Browser
	if name == "" {
		name = cfg.Browser()
	}
	backend, err := driver.ParseBackend(name)
	if err != nil {
		return nil, err
	}
	return []string{backend.InstallName()}, nil
}

func printConfig(cfg *config.Config) {
	fmt.Printf("Configuration: %s\n", cfg.Source())
	for _, key := range cfg.Keys() {
		value, _ := cfg.Get(key)
		if key == config.KeyStandardPassword {
			value = "********"
		}
		fmt.Printf("  %s = %s\n", key, value)
	}
}
