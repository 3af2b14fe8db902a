package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/kbsearch/configs"
	"github.com/Aman-CERP/kbsearch/internal/config"
	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
	"github.com/Aman-CERP/kbsearch/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage kbsearch configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/kbsearch/config.yaml)
  3. Project config (.kbsearch.yaml in --root)
  4. Environment variables (KBSEARCH_*)`,
		Example: `  # Write a project config with the defaults
  kbsearch config init

  # Show effective configuration as JSON
  kbsearch config show --json

  # Print user config file path
  kbsearch config path`,
	}

	cmd.AddCommand(newConfigInitCmd(a))
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force, user bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from the template",
		Long: `Create .kbsearch.yaml in --root, or the user config with --user.

An existing file is left alone unless --force is given. With --force the
file is backed up and rewritten with every setting spelled out, keeping
the values it already had.`,
		Example: `  # Create .kbsearch.yaml in the current directory
  kbsearch config init

  # Create the user config
  kbsearch config init --user

  # Upgrade an existing config with new defaults (preserves your settings)
  kbsearch config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, tmpl := config.GetUserConfigPath(), configs.UserConfigTemplate
			if !user {
				root, err := a.rootDir()
				if err != nil {
					return err
				}
				path, tmpl = filepath.Join(root, config.ProjectConfigYAML), configs.ProjectConfigTemplate
			}
			return runConfigInit(cmd, a, path, tmpl, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upgrade an existing file after backing it up")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user config instead of the project config")

	return cmd
}

func runConfigInit(cmd *cobra.Command, a *app, path, tmpl string, force bool) error {
	out := a.writer(cmd)

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Status("💡", "Use --force to upgrade with new defaults (preserves your settings)")
			return nil
		}
		return runConfigUpgrade(out, a, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return kberrors.ConfigError("failed to create config directory", err)
	}
	if err := os.WriteFile(path, []byte(tmpl), 0o644); err != nil {
		return kberrors.ConfigError("failed to write configuration", err)
	}

	out.Successf("Created %s", path)
	a.log().Info("config_written", "path", path)
	return nil
}

// runConfigUpgrade backs up path and rewrites it as defaults merged with
// the values it already sets.
func runConfigUpgrade(out *output.Writer, a *app, path string) error {
	existing, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	backup, err := config.Backup(path)
	if err != nil {
		return kberrors.ConfigError("failed to back up configuration", err)
	}
	if err := existing.WriteYAML(path); err != nil {
		return kberrors.ConfigError("failed to write configuration", err)
	}

	out.Successf("Upgraded %s", path)
	out.Statusf("💾", "Backup: %s", backup)
	a.log().Info("config_upgraded", "path", path, "backup", backup)
	return nil
}

func newConfigShowCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Example: `  kbsearch config show
  kbsearch config show --source defaults --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg *config.Config
			switch source {
			case "merged":
				loaded, _, err := a.loadConfig()
				if err != nil {
					return err
				}
				cfg = loaded
			case "defaults":
				cfg = config.NewConfig()
			default:
				return kberrors.ValidationError(fmt.Sprintf("unknown config source %q", source), nil).
					WithSuggestion("Use --source merged or --source defaults")
			}

			if jsonOutput {
				return a.writer(cmd).JSON(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}
