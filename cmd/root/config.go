package root

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/walassistant/wal/pkg/cli"
	"github.com/walassistant/wal/pkg/userconfig"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user configuration",
		Long:  "View and manage user-level wal configuration stored in ~/.config/wal/config.yaml",
		Example: `  # Show the current configuration
  wal config show

  # Show the path to the config file
  wal config path

  # Point wal at the native helper
  wal config set helper.command /usr/local/bin/wal-helper`,
		GroupID: "advanced",
		RunE:    runConfigShowCommand,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		Long:  "Display the current user configuration in YAML format",
		Args:  cobra.NoArgs,
		RunE:  runConfigShowCommand,
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the path to the config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigPathCommand,
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Print one configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: userconfig.Keys,
		RunE:      runConfigGetCommand,
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration value",
		Long: `Change one configuration value. helper.args takes a comma separated list.
An empty value clears the key.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: userconfig.Keys,
		RunE:      runConfigSetCommand,
	}
}

func runConfigShowCommand(cmd *cobra.Command, _ []string) error {
	out := cli.NewPrinter(cmd.OutOrStdout())

	config, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := yaml.MarshalWithOptions(config, yaml.IndentSequence(true), yaml.UseSingleQuote(false))
	if err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}

	out.Print(string(data))
	return nil
}

func runConfigPathCommand(cmd *cobra.Command, _ []string) error {
	out := cli.NewPrinter(cmd.OutOrStdout())
	out.Println(userconfig.Path())
	return nil
}

func runConfigGetCommand(cmd *cobra.Command, args []string) error {
	out := cli.NewPrinter(cmd.OutOrStdout())

	config, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	value, err := config.Get(args[0])
	if err != nil {
		return err
	}
	out.Println(value)
	return nil
}

func runConfigSetCommand(cmd *cobra.Command, args []string) error {
	config, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := config.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
