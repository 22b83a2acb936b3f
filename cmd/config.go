package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/dormant/config"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Long: `Show or manage configuration.

When run without arguments, shows the current merged configuration.

Subcommands:
  init      Create a minimal config file
  path      Show config file locations
  defaults  Show all default values
  show      Show current merged config (same as bare 'dormant config')`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(NewCmdConfigInit())
	cmd.AddCommand(NewCmdConfigPath())
	cmd.AddCommand(NewCmdConfigDefaults())
	cmd.AddCommand(NewCmdConfigShow())

	return cmd
}

// NewCmdConfigInit creates the config init subcommand.
func NewCmdConfigInit() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a minimal config file",
		Long: `Create a minimal config file with starter settings.

Without flags the global config is created; use --local to create
./.dormant.yaml for this directory only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(local)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Create local config file (./.dormant.yaml)")

	return cmd
}

// NewCmdConfigPath creates the config path subcommand.
func NewCmdConfigPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Long:  `Show the paths to global and local config files and indicate which exist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath()
		},
	}
}

// NewCmdConfigDefaults creates the config defaults subcommand.
func NewCmdConfigDefaults() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Show all default configuration values",
		Long: `Show a complete configuration with all default values.

This can be redirected to create a config file with all defaults:
  dormant config defaults > ~/.config/dormant/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeConfig(config.DefaultConfig(), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigShow creates the config show subcommand.
func NewCmdConfigShow() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current merged configuration",
		Long:  `Show the current configuration after merging defaults, global, and local configs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

func runConfigShow(outputFormat string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return writeConfig(cfg, outputFormat)
}

func writeConfig(cfg *config.Config, outputFormat string) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	default:
		out, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}
}

func runConfigInit(local bool) error {
	path := config.ConfigPath()
	if local {
		path = config.LocalConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.SaveTo(path, config.MinimalConfig()); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", path)
	return nil
}

func runConfigPath() error {
	info := config.GetConfigPaths()

	printPath := func(label, path string, exists bool) {
		marker := " (not found)"
		if exists {
			marker = ""
		}
		fmt.Printf("%s: %s%s\n", label, path, marker)
	}

	printPath("global", info.GlobalPath, info.GlobalExists)
	printPath("local", info.LocalPath, info.LocalExists)
	return nil
}
