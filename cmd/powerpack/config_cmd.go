package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/powerpack/internal/config"
	"github.com/muurk/powerpack/internal/ui"
)

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configAddCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Manage the instances and preferences stored in the configuration file.

Client secrets are never stored; set ` + config.SecretEnvVar + ` or enter
the secret when prompted.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a configuration file with an example instance.

When run from a terminal the command asks for the instance details instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsTerminal() {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		}

		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if len(registry.Instances) > 0 {
			return fmt.Errorf("config file already exists: %s (use 'powerpack config add')", path)
		}

		in, out := cmd.InOrStdin(), cmd.OutOrStdout()
		name, err := config.Prompt(in, out, "Instance name", "default")
		if err != nil {
			return err
		}
		url, err := config.Prompt(in, out, "API base URL", "")
		if err != nil {
			return err
		}
		id, err := config.Prompt(in, out, "API client ID", "")
		if err != nil {
			return err
		}
		return addInstance(cmd, registry, name, url, id)
	},
}

var configAddCmd = &cobra.Command{
	Use:     "add <name> <base-url> <client-id>",
	Short:   "Add or replace an instance",
	Example: `  powerpack config add prod https://acme.cloud.looker.com:19999 AbCdEf123`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return addInstance(cmd, registry, args[0], args[1], args[2])
	},
}

func addInstance(cmd *cobra.Command, registry *config.Registry, name, url, id string) error {
	if name == "" || url == "" || id == "" {
		return fmt.Errorf("instance name, base URL and client ID are required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("base URL must start with http:// or https://")
	}

	registry.SetInstance(name, strings.TrimRight(url, "/"), id)
	if err := registry.Save(); err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintSuccess("Instance saved",
		ui.Field{Key: "Name", Value: name},
		ui.Field{Key: "URL", Value: url},
		ui.Field{Key: "Default", Value: registry.Preferences.DefaultInstance},
	)
	return nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		prefs := registry.Preferences
		bridge := prefs.BridgeAddr
		if bridge == "" {
			bridge = "disabled"
		}
		p.PrintHeader("Configuration", "config show",
			ui.Field{Key: "File", Value: path},
			ui.Field{Key: "Default", Value: orDash(prefs.DefaultInstance)},
			ui.Field{Key: "Timeout", Value: fmt.Sprintf("%ds", prefs.RequestTimeout)},
			ui.Field{Key: "Bridge", Value: bridge},
			ui.Field{Key: "Advertise", Value: fmt.Sprintf("%v", prefs.Advertise)},
		)
		p.Newline()

		names := registry.InstanceNames()
		if len(names) == 0 {
			p.Println("No instances configured. Run 'powerpack config init'.")
			return nil
		}
		for _, name := range names {
			inst := registry.GetInstance(name)
			lastUsed := "never"
			if !inst.LastUsed.IsZero() {
				lastUsed = inst.LastUsed.Format("2006-01-02 15:04")
			}
			marker := " "
			if name == prefs.DefaultInstance {
				marker = "*"
			}
			p.Println(fmt.Sprintf("%s %-12s %-45s client %s (last used %s)", marker, name, inst.BaseURL, inst.ClientID, lastUsed))
		}
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
