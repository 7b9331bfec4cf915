package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `View, create and check the configuration file.

Every option can also be set per run with a flag of the run command.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	RunE:  runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	Long: `Validates every option and builds the embedding and rerank clients the
configuration names, without reading any document.`,
	RunE: runConfigCheck,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configShowCmd.Flags().Bool("json", false, "output as JSON")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s, err := openServices()
	if err != nil {
		return err
	}
	settings, err := s.Workspace.Settings(nil)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	cfg, err := settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		options := make(map[string]any)
		for _, o := range cfg.Options() {
			options[o.Name] = o.Value
		}
		data, err := json.MarshalIndent(options, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("# %s\n", settings.Path())
	for _, o := range cfg.Options() {
		if str, ok := o.Value.(string); ok {
			cmd.Printf("%s = %q\n", o.Name, str)
			continue
		}
		cmd.Printf("%s = %v\n", o.Name, o.Value)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	s, err := openServices()
	if err != nil {
		return err
	}
	settings, err := s.Workspace.Settings(nil)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	force, _ := cmd.Flags().GetBool("force")
	path := settings.Path()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := settings.Save(settings.GetDefaults()); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Wrote default configuration to %s\n", path)
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	s, err := openServices()
	if err != nil {
		return err
	}
	settings, err := s.Workspace.Settings(nil)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	cfg, err := settings.Get()
	if err != nil {
		return err
	}

	if cfg.Query == "" {
		cmd.Println("query: not set, pass it to run")
		cfg.Query = "check"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, release, err := s.Workspace.Selector(cfg)
	if err != nil {
		return err
	}
	release()

	cmd.Println("Configuration OK")
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	s, err := openServices()
	if err != nil {
		return err
	}
	settings, err := s.Workspace.Settings(nil)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	cmd.Println(settings.Path())
	return nil
}
