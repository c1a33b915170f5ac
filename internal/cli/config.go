package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/vibe/internal/config"
	"github.com/tessro/vibe/internal/wizard"
)

const configHeader = "# Vibe Configuration\n# https://github.com/tessro/vibe\n\n"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing vibe configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, after defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file with default values.

On a terminal you are asked for the Google OAuth client credentials.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  youtube.client_id         Google OAuth client ID
  youtube.client_secret     Google OAuth client secret
  youtube.redirect_port     Local port for the sign-in callback
  player.command            External player command (default mpv)
  player.autoplay           Start items immediately (true/false)
  server.addr               HTTP listen address
  server.base_url           Public URL of the HTTP server
  server.session_backend    memory, sqlite or redis
  server.session_ttl        Session lifetime in seconds
  server.redis_addr         Redis address
  server.rate_limit         Requests per minute per IP (0 disables)
  tui.show_vibe_badges      Show vibe badges in the song list
  log.level                 trace, debug, info, warn or error
  log.format                console or json
  log.file                  Log file path

Examples:
  vibe config set youtube.client_id 1234.apps.googleusercontent.com
  vibe config set server.session_backend sqlite`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := *cfg
	if shown.YouTube.ClientSecret != "" {
		shown.YouTube.ClientSecret = "********"
	}

	if JSONOutput() {
		return printJSON(shown)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(shown)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, err := os.Stat(path)
	exists := err == nil

	if JSONOutput() {
		return printJSON(map[string]any{"path": path, "exists": exists})
	}
	fmt.Println(path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'vibe config init' first", configPath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	defaultCfg := config.Default()
	if !JSONOutput() && wizard.IsTerminal() {
		if err := credentialsForm(&defaultCfg.YouTube).Run(); err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
	}

	if err := writeConfigFile(configPath, defaultCfg); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	if defaultCfg.YouTube.ClientID == "" {
		fmt.Println("  1. Set youtube.client_id in the config file or via VIBE_CLIENT_ID")
		fmt.Println("  2. Run 'vibe auth login' to sign in with Google")
	} else {
		fmt.Println("  1. Run 'vibe auth login' to sign in with Google")
	}
	return nil
}

// credentialsForm asks for the OAuth client credentials.
func credentialsForm(yt *config.YouTubeConfig) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Google OAuth client ID").
				Description("From a Desktop app credential in Google Cloud Console. Leave empty to set later.").
				Value(&yt.ClientID),
			huh.NewInput().
				Title("Client secret").
				EchoMode(huh.EchoModePassword).
				Value(&yt.ClientSecret),
		),
	)
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.Path()
}

// writeConfigFile encodes v as TOML under the config header.
func writeConfigFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(configHeader); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// keyKind is the TOML type of a settable key.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

var settableKeys = map[string]keyKind{
	"youtube.client_id":      kindString,
	"youtube.client_secret":  kindString,
	"youtube.redirect_port":  kindInt,
	"player.command":         kindString,
	"player.autoplay":        kindBool,
	"server.addr":            kindString,
	"server.base_url":        kindString,
	"server.session_backend": kindString,
	"server.session_ttl":     kindInt,
	"server.sqlite_path":     kindString,
	"server.redis_addr":      kindString,
	"server.redis_db":        kindInt,
	"server.rate_limit":      kindInt,
	"tui.show_vibe_badges":   kindBool,
	"log.level":              kindString,
	"log.format":             kindString,
	"log.file":               kindString,
}

// parseSetting converts value to the TOML type of key.
func parseSetting(key, value string) (any, error) {
	kind, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown key %q", key)
	}
	switch kind {
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return int64(i), nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return b, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typedValue, err := parseSetting(key, value)
	if err != nil {
		return err
	}
	section, field, _ := strings.Cut(key, ".")

	configPath := getConfigPath()
	rawConfig := map[string]any{}
	if _, err := toml.DecodeFile(configPath, &rawConfig); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	sectionMap, ok := rawConfig[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		rawConfig[section] = sectionMap
	}
	sectionMap[field] = typedValue

	if err := writeConfigFile(configPath, rawConfig); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
