package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/winnowlabs/winnow/internal/adapters/driven/ai"
	"github.com/winnowlabs/winnow/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration values. Keys use dotted paths, for
example query.k or embedding.provider. Run 'winnow config list' to
see what is currently set.`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Setting embedding.provider or llm.provider selects the provider's
default model, prompts for an API key when the provider needs one,
and pings the service to confirm the configuration works:

  winnow config set embedding.provider ollama
  winnow config set llm.provider anthropic

Secret values may be omitted on the command line and entered at a
hidden prompt instead:

  winnow config set github.token`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

// secretKeys holds keys whose values are masked on output and read
// from a hidden prompt when omitted on the command line.
var secretKeys = map[string]bool{
	"embedding.api_key": true,
	"llm.api_key":       true,
	"github.token":      true,
}

// sliceKeys holds keys whose values are comma-separated lists.
var sliceKeys = map[string]bool{
	"chunking.separators": true,
	"bm25.stopwords":      true,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	value, ok := configStore.Get(key)
	if !ok {
		return fmt.Errorf("key %q is not set", key)
	}

	cmd.Println(formatConfigValue(key, value))
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := configStore.Keys()
	if len(keys) == 0 {
		cmd.Println("No configuration set.")
		cmd.Println("Run 'winnow config set embedding.provider ollama' to get started.")
		return nil
	}

	cmd.Println(styleMuted.Render(configStore.Path()))
	for _, key := range keys {
		value, _ := configStore.Get(key)
		cmd.Printf("%s = %s\n", styleLabel.Render(key), formatConfigValue(key, value))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]

	// Provider changes go through the settings service so defaults
	// are filled in and the credentials are checked right away.
	switch key {
	case "embedding.provider":
		return setEmbeddingProvider(cmd, args)
	case "llm.provider":
		return setLLMProvider(cmd, args)
	}

	var raw string
	switch {
	case len(args) == 2:
		raw = args[1]
	case secretKeys[key]:
		cmd.Printf("Enter value for %s: ", key)
		raw = readSecret()
		cmd.Println()
	default:
		return fmt.Errorf("no value given for %q", key)
	}

	if err := configStore.Set(key, parseConfigValue(key, raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s\n", key)

	return checkAfterSet(cmd, key)
}

// checkAfterSet validates whatever the changed key feeds into: the
// provider gets pinged, the engine configuration gets re-validated.
// The value stays saved either way so a typo can be corrected with
// another set.
func checkAfterSet(cmd *cobra.Command, key string) error {
	if settingsService == nil {
		return nil
	}

	switch {
	case strings.HasPrefix(key, "embedding."):
		settings, err := settingsService.Get()
		if err != nil || !settings.Embedding.IsConfigured() {
			return nil
		}
		cmd.Print("Validating configuration... ")
		if err := ai.ValidateEmbeddingConfig(&settings.Embedding); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")

	case strings.HasPrefix(key, "llm."):
		settings, err := settingsService.Get()
		if err != nil || !settings.LLM.IsConfigured() {
			return nil
		}
		cmd.Print("Validating configuration... ")
		if err := ai.ValidateLLMConfig(&settings.LLM); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")

	case hasAnyPrefix(key, "chunking.", "bm25.", "fusion.", "query."):
		if _, err := settingsService.EngineConfig(); err != nil {
			cmd.Println(styleWarn.Render(fmt.Sprintf("Warning: %v", err)))
		}
	}

	return nil
}

//nolint:dupl // Similar to setLLMProvider but for embeddings - intentional for CLI flow clarity
func setEmbeddingProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if len(args) != 2 {
		return errors.New("usage: winnow config set embedding.provider <ollama|openai>")
	}

	provider := domain.AIProvider(args[1])

	apiKey := ""
	if settings, err := settingsService.Get(); err == nil {
		apiKey = settings.Embedding.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		cmd.Print("Enter API key: ")
		apiKey = readSecret()
		cmd.Println()
	}

	if err := settingsService.SetEmbeddingProvider(provider, "", apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := ai.ValidateEmbeddingConfig(&settings.Embedding); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), settings.Embedding.Model)
	return nil
}

//nolint:dupl // Similar to setEmbeddingProvider but for LLM - intentional for CLI flow clarity
func setLLMProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if len(args) != 2 {
		return errors.New("usage: winnow config set llm.provider <ollama|openai|anthropic>")
	}

	provider := domain.AIProvider(args[1])

	apiKey := ""
	if settings, err := settingsService.Get(); err == nil {
		apiKey = settings.LLM.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		cmd.Print("Enter API key: ")
		apiKey = readSecret()
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(provider, "", apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := ai.ValidateLLMConfig(&settings.LLM); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), settings.LLM.Model)
	return nil
}

// Helper functions.

// parseConfigValue converts a command-line string into the value type
// the key expects: lists for slice keys, then int, float, bool, and
// finally the raw string.
func parseConfigValue(key, raw string) any {
	if sliceKeys[key] {
		parts := strings.Split(raw, ",")
		decoder := strings.NewReplacer(`\n`, "\n", `\t`, "\t")
		for i, p := range parts {
			parts[i] = decoder.Replace(p)
		}
		return parts
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func formatConfigValue(key string, value any) string {
	if secretKeys[key] {
		s, _ := value.(string)
		if s == "" {
			return "(not set)"
		}
		return maskAPIKey(s)
	}
	switch v := value.(type) {
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprintf("%v", e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Try to read without echo first.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	// Fallback to regular input.
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
