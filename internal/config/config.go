// Package config builds the process configuration once at startup. There is
// no ambient global state: the loaded struct is passed to the components
// that need it.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/harou24/cf-cli/internal/cferr"
)

const (
	EnvOpenAIAPIKey        = "OPENAI_API_KEY"
	EnvCloudflareAPIToken  = "CLOUDFLARE_API_TOKEN"
	EnvCloudflareAccountID = "CLOUDFLARE_ACCOUNT_ID"
	EnvHistoryFile         = "CF_HISTORY_FILE"
)

type Config struct {
	OpenAIAPIKey        string
	CloudflareAPIToken  string
	CloudflareAccountID string
	HistoryPath         string
}

// Load reads credentials from the environment, consulting a .env file first
// if one is present. It fails before any network activity when a required
// value is missing or empty, naming every missing variable.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:        os.Getenv(EnvOpenAIAPIKey),
		CloudflareAPIToken:  os.Getenv(EnvCloudflareAPIToken),
		CloudflareAccountID: os.Getenv(EnvCloudflareAccountID),
		HistoryPath:         historyPath(),
	}

	var missing []string
	for _, v := range []struct{ name, value string }{
		{EnvOpenAIAPIKey, cfg.OpenAIAPIKey},
		{EnvCloudflareAPIToken, cfg.CloudflareAPIToken},
		{EnvCloudflareAccountID, cfg.CloudflareAccountID},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, cferr.New(cferr.Config,
			"missing %s. Set them in your environment or a .env file",
			strings.Join(missing, ", "))
	}

	return cfg, nil
}

func historyPath() string {
	if path := os.Getenv(EnvHistoryFile); path != "" {
		return path
	}
	return filepath.Join(configDir(), "history.jsonl")
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cf")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to the working directory; the history store is
		// best-effort anyway.
		return ".cf"
	}
	return filepath.Join(home, ".config", "cf")
}
