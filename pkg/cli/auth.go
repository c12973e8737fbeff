package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "api_token"
	keyringService = "pmeval"
	keyringUser    = "api_token"
)

var (
	tokenFlag = &cli.StringFlag{
		Name:    "token",
		Usage:   "Market API key (prompted for when omitted)",
		EnvVars: []string{"PMEVAL_API_TOKEN"},
	}

	authCmd = &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Store the market API key for authenticated imports",
		Action:          cmdAuth,
		Flags: []cli.Flag{
			tokenFlag,
		},
	}
)

func cmdAuth(c *cli.Context) error {
	token := strings.TrimSpace(c.String(tokenFlag.Name))

	if token == "" {
		fmt.Print("Paste your market API key: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading user input: %w", err)
		}
		token = strings.TrimSpace(line)
	}

	if token == "" {
		return cli.ShowSubcommandHelp(c)
	}

	cfg := getConfig(c)
	if err := saveAPIToken(cfg.HomeDir, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Println("Token saved to OS keychain")
	return nil
}

func saveAPIToken(homeDir, token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveAPITokenFile(homeDir, token)
	}

	// Clean up legacy file if it exists
	os.Remove(path.Join(homeDir, tokenFileName))

	return nil
}

// getAPIToken returns the stored API key, or empty when none was saved.
// Anonymous imports are allowed so absence is not an error.
func getAPIToken(homeDir string) string {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token
	}

	b, err := os.ReadFile(path.Join(homeDir, tokenFileName))
	if err != nil {
		return ""
	}
	token = strings.TrimSpace(string(b))

	// Migrate to keychain
	if token != "" {
		if migrateErr := keyring.Set(keyringService, keyringUser, token); migrateErr == nil {
			slog.Info("migrated token from file to OS keychain")
			os.Remove(path.Join(homeDir, tokenFileName))
		}
	}

	return token
}

func saveAPITokenFile(homeDir, token string) error {
	return os.WriteFile(path.Join(homeDir, tokenFileName), []byte(token), 0600)
}
