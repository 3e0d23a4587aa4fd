package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var (
	clearAddress string
	clearSession string
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached search results for a running session",
	Long: `Clear the cached search results and the injected prompt fragment of a
session on a running txtaug server.

Example:
  txtaug clear --session 2b6e9f2c-... --address http://localhost:8601`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().StringVarP(&clearAddress, "address", "a", "http://localhost:8601", "server base URL")
	clearCmd.Flags().StringVarP(&clearSession, "session", "s", "", "session id (required)")
	clearCmd.MarkFlagRequired("session")
}

func runClear(cmd *cobra.Command, args []string) error {
	url := strings.TrimRight(clearAddress, "/") + "/v1/sessions/" + clearSession + "/clear"

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("clear request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clear failed with status %d", resp.StatusCode)
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Session %s: %s\n", clearSession, out["status"])
	return nil
}
