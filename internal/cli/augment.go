package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/EmerJK/emertxthn/config"
	"github.com/EmerJK/emertxthn/internal/adapter/notify"
	"github.com/EmerJK/emertxthn/internal/adapter/prompt"
	"github.com/EmerJK/emertxthn/internal/adapter/search"
	"github.com/EmerJK/emertxthn/internal/domain"
	"github.com/EmerJK/emertxthn/internal/port"
	"github.com/EmerJK/emertxthn/internal/usecase"
)

var (
	augmentTranscript string
	augmentKind       string
	augmentBudget     int
	augmentJSON       bool
)

var augmentCmd = &cobra.Command{
	Use:   "augment",
	Short: "Run one augmentation turn against a transcript",
	Long: `Run the full pipeline once: extract recent text from a transcript file
(a JSON array of {role, text, system} messages), query the search API, and
print the prompt fragment that would be injected.

Examples:
  txtaug augment -t transcript.json
  txtaug augment -t transcript.json --kind impersonate --json`,
	RunE: runAugment,
}

func init() {
	rootCmd.AddCommand(augmentCmd)
	augmentCmd.Flags().StringVarP(&augmentTranscript, "transcript", "t", "", "transcript file (required)")
	augmentCmd.Flags().StringVar(&augmentKind, "kind", string(domain.KindNormal), "generation kind")
	augmentCmd.Flags().IntVar(&augmentBudget, "context-size", 4096, "context size budget")
	augmentCmd.Flags().BoolVar(&augmentJSON, "json", false, "output as JSON")
	augmentCmd.MarkFlagRequired("transcript")
}

// staticSettings serves the config-file settings to a one-shot run.
type staticSettings struct {
	cfg config.AugmentConfig
}

func (s staticSettings) Augment() config.AugmentConfig {
	return s.cfg
}

func runAugment(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	data, err := os.ReadFile(augmentTranscript)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	var history []domain.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}

	settings := cfg.Augment.Normalized()
	if err := settings.Validate(); err != nil {
		return err
	}

	slots := prompt.NewRegistry()
	searcher := search.NewClient(time.Duration(cfg.Search.TimeoutSeconds)*time.Second, log)
	augmenter := usecase.NewAugmenter(staticSettings{cfg: settings}, searcher, slots, notify.NewLogNotifier(log), log)

	history = augmenter.BeforeGeneration(context.Background(), history, augmentBudget, domain.GenerationKind(augmentKind))

	result := augmenter.LastResult()
	fragment := slots.Render(port.PositionInPrompt)

	if augmentJSON {
		out := map[string]any{
			"history": history,
			"prompt":  fragment,
			"result":  result,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if result.Text == "" {
		fmt.Println("No passages retrieved; nothing would be injected.")
		return nil
	}

	fmt.Printf("Query:\n%s\n\n", result.Query)
	fmt.Printf("Injected fragment:\n%s\n", fragment)
	return nil
}
