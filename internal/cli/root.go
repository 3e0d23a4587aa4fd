package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/EmerJK/emertxthn/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	log     = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "txtaug",
	Short: "Retrieval augmentation for chat generation via a txtai search API",
	Long: `txtaug gathers recent chat text, queries a txtai-style semantic search
service, and splices the retrieved passages into the generation prompt as a
delimited reference block. Reference blocks are stripped from stored messages
after generation so they never leak into conversation history.

Example usage:
  txtaug augment -t transcript.json   # Run one augmentation turn
  txtaug serve                        # Serve the extension API to a chat host
  txtaug bench -q "test query" -n 20  # Benchmark the search endpoint`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level, err := logrus.ParseLevel(cfg.Logging.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		log.SetLevel(level)

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./txtaug.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
