package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/EmerJK/emertxthn/internal/adapter/chunker"
	"github.com/EmerJK/emertxthn/internal/adapter/search"
)

var (
	benchQuery string
	benchCount int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the search endpoint",
	Long: `Issue repeated queries against the configured search API and report
latency. Useful for sizing the per-turn cost of augmentation.

Example:
  txtaug bench -q "test query" -n 20`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().StringVarP(&benchQuery, "query", "q", "", "query to send (required)")
	benchCmd.Flags().IntVarP(&benchCount, "count", "n", 10, "number of requests")
	benchCmd.MarkFlagRequired("query")
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	settings := cfg.Augment.Normalized()

	if settings.APIURL == "" {
		return fmt.Errorf("no api_url configured")
	}
	if benchCount < 1 {
		benchCount = 1
	}

	client := search.NewClient(time.Duration(cfg.Search.TimeoutSeconds)*time.Second, log)
	chunks := chunker.Split(benchQuery, settings.ChunkBoundary)

	fmt.Println("SEARCH BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Endpoint:  %s\n", settings.APIURL)
	fmt.Printf("Threshold: %.2f\n", settings.ScoreThreshold)
	fmt.Printf("Requests:  %d\n\n", benchCount)

	bar := progressbar.NewOptions(benchCount,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Querying[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	var (
		total    time.Duration
		min, max time.Duration
		failures int
		lastText string
	)

	for i := 0; i < benchCount; i++ {
		start := time.Now()
		text, err := client.Search(context.Background(), settings.APIURL, benchQuery, settings.ScoreThreshold, chunks)
		elapsed := time.Since(start)

		if err != nil {
			failures++
		} else {
			lastText = text
		}

		total += elapsed
		if min == 0 || elapsed < min {
			min = elapsed
		}
		if elapsed > max {
			max = elapsed
		}

		bar.Add(1)
	}

	avg := total / time.Duration(benchCount)
	fmt.Printf("\nLatency: avg %s, min %s, max %s\n", avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond))
	fmt.Printf("Failures: %d/%d\n", failures, benchCount)
	if lastText != "" {
		fmt.Printf("Last result: %d chars\n", len(lastText))
	} else {
		fmt.Println("Last result: empty")
	}

	return nil
}
