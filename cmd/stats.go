package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptit-ai/unirag/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cumulative usage counters",
	Long: `
Show cumulative invocation counts per surface (query, chat, serve) and
answer counts per source, read from the local stats database.
`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := metrics.Init(); err != nil {
		return fmt.Errorf("failed to open stats database: %w", err)
	}
	defer func() { _ = metrics.Close() }()

	fmt.Println("invocations:")
	totals := metrics.GetStats()
	for _, mode := range metrics.AllModes {
		fmt.Printf("  %-8s %d\n", mode, totals[mode])
	}

	fmt.Println("answers by source:")
	sourceTotals := metrics.GetAnswerSourceStats()
	for _, source := range metrics.AllAnswerSources {
		fmt.Printf("  %-15s %d\n", source, sourceTotals[source])
	}

	return nil
}
