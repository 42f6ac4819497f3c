package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "unirag",
	Short: "unirag - university assistant RAG backend",
	Long: `unirag answers university questions by routing each query through
knowledge-base retrieval, an optional web search fallback, and LLM
generation, picking the best evidence source per query.`,
}

func Execute() error {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statsCmd)
}
