package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptit-ai/unirag/internal/metrics"
	"github.com/ptit-ai/unirag/internal/types"
)

var (
	queryText       string
	queryCollection string
	queryTopK       int
	queryOutputJSON bool
	queryNoRAG      bool
	queryUseWeb     bool
	queryTimeout    int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Answer a single question through the routing pipeline",
	Long: `
Answer one question and print the result with provenance: which source
produced the answer (knowledge_base, web_search, hybrid, llm_only) and the
passages or links that back it.

Examples:
  unirag query -q "What is PTIT's tuition policy?"
  unirag query -q "When do admissions open?" --collection admissions -k 3
  unirag query -q "latest scholarship news" --web --json
`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "Question to answer (required)")
	queryCmd.Flags().StringVar(&queryCollection, "collection", "", "Knowledge-base collection (defaults to config)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "Number of passages to retrieve (defaults to config)")
	queryCmd.Flags().BoolVarP(&queryOutputJSON, "json", "j", false, "Output the result as JSON")
	queryCmd.Flags().BoolVar(&queryNoRAG, "no-rag", false, "Skip knowledge-base retrieval")
	queryCmd.Flags().BoolVar(&queryUseWeb, "web", false, "Force web search for this query")
	queryCmd.Flags().IntVar(&queryTimeout, "timeout", 120, "Request timeout in seconds")

	_ = queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(queryTimeout)*time.Second)
	defer cancel()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	result, err := p.router.Answer(ctx, types.Query{
		Text:         queryText,
		Collection:   queryCollection,
		TopK:         queryTopK,
		UseRAG:       !queryNoRAG,
		UseWebSearch: queryUseWeb,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	metrics.RecordInvocation(metrics.ModeQuery)
	metrics.RecordAnswerSource(result.Source)

	if queryOutputJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printResult(result)
	return nil
}

func printResult(result *types.QueryResult) {
	fmt.Println(result.Answer)
	fmt.Println()
	fmt.Printf("source: %s (confidence %.2f)\n", result.Source, result.Metadata.Confidence)

	if len(result.KBSources) > 0 {
		fmt.Println("knowledge base:")
		for i, p := range result.KBSources {
			label := p.Title
			if label == "" {
				label = p.Origin
			}
			fmt.Printf("  %d. %s (score %.2f)\n", i+1, label, p.Score)
		}
	}

	if len(result.WebSources) > 0 {
		fmt.Println("web:")
		for _, s := range result.WebSources {
			fmt.Printf("  - %s %s\n", s.Title, s.URL)
		}
	}
}
