package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptit-ai/unirag/internal/metrics"
	"github.com/ptit-ai/unirag/internal/types"
)

var (
	chatCollection string
	chatUseWeb     bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session against the knowledge base",
	Long: `
Start an interactive chat session. Each message runs through the full
routing pipeline; the session keeps an in-memory transcript you can review
with the 'history' command.

Examples:
  unirag chat
  unirag chat --collection admissions --web
`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatCollection, "collection", "", "Knowledge-base collection (defaults to config)")
	chatCmd.Flags().BoolVar(&chatUseWeb, "web", false, "Force web search for every message")
}

type chatTurn struct {
	Question string
	Answer   string
	Source   types.AnswerSource
	At       time.Time
}

func runChat(cmd *cobra.Command, args []string) error {
	log.Println("Starting chat session...")

	ctx := context.Background()
	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	fmt.Println("=== unirag chat ===")
	fmt.Println("Type 'exit' or 'quit' to end the session")
	fmt.Println("Type 'history' to review this session, 'clear' to reset it")
	fmt.Println("===================")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	// Long pasted messages exceed the default 64KB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var history []chatTurn

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println("Bye.")
			return nil
		case "history":
			printHistory(history)
			continue
		case "clear":
			history = nil
			fmt.Println("Session cleared.")
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
		result, err := p.router.Answer(turnCtx, types.Query{
			Text:         input,
			Collection:   chatCollection,
			UseRAG:       true,
			UseWebSearch: chatUseWeb,
		})
		cancel()
		if err != nil {
			fmt.Printf("error: %v\n\n", err)
			continue
		}

		metrics.RecordInvocation(metrics.ModeChat)
		metrics.RecordAnswerSource(result.Source)

		fmt.Printf("assistant> %s\n", result.Answer)
		fmt.Printf("           [%s, confidence %.2f]\n\n", result.Source, result.Metadata.Confidence)

		history = append(history, chatTurn{
			Question: input,
			Answer:   result.Answer,
			Source:   result.Source,
			At:       time.Now(),
		})
	}

	return scanner.Err()
}

func printHistory(history []chatTurn) {
	if len(history) == 0 {
		fmt.Println("No messages yet.")
		return
	}

	for i, turn := range history {
		fmt.Printf("%d. [%s] you: %s\n", i+1, turn.At.Format("15:04:05"), turn.Question)
		fmt.Printf("   [%s] assistant: %s\n", turn.Source, turn.Answer)
	}
}
