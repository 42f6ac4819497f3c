package router

import (
	"fmt"
	"strings"

	"github.com/ptit-ai/unirag/internal/types"
)

// buildPrompt assembles the generation prompt for the decided outcome.
// Knowledge-base passages come first as a numbered list with attribution,
// web results follow as a separate titled block, then the literal user
// query. With no usable context the prompt is the bare query.
func buildPrompt(source types.AnswerSource, ev *evidence, queryText string) string {
	var b strings.Builder

	includeKB := source == types.AnswerSourceKnowledgeBase || source == types.AnswerSourceHybrid
	includeWeb := source == types.AnswerSourceWebSearch || source == types.AnswerSourceHybrid

	if includeKB && len(ev.passages) > 0 {
		b.WriteString("## Knowledge base context\n\n")
		for i, p := range ev.passages {
			b.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, attribution(p), p.Text))
		}
		b.WriteString("\n")
	}

	if includeWeb && ev.webResult != nil && len(ev.webResult.Sources) > 0 {
		b.WriteString("## Web search results\n\n")
		if ev.webResult.Answer != "" {
			b.WriteString("Search summary: " + ev.webResult.Answer + "\n\n")
		}
		for _, s := range ev.webResult.Sources {
			if s.Title != "" {
				b.WriteString(fmt.Sprintf("- %s (%s): %s\n", s.Title, s.URL, s.Snippet))
			} else {
				b.WriteString(fmt.Sprintf("- %s: %s\n", s.URL, s.Snippet))
			}
		}
		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return queryText
	}

	b.WriteString("## Question\n\n")
	b.WriteString(queryText)
	return b.String()
}

func attribution(p types.RetrievedPassage) string {
	switch {
	case p.Title != "" && p.Origin != "":
		return fmt.Sprintf("[%s, %s] ", p.Title, p.Origin)
	case p.Title != "":
		return fmt.Sprintf("[%s] ", p.Title)
	case p.Origin != "":
		return fmt.Sprintf("[%s] ", p.Origin)
	default:
		return ""
	}
}
