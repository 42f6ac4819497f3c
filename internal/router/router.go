// Package router decides, per query, how an answer gets produced: from the
// knowledge base, from web search, from both, or from the model alone. It
// assembles the grounded prompt and delegates generation.
package router

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/ptit-ai/unirag/internal/confidence"
	"github.com/ptit-ai/unirag/internal/llm"
	"github.com/ptit-ai/unirag/internal/prompts"
	"github.com/ptit-ai/unirag/internal/types"
	"github.com/ptit-ai/unirag/internal/websearch"
)

var routerTracer = otel.Tracer("unirag/router")

// Retriever fetches scored knowledge-base passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query types.Query) ([]types.RetrievedPassage, error)
}

// WebSearcher runs one external web search.
type WebSearcher interface {
	Search(ctx context.Context, query string) (*websearch.Result, error)
}

// Router routes queries through retrieval, the confidence gate, optional
// web search, and generation.
type Router struct {
	retriever Retriever
	web       WebSearcher
	generator llm.Generator
	persona   *prompts.Persona

	confidenceThreshold float64
	webAlwaysOn         bool
	webFallback         bool
}

// New creates a Router. web may be nil when no web search provider is
// configured; the retriever and generator are mandatory.
func New(retriever Retriever, web WebSearcher, generator llm.Generator, persona *prompts.Persona, cfg *types.Config) *Router {
	return &Router{
		retriever:           retriever,
		web:                 web,
		generator:           generator,
		persona:             persona,
		confidenceThreshold: cfg.ConfidenceThreshold,
		webAlwaysOn:         cfg.WebSearchEnabled,
		webFallback:         cfg.WebSearchFallback,
	}
}

type evidence struct {
	passages   []types.RetrievedPassage
	confidence float64
	webResult  *websearch.Result
	webInvoked bool
}

// Answer runs the full pipeline for one query and returns a result with
// provenance. Retrieval and web-search failures degrade the answer path;
// only generation failures surface as request errors.
func (r *Router) Answer(ctx context.Context, query types.Query) (*types.QueryResult, error) {
	if query.Text == "" {
		return nil, types.NewValidationError("query text cannot be empty")
	}

	ctx, span := routerTracer.Start(ctx, "router.answer")
	defer span.End()

	ev := r.gatherEvidence(ctx, query)
	source := r.decide(ev)

	span.SetAttributes(
		attribute.String("router.outcome", string(source)),
		attribute.Float64("router.confidence", ev.confidence),
		attribute.Int("router.kb_passages", len(ev.passages)),
		attribute.Bool("router.web_invoked", ev.webInvoked),
	)

	kbUsed, webUsed := usedSources(source, ev)
	prompt := buildPrompt(source, ev, query.Text)

	answer, err := r.generator.Generate(ctx, prompt, r.persona.SystemPrompt)
	if err != nil {
		return nil, &types.QueryError{
			Type:    types.ErrorTypeGeneration,
			Message: "answer generation failed",
			Err:     err,
		}
	}

	return &types.QueryResult{
		Answer:     answer,
		Source:     source,
		KBSources:  kbUsed,
		WebSources: webUsed,
		Metadata: types.ResultMetadata{
			UsedRAG:    len(kbUsed) > 0,
			UsedWeb:    len(webUsed) > 0,
			Confidence: ev.confidence,
		},
	}, nil
}

// gatherEvidence collects knowledge-base passages and, when warranted, web
// results. Failures on either path are logged and absorbed.
func (r *Router) gatherEvidence(ctx context.Context, query types.Query) *evidence {
	ev := &evidence{}

	webAlways := r.webConfigured() && (r.webAlwaysOn || query.UseWebSearch)

	if webAlways {
		// Neither path depends on the other here, so run both at once.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			ev.passages = r.retrieve(gctx, query)
			return nil
		})
		g.Go(func() error {
			ev.webResult = r.searchWeb(gctx, query.Text)
			return nil
		})
		_ = g.Wait()
		ev.webInvoked = true
		ev.confidence = confidence.Score(ev.passages)
		return ev
	}

	ev.passages = r.retrieve(ctx, query)
	ev.confidence = confidence.Score(ev.passages)

	if r.webConfigured() && r.webFallback && !confidence.Sufficient(ev.confidence, r.confidenceThreshold) {
		ev.webInvoked = true
		ev.webResult = r.searchWeb(ctx, query.Text)
	}

	return ev
}

// decide picks the answer source. First matching rule wins: web evidence
// present makes the outcome hybrid or web_search depending on whether the
// knowledge base also cleared the threshold; otherwise the knowledge base
// answers alone when confident, and the model alone when not.
func (r *Router) decide(ev *evidence) types.AnswerSource {
	kbSufficient := len(ev.passages) > 0 && confidence.Sufficient(ev.confidence, r.confidenceThreshold)
	webHasSources := ev.webResult != nil && len(ev.webResult.Sources) > 0

	if ev.webInvoked && webHasSources {
		if kbSufficient {
			return types.AnswerSourceHybrid
		}
		return types.AnswerSourceWebSearch
	}

	if kbSufficient {
		return types.AnswerSourceKnowledgeBase
	}
	return types.AnswerSourceLLMOnly
}

func (r *Router) retrieve(ctx context.Context, query types.Query) []types.RetrievedPassage {
	if r.retriever == nil || !query.UseRAG {
		return nil
	}

	passages, err := r.retriever.Retrieve(ctx, query)
	if err != nil {
		log.Printf("Retrieval failed, continuing without knowledge base: %v", err)
		return nil
	}
	return passages
}

// searchWeb never lets a provider failure escape. A flaky search provider
// degrades answer quality, not availability.
func (r *Router) searchWeb(ctx context.Context, query string) *websearch.Result {
	result, err := r.web.Search(ctx, query)
	if err != nil {
		log.Printf("Web search failed, continuing without web results: %v", err)
		return nil
	}
	return result
}

func (r *Router) webConfigured() bool {
	return r.web != nil
}

// usedSources returns the source lists that actually back the answer for
// the decided outcome.
func usedSources(source types.AnswerSource, ev *evidence) ([]types.RetrievedPassage, []types.WebSource) {
	var kb []types.RetrievedPassage
	var web []types.WebSource

	switch source {
	case types.AnswerSourceKnowledgeBase:
		kb = ev.passages
	case types.AnswerSourceWebSearch:
		web = ev.webResult.Sources
	case types.AnswerSourceHybrid:
		kb = ev.passages
		web = ev.webResult.Sources
	}

	return kb, web
}
