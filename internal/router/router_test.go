package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ptit-ai/unirag/internal/prompts"
	"github.com/ptit-ai/unirag/internal/types"
	"github.com/ptit-ai/unirag/internal/websearch"
)

type fakeRetriever struct {
	passages []types.RetrievedPassage
	err      error
	called   bool
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query types.Query) ([]types.RetrievedPassage, error) {
	f.called = true
	return f.passages, f.err
}

type fakeWeb struct {
	result *websearch.Result
	err    error
	called bool
}

func (f *fakeWeb) Search(ctx context.Context, query string) (*websearch.Result, error) {
	f.called = true
	return f.result, f.err
}

type fakeGenerator struct {
	answer    string
	err       error
	gotPrompt string
	gotSystem string
	called    bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	f.called = true
	f.gotPrompt = prompt
	f.gotSystem = systemPrompt
	if f.answer == "" && f.err == nil {
		return "generated answer", nil
	}
	return f.answer, f.err
}

func passages(scores ...float64) []types.RetrievedPassage {
	result := make([]types.RetrievedPassage, len(scores))
	for i, s := range scores {
		result[i] = types.RetrievedPassage{
			Text:   "passage text",
			Title:  "Tuition Policy",
			Origin: "handbook.pdf",
			Score:  s,
		}
	}
	return result
}

func webSources(n int) *websearch.Result {
	result := &websearch.Result{}
	for i := 0; i < n; i++ {
		result.Sources = append(result.Sources, types.WebSource{
			Title:   "PTIT News",
			URL:     "https://ptit.edu.vn/news",
			Snippet: "latest fee announcement",
		})
	}
	return result
}

func routerConfig(threshold float64, webEnabled, webFallback bool) *types.Config {
	return &types.Config{
		ConfidenceThreshold: threshold,
		WebSearchEnabled:    webEnabled,
		WebSearchFallback:   webFallback,
	}
}

func newRouter(ret *fakeRetriever, web *fakeWeb, gen *fakeGenerator, cfg *types.Config) *Router {
	var searcher WebSearcher
	if web != nil {
		searcher = web
	}
	return New(ret, searcher, gen, prompts.Default(), cfg)
}

func ragQuery(text string) types.Query {
	return types.Query{Text: text, UseRAG: true}
}

func TestConfidentKBWithWebDisabled(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.9, 0.85, 0.8)}
	gen := &fakeGenerator{}
	r := newRouter(ret, nil, gen, routerConfig(0.6, false, true))

	result, err := r.Answer(context.Background(), ragQuery("What is PTIT's tuition policy?"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceKnowledgeBase, result.Source)
	require.True(t, result.Metadata.UsedRAG)
	require.False(t, result.Metadata.UsedWeb)
	require.InDelta(t, 0.85, result.Metadata.Confidence, 1e-9)
	require.Len(t, result.KBSources, 3)
	require.Empty(t, result.WebSources)
}

func TestLowConfidenceWithWebAlwaysOn(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.2)}
	web := &fakeWeb{result: webSources(2)}
	gen := &fakeGenerator{}
	r := newRouter(ret, web, gen, routerConfig(0.6, true, true))

	result, err := r.Answer(context.Background(), ragQuery("What is PTIT's tuition policy?"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceWebSearch, result.Source)
	require.True(t, result.Metadata.UsedWeb)
	require.False(t, result.Metadata.UsedRAG)
	require.Len(t, result.WebSources, 2)
	require.Empty(t, result.KBSources)
}

func TestConfidentKBWithWebAlwaysOnIsHybrid(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.9, 0.8)}
	web := &fakeWeb{result: webSources(1)}
	gen := &fakeGenerator{}
	r := newRouter(ret, web, gen, routerConfig(0.6, true, true))

	result, err := r.Answer(context.Background(), ragQuery("scholarship deadlines"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceHybrid, result.Source)
	require.True(t, result.Metadata.UsedRAG)
	require.True(t, result.Metadata.UsedWeb)
	require.Len(t, result.KBSources, 2)
	require.Len(t, result.WebSources, 1)
}

func TestNoEvidenceFallsBackToModel(t *testing.T) {
	ret := &fakeRetriever{}
	web := &fakeWeb{result: &websearch.Result{}}
	gen := &fakeGenerator{answer: "model-only answer"}
	r := newRouter(ret, web, gen, routerConfig(0.6, true, true))

	result, err := r.Answer(context.Background(), ragQuery("campus history"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceLLMOnly, result.Source)
	require.NotEmpty(t, result.Answer)
	require.Empty(t, result.KBSources)
	require.Empty(t, result.WebSources)
	require.False(t, result.Metadata.UsedRAG)
	require.False(t, result.Metadata.UsedWeb)
}

func TestWebSearchFailureNeverPropagates(t *testing.T) {
	ret := &fakeRetriever{}
	web := &fakeWeb{err: errors.New("provider timeout")}
	gen := &fakeGenerator{answer: "still answers"}
	r := newRouter(ret, web, gen, routerConfig(0.6, true, true))

	result, err := r.Answer(context.Background(), ragQuery("visiting hours"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceLLMOnly, result.Source)
	require.Equal(t, "still answers", result.Answer)
	require.Empty(t, result.KBSources)
	require.Empty(t, result.WebSources)
}

func TestWebFailureWithConfidentKBStaysKnowledgeBase(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.9)}
	web := &fakeWeb{err: errors.New("dns failure")}
	gen := &fakeGenerator{}
	r := newRouter(ret, web, gen, routerConfig(0.6, true, true))

	result, err := r.Answer(context.Background(), ragQuery("exam schedule"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceKnowledgeBase, result.Source)
	require.True(t, web.called)
}

func TestFallbackInvokesWebOnlyBelowThreshold(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.9)}
	web := &fakeWeb{result: webSources(2)}
	gen := &fakeGenerator{}
	r := newRouter(ret, web, gen, routerConfig(0.6, false, true))

	result, err := r.Answer(context.Background(), ragQuery("tuition"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceKnowledgeBase, result.Source)
	require.False(t, web.called, "confident retrieval skips the fallback")

	ret = &fakeRetriever{passages: passages(0.3)}
	web = &fakeWeb{result: webSources(2)}
	r = newRouter(ret, web, gen, routerConfig(0.6, false, true))

	result, err = r.Answer(context.Background(), ragQuery("tuition"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceWebSearch, result.Source)
	require.True(t, web.called)
}

func TestFallbackDisabledStaysLocal(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.3)}
	web := &fakeWeb{result: webSources(2)}
	gen := &fakeGenerator{}
	r := newRouter(ret, web, gen, routerConfig(0.6, false, false))

	result, err := r.Answer(context.Background(), ragQuery("tuition"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceLLMOnly, result.Source)
	require.False(t, web.called)
}

func TestRetrievalFailureIsAbsorbed(t *testing.T) {
	ret := &fakeRetriever{err: errors.New("cluster down")}
	gen := &fakeGenerator{answer: "degraded answer"}
	r := newRouter(ret, nil, gen, routerConfig(0.6, false, true))

	result, err := r.Answer(context.Background(), ragQuery("library hours"))
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceLLMOnly, result.Source)
	require.Equal(t, "degraded answer", result.Answer)
}

func TestGenerationFailurePropagates(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.9)}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	r := newRouter(ret, nil, gen, routerConfig(0.6, false, true))

	_, err := r.Answer(context.Background(), ragQuery("tuition"))
	require.Error(t, err)

	var qerr *types.QueryError
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, types.ErrorTypeGeneration, qerr.Type)
}

func TestEmptyQueryRejectedBeforeAnyCall(t *testing.T) {
	ret := &fakeRetriever{}
	gen := &fakeGenerator{}
	r := newRouter(ret, nil, gen, routerConfig(0.6, false, true))

	_, err := r.Answer(context.Background(), types.Query{UseRAG: true})
	require.Error(t, err)
	require.False(t, ret.called)
	require.False(t, gen.called)
}

func TestRAGDisabledSkipsRetrieval(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.9)}
	gen := &fakeGenerator{}
	r := newRouter(ret, nil, gen, routerConfig(0.6, false, true))

	result, err := r.Answer(context.Background(), types.Query{Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceLLMOnly, result.Source)
	require.False(t, ret.called)
}

func TestPerQueryWebToggle(t *testing.T) {
	ret := &fakeRetriever{passages: passages(0.9)}
	web := &fakeWeb{result: webSources(1)}
	gen := &fakeGenerator{}
	r := newRouter(ret, web, gen, routerConfig(0.6, false, false))

	result, err := r.Answer(context.Background(), types.Query{Text: "latest news", UseRAG: true, UseWebSearch: true})
	require.NoError(t, err)
	require.Equal(t, types.AnswerSourceHybrid, result.Source)
	require.True(t, web.called)
}

func TestPromptAssembly(t *testing.T) {
	t.Run("knowledge base block is numbered with attribution", func(t *testing.T) {
		ret := &fakeRetriever{passages: []types.RetrievedPassage{
			{Text: "Tuition is due each semester.", Title: "Tuition Policy", Origin: "handbook.pdf", Score: 0.9},
			{Text: "Late payment incurs a fee.", Title: "Fee Schedule", Origin: "handbook.pdf", Score: 0.8},
		}}
		gen := &fakeGenerator{}
		r := newRouter(ret, nil, gen, routerConfig(0.6, false, true))

		_, err := r.Answer(context.Background(), ragQuery("When is tuition due?"))
		require.NoError(t, err)
		require.Contains(t, gen.gotPrompt, "## Knowledge base context")
		require.Contains(t, gen.gotPrompt, "1. [Tuition Policy, handbook.pdf] Tuition is due each semester.")
		require.Contains(t, gen.gotPrompt, "2. [Fee Schedule, handbook.pdf] Late payment incurs a fee.")
		require.Contains(t, gen.gotPrompt, "When is tuition due?")
		require.NotContains(t, gen.gotPrompt, "## Web search results")
	})

	t.Run("hybrid prompt puts knowledge base before web", func(t *testing.T) {
		ret := &fakeRetriever{passages: passages(0.9)}
		web := &fakeWeb{result: &websearch.Result{
			Answer: "Fees rose this year.",
			Sources: []types.WebSource{
				{Title: "PTIT News", URL: "https://ptit.edu.vn/news", Snippet: "fee update"},
			},
		}}
		gen := &fakeGenerator{}
		r := newRouter(ret, web, gen, routerConfig(0.6, true, true))

		_, err := r.Answer(context.Background(), ragQuery("current fees"))
		require.NoError(t, err)
		kbIdx := strings.Index(gen.gotPrompt, "## Knowledge base context")
		webIdx := strings.Index(gen.gotPrompt, "## Web search results")
		require.GreaterOrEqual(t, kbIdx, 0)
		require.Greater(t, webIdx, kbIdx)
		require.Contains(t, gen.gotPrompt, "PTIT News (https://ptit.edu.vn/news): fee update")
		require.Contains(t, gen.gotPrompt, "Fees rose this year.")
	})

	t.Run("no context means the bare query", func(t *testing.T) {
		ret := &fakeRetriever{}
		gen := &fakeGenerator{}
		r := newRouter(ret, nil, gen, routerConfig(0.6, false, true))

		_, err := r.Answer(context.Background(), ragQuery("tell me a fact"))
		require.NoError(t, err)
		require.Equal(t, "tell me a fact", gen.gotPrompt)
	})

	t.Run("persona rides along as the system prompt", func(t *testing.T) {
		ret := &fakeRetriever{}
		gen := &fakeGenerator{}
		r := newRouter(ret, nil, gen, routerConfig(0.6, false, true))

		_, err := r.Answer(context.Background(), ragQuery("hi"))
		require.NoError(t, err)
		require.Equal(t, prompts.Default().SystemPrompt, gen.gotSystem)
	})
}
