package cmd

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	appconfig "github.com/ptit-ai/unirag/internal/config"
	"github.com/ptit-ai/unirag/internal/embedding/bedrock"
	"github.com/ptit-ai/unirag/internal/llm"
	"github.com/ptit-ai/unirag/internal/llm/gemini"
	"github.com/ptit-ai/unirag/internal/opensearch"
	"github.com/ptit-ai/unirag/internal/prompts"
	"github.com/ptit-ai/unirag/internal/retriever"
	"github.com/ptit-ai/unirag/internal/router"
	"github.com/ptit-ai/unirag/internal/s3vector"
	"github.com/ptit-ai/unirag/internal/types"
	"github.com/ptit-ai/unirag/internal/websearch"
)

// pipeline bundles everything a command needs to answer queries.
type pipeline struct {
	cfg    *types.Config
	router *router.Router
}

// buildPipeline loads configuration and wires the embedding client, vector
// backend, optional web search, persona, and generator into a router.
func buildPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	embeddingClient := bedrock.NewBedrockClient(awsCfg, cfg.EmbeddingModel)

	searcher, err := buildVectorSearcher(cfg)
	if err != nil {
		return nil, err
	}

	generator, err := buildGenerator(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	persona, err := prompts.Load(cfg.PersonaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load persona: %w", err)
	}

	var web router.WebSearcher
	if cfg.WebSearchAPIKey != "" {
		webClient, err := websearch.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create web search client: %w", err)
		}
		web = webClient
	}

	ret := retriever.New(embeddingClient, searcher, cfg)

	return &pipeline{
		cfg:    cfg,
		router: router.New(ret, web, generator, persona, cfg),
	}, nil
}

func buildVectorSearcher(cfg *types.Config) (retriever.VectorSearcher, error) {
	switch cfg.VectorBackend {
	case "opensearch":
		osConfig, err := opensearch.NewConfigFromTypes(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenSearch config: %w", err)
		}
		if err := osConfig.Validate(); err != nil {
			return nil, fmt.Errorf("OpenSearch config validation failed: %w", err)
		}

		osClient, err := opensearch.NewClient(osConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenSearch client: %w", err)
		}
		return retriever.NewOpenSearchSearcher(osClient), nil
	case "s3vectors":
		service, err := s3vector.NewS3VectorService(&s3vector.S3Config{
			VectorBucketName: cfg.S3VectorBucket,
			Region:           cfg.S3VectorRegion,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 Vectors service: %w", err)
		}
		return retriever.NewS3VectorSearcher(service), nil
	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", cfg.VectorBackend)
	}
}

func buildGenerator(ctx context.Context, cfg *types.Config, awsCfg aws.Config) (llm.Generator, error) {
	switch cfg.GenerationProvider {
	case "bedrock":
		return bedrock.NewBedrockClient(awsCfg, cfg.ChatModel), nil
	case "gemini":
		return gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.GenerationProvider)
	}
}
