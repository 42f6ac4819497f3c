package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	appconfig "github.com/ptit-ai/unirag/internal/config"
	"github.com/ptit-ai/unirag/internal/embedding/bedrock"
	"github.com/ptit-ai/unirag/internal/opensearch"
	"github.com/ptit-ai/unirag/internal/s3vector"
)

var (
	indexCollection string
	indexDimension  int
	indexEngine     string
	indexSpaceType  string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Create or verify the knowledge-base vector index",
	Long: `
Create the vector index for a knowledge-base collection on the configured
backend. For OpenSearch this creates a kNN index with the passage mapping;
for S3 Vectors it verifies the bucket and index are reachable.

Examples:
  unirag index
  unirag index --collection admissions --dimension 1024
`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexCollection, "collection", "", "Collection name (defaults to config)")
	indexCmd.Flags().IntVar(&indexDimension, "dimension", 0, "Embedding dimension (defaults to the embedding model's dimension)")
	indexCmd.Flags().StringVar(&indexEngine, "engine", "lucene", "OpenSearch kNN engine")
	indexCmd.Flags().StringVar(&indexSpaceType, "space-type", "cosinesimil", "OpenSearch kNN space type")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	collection := indexCollection
	if collection == "" {
		collection = cfg.DefaultCollection
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	embedder := bedrock.NewBedrockClient(awsCfg, cfg.EmbeddingModel)
	if err := embedder.ValidateConnection(ctx); err != nil {
		return fmt.Errorf("Bedrock embedding model check failed: %w", err)
	}

	modelID, modelDimension := embedder.GetModelInfo()
	dimension := indexDimension
	if dimension <= 0 {
		dimension = modelDimension
	}
	log.Printf("Embedding model %s ready (dimension=%d)", modelID, dimension)

	switch cfg.VectorBackend {
	case "opensearch":
		osConfig, err := opensearch.NewConfigFromTypes(cfg)
		if err != nil {
			return fmt.Errorf("failed to create OpenSearch config: %w", err)
		}
		if err := osConfig.Validate(); err != nil {
			return fmt.Errorf("OpenSearch config validation failed: %w", err)
		}

		osClient, err := opensearch.NewClient(osConfig)
		if err != nil {
			return fmt.Errorf("failed to create OpenSearch client: %w", err)
		}

		if err := osClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("OpenSearch health check failed: %w", err)
		}

		if err := osClient.CreateVectorIndex(ctx, collection, dimension, indexEngine, indexSpaceType); err != nil {
			return fmt.Errorf("failed to create index %s: %w", collection, err)
		}
		log.Printf("Index %s ready (dimension=%d, engine=%s)", collection, dimension, indexEngine)
	case "s3vectors":
		service, err := s3vector.NewS3VectorService(&s3vector.S3Config{
			VectorBucketName: cfg.S3VectorBucket,
			Region:           cfg.S3VectorRegion,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 Vectors service: %w", err)
		}

		if err := service.ValidateAccess(ctx, collection); err != nil {
			return fmt.Errorf("S3 Vectors access validation failed: %w", err)
		}
		log.Printf("S3 Vectors index %s is reachable", collection)
	default:
		return fmt.Errorf("unsupported vector backend: %s", cfg.VectorBackend)
	}

	return nil
}
