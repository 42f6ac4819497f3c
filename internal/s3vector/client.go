package s3vector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors/types"
)

// S3VectorService queries an Amazon S3 Vectors index. It is the alternate
// knowledge-base backend for deployments without an OpenSearch domain.
type S3VectorService struct {
	client           *s3vectors.Client
	vectorBucketName string
	region           string
}

// S3Config holds the configuration for the S3 Vectors client
type S3Config struct {
	VectorBucketName string
	Region           string
}

// QueryMatch is a single scored match from a vector query. Score is a
// similarity in [0,1] derived from the reported cosine distance.
type QueryMatch struct {
	Key      string
	Score    float64
	Metadata map[string]interface{}
}

// NewS3VectorService creates a new S3 Vectors service
func NewS3VectorService(cfg *S3Config) (*S3VectorService, error) {
	if cfg.VectorBucketName == "" {
		return nil, fmt.Errorf("vector bucket name is required")
	}

	awsConfig, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3VectorService{
		client:           s3vectors.NewFromConfig(awsConfig),
		vectorBucketName: cfg.VectorBucketName,
		region:           cfg.Region,
	}, nil
}

// ValidateAccess checks that the vector bucket and the given index exist.
func (s *S3VectorService) ValidateAccess(ctx context.Context, indexName string) error {
	_, err := s.client.GetVectorBucket(ctx, &s3vectors.GetVectorBucketInput{
		VectorBucketName: aws.String(s.vectorBucketName),
	})
	if err != nil {
		return fmt.Errorf("cannot access vector bucket %s: %w", s.vectorBucketName, err)
	}

	_, err = s.client.GetIndex(ctx, &s3vectors.GetIndexInput{
		VectorBucketName: aws.String(s.vectorBucketName),
		IndexName:        aws.String(indexName),
	})
	if err != nil {
		return fmt.Errorf("cannot access index %s in bucket %s: %w", indexName, s.vectorBucketName, err)
	}

	return nil
}

// QueryVectors performs a similarity search against the given index and
// returns matches ordered by similarity. An empty match list is a normal
// outcome.
func (s *S3VectorService) QueryVectors(ctx context.Context, indexName string, queryVector []float64, topK int) ([]QueryMatch, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if indexName == "" {
		return nil, fmt.Errorf("index name cannot be empty")
	}
	if topK <= 0 {
		topK = 10
	}

	float32Vector := make([]float32, len(queryVector))
	for i, v := range queryVector {
		float32Vector[i] = float32(v)
	}

	input := &s3vectors.QueryVectorsInput{
		VectorBucketName: aws.String(s.vectorBucketName),
		IndexName:        aws.String(indexName),
		QueryVector: &types.VectorDataMemberFloat32{
			Value: float32Vector,
		},
		TopK:           aws.Int32(int32(topK)),
		ReturnDistance: true,
		ReturnMetadata: true,
	}

	result, err := s.client.QueryVectors(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	matches := make([]QueryMatch, 0, len(result.Vectors))
	for _, vector := range result.Vectors {
		match := QueryMatch{}

		if vector.Key != nil {
			match.Key = *vector.Key
		}

		if vector.Distance != nil {
			// Cosine distance -> similarity, clamped to [0,1].
			score := 1 - float64(*vector.Distance)
			if score < 0 {
				score = 0
			}
			if score > 1 {
				score = 1
			}
			match.Score = score
		}

		if vector.Metadata != nil {
			var metadata map[string]interface{}
			if err := vector.Metadata.UnmarshalSmithyDocument(&metadata); err != nil {
				metadata = map[string]interface{}{}
			}
			match.Metadata = metadata
		}

		matches = append(matches, match)
	}

	return matches, nil
}
