package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/docuchat-be/config"
	"github.com/tieubaoca/docuchat-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

const embedderDescPrefix = "docuchat segments; embedder="

type WeaviateStore struct {
	client    *weaviate.Client
	className string
}

// NewWeaviateStore connects to Weaviate and ensures the collection class
// exists. The embedding model identity is recorded in the class description
// at creation time; opening an existing collection with a different
// embedder fails instead of silently computing meaningless similarities.
func NewWeaviateStore(cfg config.WeaviateStoreConfig, embedderModel string) (*WeaviateStore, error) {
	if cfg.Host == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("%w: weaviate host and collection are required", types.ErrConfiguration)
	}
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		wcfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	store := &WeaviateStore{
		client:    client,
		className: classNameFor(cfg.Collection),
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get schema: %v", types.ErrConnection, err)
	}

	for _, class := range schema.Classes {
		if class.Class != store.className {
			continue
		}
		stored := strings.TrimPrefix(class.Description, embedderDescPrefix)
		if stored != embedderModel {
			return nil, fmt.Errorf("%w: collection %s was built with %q, querying with %q",
				types.ErrEmbedderMismatch, store.className, stored, embedderModel)
		}
		return store, nil
	}

	if err := store.createClass(context.Background(), embedderModel); err != nil {
		return nil, err
	}
	return store, nil
}

// Weaviate requires GraphQL-safe class names starting with an upper-case
// letter.
func classNameFor(collection string) string {
	return strings.ToUpper(collection[:1]) + collection[1:]
}

func (s *WeaviateStore) classObject(embedderModel string) *models.Class {
	return &models.Class{
		Class:       s.className,
		Description: embedderDescPrefix + embedderModel,
		Properties: []*models.Property{
			{Name: "document", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "seq", DataType: []string{"int"}},
			{Name: "length", DataType: []string{"int"}},
		},
		// Vectors are supplied by the embedder at write and query time.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
}

func (s *WeaviateStore) createClass(ctx context.Context, embedderModel string) error {
	err := s.client.Schema().ClassCreator().WithClass(s.classObject(embedderModel)).Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to create class %s: %v", types.ErrConnection, s.className, err)
	}
	return nil
}

// Reset drops and recreates the collection, preserving the recorded
// embedder identity.
func (s *WeaviateStore) Reset(ctx context.Context) error {
	class, err := s.client.Schema().ClassGetter().WithClassName(s.className).Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to read class %s: %v", types.ErrConnection, s.className, err)
	}
	if err := s.client.Schema().ClassDeleter().WithClassName(s.className).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete class %s: %v", s.className, err)
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to recreate class %s: %v", s.className, err)
	}
	return nil
}

func (s *WeaviateStore) WriteSegments(ctx context.Context, records []SegmentRecord) error {
	total := len(records)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class: s.className,
				Properties: map[string]interface{}{
					"document": records[j].Segment.DocumentID,
					"content":  records[j].Segment.Text,
					"seq":      records[j].Segment.Index,
					"length":   records[j].Segment.Length,
				},
				Vector: records[j].Vector,
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("%w: batch %d-%d of %d: %v", types.ErrStoreWrite, i, end, total, err)
		}
		// The batch call can commit some objects and reject others; report
		// that distinctly so the caller knows vectors may be orphaned.
		rejected := 0
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				rejected++
			}
		}
		if rejected > 0 {
			return fmt.Errorf("%w: %d of %d objects rejected in batch %d-%d, earlier objects are committed",
				types.ErrStoreWrite, rejected, end-i, i, end)
		}
		log.Printf("Inserted batch %d-%d of %d segments", i, end, total)
	}
	return nil
}

func (s *WeaviateStore) Query(ctx context.Context, vector []float32, k int) ([]types.ScoredSegment, error) {
	fields := []graphql.Field{
		{Name: "document"},
		{Name: "content"},
		{Name: "seq"},
		{Name: "length"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStoreQuery, err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStoreQuery, result.Errors[0].Message)
	}

	var matches []types.ScoredSegment
	if data, ok := result.Data["Get"].(map[string]interface{})[s.className].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			match := types.ScoredSegment{
				Segment: types.Segment{
					DocumentID: obj["document"].(string),
					Text:       obj["content"].(string),
					Index:      int(obj["seq"].(float64)),
					Length:     int(obj["length"].(float64)),
				},
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				match.Score = 1 - float32(additional["distance"].(float64))
			}
			matches = append(matches, match)
		}
	}
	return matches, nil
}
