package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/features/query"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/worker"
)

const className = "DocumentChunk"

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// EnsureSchema creates the DocumentChunk class if missing and backfills any
// properties added since the class was first created.
func (s *Store) EnsureSchema(ctx context.Context) error {
	properties := []*models.Property{
		{Name: "content", DataType: []string{"text"}},
		{Name: "url", DataType: []string{"string"}}, // exact match for per-URL deletes
		{Name: "chunkIndex", DataType: []string{"int"}},
		{Name: "totalChunks", DataType: []string{"int"}},
	}

	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return err
	}

	if !exists {
		class := &models.Class{
			Class:       className,
			Description: "A chunk of a scraped web page",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return s.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	}

	class, err := s.client.Schema().ClassGetter().WithClassName(className).Do(ctx)
	if err != nil {
		return err
	}

	existing := make(map[string]bool)
	for _, p := range class.Properties {
		existing[p.Name] = true
	}
	for _, p := range properties {
		if !existing[p.Name] {
			if err := s.client.Schema().PropertyCreator().WithClassName(className).WithProperty(p).Do(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// ChunkID derives a stable object id from the chunk's URL and position, so
// re-ingesting a URL overwrites its chunks instead of duplicating them.
func ChunkID(url string, index int) strfmt.UUID {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s_%d", url, index)))
	return strfmt.UUID(id.String())
}

func (s *Store) Upsert(ctx context.Context, chunks []worker.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		objects[i] = &models.Object{
			Class: className,
			ID:    ChunkID(c.SourceURL, c.ChunkIndex),
			Properties: map[string]interface{}{
				"content":     c.Content,
				"url":         c.SourceURL,
				"chunkIndex":  c.ChunkIndex,
				"totalChunks": c.TotalChunks,
			},
			Vector: models.C11yVector(c.Vector),
		}
	}

	res, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, obj := range res {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch insert: %s", obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

func (s *Store) DeleteByURL(ctx context.Context, url string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(className).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"url"}).
			WithOperator(filters.Equal).
			WithValueString(url)).
		Do(ctx)
	return err
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]query.RetrievedChunk, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "url"},
		{Name: "chunkIndex"},
		{Name: "totalChunks"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []query.RetrievedChunk
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if chunks, ok := data[className].([]interface{}); ok {
			for _, c := range chunks {
				props, ok := c.(map[string]interface{})
				if !ok {
					continue
				}

				var result query.RetrievedChunk
				if content, ok := props["content"].(string); ok {
					result.Content = content
				}
				if url, ok := props["url"].(string); ok {
					result.SourceURL = url
				}
				if idx, ok := props["chunkIndex"].(float64); ok {
					result.ChunkIndex = int(idx)
				}
				if total, ok := props["totalChunks"].(float64); ok {
					result.TotalChunks = int(total)
				}
				if additional, ok := props["_additional"].(map[string]interface{}); ok {
					if distance, ok := additional["distance"].(float64); ok {
						result.Distance = float32(distance)
					}
				}

				results = append(results, result)
			}
		}
	}
	return results, nil
}

// Count reports how many chunks are indexed, via a GraphQL meta aggregate.
func (s *Store) Count(ctx context.Context) (int, error) {
	meta := graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}

	res, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(meta).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if data, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if classes, ok := data[className].([]interface{}); ok && len(classes) > 0 {
			if entry, ok := classes[0].(map[string]interface{}); ok {
				if meta, ok := entry["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, nil
}
