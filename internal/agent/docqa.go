package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/tools"

	"healthcare-agent/internal/chromemdb"
	"healthcare-agent/internal/models"
)

// docRetriever is a schema.Retriever that remembers what it returned, so the
// tool can cite sources after the chain has run.
type docRetriever interface {
	schema.Retriever
	Documents() []schema.Document
}

// indexRetriever retrieves the k nearest chunks from the vector index.
type indexRetriever struct {
	embedder embeddings.Embedder
	index    *chromemdb.VectorDBManager
	k        int
	docs     []schema.Document
}

func newIndexRetriever(embedder embeddings.Embedder, index *chromemdb.VectorDBManager, k int) *indexRetriever {
	return &indexRetriever{embedder: embedder, index: index, k: k}
}

func (r *indexRetriever) GetRelevantDocuments(ctx context.Context, query string) ([]schema.Document, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// chromem rejects result counts above the collection size
	n := r.k
	if count := r.index.Count(); count < n {
		n = count
	}
	if n == 0 {
		r.docs = nil
		return nil, nil
	}

	results, err := r.index.SearchWithQueryOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       n,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, 0, len(results))
	for _, res := range results {
		metadata := make(map[string]any, len(res.Metadata))
		for k, v := range res.Metadata {
			metadata[k] = v
		}
		docs = append(docs, schema.Document{
			PageContent: res.Content,
			Metadata:    metadata,
			Score:       res.Similarity,
		})
	}
	r.docs = docs
	return docs, nil
}

func (r *indexRetriever) Documents() []schema.Document {
	return r.docs
}

// docTool answers questions from the PDF vector index with retrieval QA.
type docTool struct {
	llm       llms.Model
	retriever docRetriever
	rec       *Recorder
}

var _ tools.Tool = (*docTool)(nil)

func newDocTool(llm llms.Model, retriever docRetriever, rec *Recorder) *docTool {
	return &docTool{llm: llm, retriever: retriever, rec: rec}
}

func (t *docTool) Name() string {
	return models.DocToolName
}

func (t *docTool) Description() string {
	return models.DocToolDescription
}

// Call runs retrieval QA and replies in the fixed text contract the router
// forwards verbatim. Retrieval or generation errors propagate to the
// endpoint handler.
func (t *docTool) Call(ctx context.Context, input string) (string, error) {
	qa := chains.NewRetrievalQAFromLLM(t.llm, t.retriever)
	answer, err := chains.Run(ctx, qa, input)
	if err != nil {
		return "", err
	}

	srcLine := citationLine(t.retriever.Documents())
	raw := fmt.Sprintf("Source: PDF • Files: %s\nTool Used: %s\nAnswer: %s", srcLine, models.DocToolName, answer)
	t.rec.Record(Invocation{
		Tool:    models.DocToolName,
		Answer:  answer,
		Details: srcLine,
		Raw:     raw,
	})
	return raw, nil
}

// citationLine renders up to five deduplicated "file (p.N)" citations.
func citationLine(docs []schema.Document) string {
	if len(docs) == 0 {
		return "PDF index (no page metadata)"
	}

	seen := make(map[string]struct{})
	var citations []string
	for _, doc := range docs {
		source := metadataString(doc.Metadata, "source", "PDF")
		page := metadataString(doc.Metadata, "page", "?")
		citation := fmt.Sprintf("%s (p.%s)", source, page)
		if _, ok := seen[citation]; ok {
			continue
		}
		seen[citation] = struct{}{}
		citations = append(citations, citation)
		if len(citations) == 5 {
			break
		}
	}
	return strings.Join(citations, ", ")
}

func metadataString(metadata map[string]any, key, fallback string) string {
	v, ok := metadata[key]
	if !ok || v == nil {
		return fallback
	}
	s := fmt.Sprint(v)
	if s == "" {
		return fallback
	}
	return s
}
