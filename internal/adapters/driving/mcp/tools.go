package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query  string `json:"query" jsonschema:"the question to retrieve context for"`
	K      int    `json:"k,omitempty" jsonschema:"number of passages to target (default from configuration)"`
	Budget int    `json:"budget,omitempty" jsonschema:"context budget in characters (default from configuration)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Snippets []SnippetOutput `json:"snippets"`
	Count    int             `json:"count"`
	Size     int             `json:"size"`
	Budget   int             `json:"budget"`
}

// SnippetOutput represents a single cited passage.
type SnippetOutput struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Score      float64 `json:"score"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	DocumentID string            `json:"document_id" jsonschema:"stable identifier for the document; re-using an ID replaces the prior version"`
	Content    string            `json:"content" jsonschema:"the full text content to ingest"`
	Metadata   map[string]string `json:"metadata,omitempty" jsonschema:"optional key-value metadata"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
	Replaced   bool   `json:"replaced"`
}

// RemoveInput is the input schema for the remove tool.
type RemoveInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to remove"`
}

// RemoveOutput is the output schema for the remove tool.
type RemoveOutput struct {
	DocumentID string `json:"document_id"`
	Removed    bool   `json:"removed"`
}

// StatsInput is the input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	Documents   int    `json:"documents"`
	Chunks      int    `json:"chunks"`
	Terms       int    `json:"terms"`
	Vectors     int    `json:"vectors"`
	Dimensions  int    `json:"dimensions"`
	Model       string `json:"model,omitempty"`
	Quarantined int    `json:"quarantined,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Retrieve the most relevant passages for a question, with document citations",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Ingest a text document so it becomes retrievable",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove",
		Description: "Remove a document and all its passages",
	}, s.handleRemove)

	if s.ports.Admin != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "stats",
			Description: "Collection statistics: document, chunk, and vector counts",
		}, s.handleStats)
	}
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	opts := domain.QueryOptions{
		K:      input.K,
		Budget: input.Budget,
	}

	window, err := s.ports.Retrieval.Query(ctx, input.Query, opts)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Snippets: make([]SnippetOutput, len(window.Snippets)),
		Count:    len(window.Snippets),
		Size:     window.Size,
		Budget:   window.Budget,
	}

	for i := range window.Snippets {
		output.Snippets[i] = SnippetOutput{
			DocumentID: window.Snippets[i].DocumentID,
			ChunkID:    window.Snippets[i].ChunkID,
			Text:       window.Snippets[i].Text,
			Start:      window.Snippets[i].Start,
			End:        window.Snippets[i].End,
			Score:      window.Snippets[i].Score,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	doc := domain.Document{
		ID:       input.DocumentID,
		Content:  input.Content,
		Source:   "mcp",
		Metadata: input.Metadata,
	}

	result, err := s.ports.Retrieval.Ingest(ctx, doc)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID: result.DocumentID,
		Chunks:     result.Chunks,
		Replaced:   result.Replaced,
	}, nil
}

// handleRemove handles the remove tool invocation.
func (s *Server) handleRemove(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RemoveInput,
) (*mcp.CallToolResult, RemoveOutput, error) {
	if err := s.ports.Retrieval.Remove(ctx, input.DocumentID); err != nil {
		return nil, RemoveOutput{}, err
	}

	return nil, RemoveOutput{
		DocumentID: input.DocumentID,
		Removed:    true,
	}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Admin.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	return nil, StatsOutput{
		Documents:   stats.Documents,
		Chunks:      stats.Chunks,
		Terms:       stats.Terms,
		Vectors:     stats.Vectors,
		Dimensions:  stats.Dimensions,
		Model:       stats.EmbeddingModel,
		Quarantined: stats.Quarantined,
	}, nil
}
