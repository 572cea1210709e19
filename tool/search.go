package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tavilyBaseURL = "https://api.tavily.com"

// TavilyClient is a minimal client for the Tavily search API. There is no
// official Go SDK; the REST surface is one POST endpoint.
type TavilyClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// TavilyOptions configures the Tavily client.
type TavilyOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewTavilyClient constructs a client for the Tavily search API.
func NewTavilyClient(apiKey string, optFns ...func(o *TavilyOptions)) *TavilyClient {
	opts := TavilyOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = tavilyBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TavilyClient{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// SearchRequest holds the knobs the tools expose to the model.
type SearchRequest struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results,omitempty"`
	SearchDepth   string `json:"search_depth,omitempty"` // "basic" or "advanced"
	IncludeAnswer bool   `json:"include_answer,omitempty"`
}

// SearchResult is one hit returned by Tavily.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResponse is the decoded Tavily payload.
type SearchResponse struct {
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// Search performs one search call.
func (c *TavilyClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.MaxResults <= 0 {
		req.MaxResults = 10
	}
	if req.SearchDepth == "" {
		req.SearchDepth = "advanced"
	}

	payload, err := json.Marshal(struct {
		SearchRequest
		APIKey string `json:"api_key"`
	}{SearchRequest: req, APIKey: c.apiKey})
	if err != nil {
		return nil, fmt.Errorf("tavily request encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily request build: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tavily api error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("tavily api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("tavily response decode: %w", err)
	}
	return &decoded, nil
}

// SearchTool exposes plain web search returning formatted text results.
type SearchTool struct {
	client *TavilyClient
}

// NewSearchTool wraps a Tavily client as the search_web tool.
func NewSearchTool(client *TavilyClient) *SearchTool {
	return &SearchTool{client: client}
}

// Name implements Tool.
func (t *SearchTool) Name() string { return "search_web" }

// Description implements Tool.
func (t *SearchTool) Description() string {
	return "Search the web for information about a topic. Returns search results as formatted text with sources."
}

// Parameters implements Tool.
func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":       map[string]any{"type": "string", "description": "The search query"},
			"max_results": map[string]any{"type": "integer", "description": "Maximum number of results (default 10)"},
		},
		"required": []string{"query"},
	}
}

// Call implements Tool.
func (t *SearchTool) Call(ctx context.Context, args map[string]any) (any, error) {
	query, ok := stringArg(args, "query")
	if !ok {
		return nil, NewToolError(t.Name(), "missing required argument: query")
	}

	resp, err := t.client.Search(ctx, SearchRequest{
		Query:      query,
		MaxResults: intArg(args, "max_results", 10),
	})
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error())
	}
	if len(resp.Results) == 0 {
		return "No results found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for: %s\n\n", query)
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. %s\n   URL: %s\n   %s\n\n", i+1, r.Title, r.URL, r.Content)
	}
	return b.String(), nil
}

// SearchWithSourcesTool exposes structured web search with source tracking
// and relevance scores. Results are returned as JSON so the model can quote
// URLs and scores verbatim in its findings.
type SearchWithSourcesTool struct {
	client *TavilyClient
}

// NewSearchWithSourcesTool wraps a Tavily client as the
// search_web_with_sources tool.
func NewSearchWithSourcesTool(client *TavilyClient) *SearchWithSourcesTool {
	return &SearchWithSourcesTool{client: client}
}

// Name implements Tool.
func (t *SearchWithSourcesTool) Name() string { return "search_web_with_sources" }

// Description implements Tool.
func (t *SearchWithSourcesTool) Description() string {
	return "Search the web and return structured results with source URLs, snippets and relevance scores. Use when findings must cite sources."
}

// Parameters implements Tool.
func (t *SearchWithSourcesTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":        map[string]any{"type": "string", "description": "The search query"},
			"max_results":  map[string]any{"type": "integer", "description": "Maximum number of results (default 10)"},
			"search_depth": map[string]any{"type": "string", "enum": []string{"basic", "advanced"}, "description": "Search depth (default advanced)"},
		},
		"required": []string{"query"},
	}
}

// Call implements Tool.
func (t *SearchWithSourcesTool) Call(ctx context.Context, args map[string]any) (any, error) {
	query, ok := stringArg(args, "query")
	if !ok {
		return nil, NewToolError(t.Name(), "missing required argument: query")
	}
	depth := "advanced"
	if d, ok := stringArg(args, "search_depth"); ok {
		depth = d
	}

	resp, err := t.client.Search(ctx, SearchRequest{
		Query:         query,
		MaxResults:    intArg(args, "max_results", 10),
		SearchDepth:   depth,
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error())
	}

	type entry struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
		Type    string  `json:"type"`
	}
	entries := make([]entry, 0, len(resp.Results)+1)
	if resp.Answer != "" {
		entries = append(entries, entry{Title: "AI Summary", Content: resp.Answer, Score: 1.0, Type: "answer"})
	}
	for _, r := range resp.Results {
		entries = append(entries, entry{Title: r.Title, URL: r.URL, Content: r.Content, Score: r.Score, Type: "source"})
	}
	if len(entries) == 0 {
		return "No results found.", nil
	}
	return entries, nil
}
