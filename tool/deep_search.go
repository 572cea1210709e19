package tool

import (
	"context"
	"strings"
)

// maxFollowUps caps how many follow-up queries one deep search may issue.
const maxFollowUps = 3

// DeepSearchResult is the structured payload returned to the model: the main
// search, extracted leads worth chasing, and any follow-up searches.
type DeepSearchResult struct {
	MainQuery       string           `json:"main_query"`
	MainAnswer      string           `json:"main_answer,omitempty"`
	MainResults     []SearchResult   `json:"main_results"`
	Leads           []string         `json:"leads"`
	FollowUpResults []FollowUpResult `json:"follow_up_results"`
}

// FollowUpResult pairs one follow-up query with its results.
type FollowUpResult struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// DeepSearchTool exposes advanced search with lead extraction and bounded
// follow-up queries, for chasing contradictions and open questions surfaced
// by earlier searches.
type DeepSearchTool struct {
	client *TavilyClient
}

// NewDeepSearchTool wraps a Tavily client as the deep_search_web tool.
func NewDeepSearchTool(client *TavilyClient) *DeepSearchTool {
	return &DeepSearchTool{client: client}
}

// Name implements Tool.
func (t *DeepSearchTool) Name() string { return "deep_search_web" }

// Description implements Tool.
func (t *DeepSearchTool) Description() string {
	return "Perform deep web search with automatic lead extraction and optional follow-up queries. Use to chase contradictions, open questions and promising leads from earlier searches."
}

// Parameters implements Tool.
func (t *DeepSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "The main search query"},
			"follow_up_queries": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Follow-up queries to explore (at most 3 are executed)",
			},
		},
		"required": []string{"query"},
	}
}

// Call implements Tool. The main search runs with the answer summary enabled;
// follow-up failures are skipped so one bad query does not void the rest.
func (t *DeepSearchTool) Call(ctx context.Context, args map[string]any) (any, error) {
	query, ok := stringArg(args, "query")
	if !ok {
		return nil, NewToolError(t.Name(), "missing required argument: query")
	}

	main, err := t.client.Search(ctx, SearchRequest{
		Query:         query,
		SearchDepth:   "advanced",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error())
	}

	out := DeepSearchResult{
		MainQuery:       query,
		MainAnswer:      main.Answer,
		MainResults:     main.Results,
		Leads:           extractLeads(main.Results),
		FollowUpResults: []FollowUpResult{},
	}

	for _, followUp := range followUpQueries(args) {
		resp, err := t.client.Search(ctx, SearchRequest{
			Query:       followUp,
			SearchDepth: "advanced",
		})
		if err != nil {
			continue
		}
		out.FollowUpResults = append(out.FollowUpResults, FollowUpResult{
			Query:   followUp,
			Results: resp.Results,
		})
	}
	return out, nil
}

// extractLeads pulls snippets from the top results that hint at open
// questions or contradictions worth a follow-up search.
func extractLeads(results []SearchResult) []string {
	leads := []string{}
	for i, r := range results {
		if i == 3 {
			break
		}
		lower := strings.ToLower(r.Content)
		if !strings.Contains(r.Content, "?") &&
			!strings.Contains(lower, "however") &&
			!strings.Contains(lower, "but") {
			continue
		}
		lead := r.Content
		if len(lead) > 200 {
			lead = lead[:200] + "..."
		}
		leads = append(leads, lead)
	}
	return leads
}

// followUpQueries reads at most maxFollowUps string entries from the
// follow_up_queries argument.
func followUpQueries(args map[string]any) []string {
	raw, ok := args["follow_up_queries"].([]any)
	if !ok {
		return nil
	}
	var queries []string
	for _, entry := range raw {
		if q, ok := entry.(string); ok && q != "" {
			queries = append(queries, q)
		}
		if len(queries) == maxFollowUps {
			break
		}
	}
	return queries
}
