package studyhive

import (
	"context"
	"encoding/json"

	"github.com/studyhive/studyhive-go/core"
)

const searchPath = "/api/search"

// SearchScope narrows a search to one resource kind. Empty searches all.
type SearchScope string

const (
	SearchAll           SearchScope = ""
	SearchCourses       SearchScope = "courses"
	SearchNotes         SearchScope = "notes"
	SearchPastQuestions SearchScope = "past-questions"
	SearchQuizzes       SearchScope = "quizzes"
)

type SearchOptions struct {
	Query string
	Type  SearchScope
	ListOptions
}

type SearchResult struct {
	Courses       []Course        `json:"courses"`
	Notes         []CommunityNote `json:"notes"`
	PastQuestions []PastQuestion  `json:"pastQuestions"`
	Quizzes       []Quiz          `json:"quizzes"`
	Total         int             `json:"total,omitempty"`
}

// Search runs the global search.
// GET /api/search?q&type&page&limit
func (c *Client) Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	if err := requireField("search query", opts.Query); err != nil {
		return nil, err
	}

	query := opts.ListOptions.apply(nil)
	query["q"] = opts.Query
	setString(query, "type", string(opts.Type))

	return core.NewTypedRequest[*SearchResult](c.apiClient).
		Path(searchPath).
		QueryMap(query).
		Get(ctx)
}

// SearchSuggestions returns the raw suggestion payload; its shape depends on
// scope.
// GET /api/search/suggestions?q&type
func (c *Client) SearchSuggestions(ctx context.Context, q string, scope SearchScope) (json.RawMessage, error) {
	if err := requireField("search query", q); err != nil {
		return nil, err
	}

	query := map[string]string{"q": q}
	setString(query, "type", string(scope))

	return core.NewTypedRequest[json.RawMessage](c.apiClient).
		Path(searchPath + "/suggestions").
		QueryMap(query).
		Get(ctx)
}
