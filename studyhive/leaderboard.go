package studyhive

import (
	"context"

	"github.com/studyhive/studyhive-go/core"
)

const (
	leaderboardPath = "/api/leaderboard"

	defaultTopContributors = 5
)

type LeaderboardOptions struct {
	Limit int
	// Period is passed through as is, e.g. "week", "month" or "all".
	Period string
}

func (c *Client) Leaderboard(ctx context.Context, opts LeaderboardOptions) ([]LeaderboardEntry, error) {
	query := make(map[string]string)
	setInt(query, "limit", opts.Limit)
	setString(query, "period", opts.Period)

	return core.NewTypedRequest[[]LeaderboardEntry](c.apiClient).
		Path(leaderboardPath).
		QueryMap(query).
		Get(ctx)
}

// MyRank returns the current user's leaderboard entry.
func (c *Client) MyRank(ctx context.Context) (*LeaderboardEntry, error) {
	return core.NewTypedRequest[*LeaderboardEntry](c.apiClient).
		Path(leaderboardPath + "/me").
		Get(ctx)
}

// TopContributors returns the top limit users, five when limit is not
// positive.
func (c *Client) TopContributors(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultTopContributors
	}
	query := make(map[string]string)
	setInt(query, "limit", limit)

	return core.NewTypedRequest[[]LeaderboardEntry](c.apiClient).
		Path(leaderboardPath + "/top-contributors").
		QueryMap(query).
		Get(ctx)
}
