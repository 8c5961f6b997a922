package studyhive

import (
	"context"
	"strconv"

	"github.com/studyhive/studyhive-go/core"
)

const levelsPath = "/api/levels"

type LevelsOptions struct {
	// ActiveOnly filters on isActive when set.
	ActiveOnly *bool
}

type levelsList struct {
	Levels []Level `json:"levels"`
}

type levelItem struct {
	Level Level `json:"level"`
}

// Levels lists academic levels.
// GET /api/levels
func (c *Client) Levels(ctx context.Context, opts LevelsOptions) ([]Level, error) {
	query := make(map[string]string)
	if opts.ActiveOnly != nil {
		query["isActive"] = strconv.FormatBool(*opts.ActiveOnly)
	}

	resp, err := core.NewTypedRequest[levelsList](c.apiClient).
		Path(levelsPath).
		QueryMap(query).
		Get(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Levels, nil
}

// Level fetches one level by id.
// GET /api/levels/{id}
func (c *Client) Level(ctx context.Context, id string) (*Level, error) {
	segment, err := pathID("level id", id)
	if err != nil {
		return nil, err
	}

	resp, err := core.NewTypedRequest[levelItem](c.apiClient).
		Path(levelsPath + "/" + segment).
		Get(ctx)
	if err != nil {
		return nil, err
	}
	return &resp.Level, nil
}

// LevelByCode fetches one level by its code, e.g. "200".
// GET /api/levels/code/{code}
func (c *Client) LevelByCode(ctx context.Context, code string) (*Level, error) {
	segment, err := pathID("level code", code)
	if err != nil {
		return nil, err
	}

	resp, err := core.NewTypedRequest[levelItem](c.apiClient).
		Path(levelsPath + "/code/" + segment).
		Get(ctx)
	if err != nil {
		return nil, err
	}
	return &resp.Level, nil
}
