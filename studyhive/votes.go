package studyhive

import (
	"context"
	"fmt"
)

const (
	votesPath = "/api/votes"

	// VoteOnNote is the target type of a community note vote.
	VoteOnNote = "CommunityNote"
)

type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

type VoteRequest struct {
	TargetID string `json:"targetId"`
	// TargetType defaults to VoteOnNote.
	TargetType string   `json:"targetType"`
	VoteType   VoteType `json:"voteType"`
}

// Vote casts or changes the current user's vote on a target.
// POST /api/votes
func (c *Client) Vote(ctx context.Context, req VoteRequest) (string, error) {
	if err := requireField("target id", req.TargetID); err != nil {
		return "", err
	}
	if req.TargetType == "" {
		req.TargetType = VoteOnNote
	}
	if req.VoteType != Upvote && req.VoteType != Downvote {
		return "", fmt.Errorf("invalid vote type %q", req.VoteType)
	}

	resp, err := c.apiClient.Request().Path(votesPath).Body(req).Post(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Vote recorded")
}

// DELETE /api/votes/{id}
func (c *Client) RemoveVote(ctx context.Context, voteID string) (string, error) {
	segment, err := pathID("vote id", voteID)
	if err != nil {
		return "", err
	}

	resp, err := c.apiClient.Request().Path(votesPath + "/" + segment).Delete(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Vote removed")
}
