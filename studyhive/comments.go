package studyhive

import (
	"context"
	"fmt"

	"github.com/studyhive/studyhive-go/core"
)

const commentsPath = "/api/comments"

type CreateCommentRequest struct {
	ParentID   string        `json:"parentId"`
	ParentType CommentParent `json:"parentType"`
	Content    string        `json:"content"`
}

// Comments lists the comments on one note, quiz or past question.
// GET /api/comments?parentId&parentType
func (c *Client) Comments(ctx context.Context, parentID string, parentType CommentParent) (*Page[Comment], error) {
	if err := requireField("parent id", parentID); err != nil {
		return nil, err
	}
	if !parentType.Valid() {
		return nil, fmt.Errorf("invalid comment parent type %q", parentType)
	}

	return core.NewTypedRequest[*Page[Comment]](c.apiClient).
		Path(commentsPath).
		Query("parentId", parentID).
		Query("parentType", string(parentType)).
		Get(ctx)
}

// POST /api/comments
func (c *Client) CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	if err := requireField("parent id", req.ParentID); err != nil {
		return nil, err
	}
	if !req.ParentType.Valid() {
		return nil, fmt.Errorf("invalid comment parent type %q", req.ParentType)
	}
	if err := requireField("content", req.Content); err != nil {
		return nil, err
	}

	return core.NewTypedRequest[*Comment](c.apiClient).
		Path(commentsPath).
		Body(req).
		Post(ctx)
}

// PATCH /api/comments/{id}
func (c *Client) UpdateComment(ctx context.Context, id, content string) (*Comment, error) {
	segment, err := pathID("comment id", id)
	if err != nil {
		return nil, err
	}
	if err := requireField("content", content); err != nil {
		return nil, err
	}

	return core.NewTypedRequest[*Comment](c.apiClient).
		Path(commentsPath + "/" + segment).
		Body(map[string]string{"content": content}).
		Patch(ctx)
}

// DELETE /api/comments/{id}
func (c *Client) DeleteComment(ctx context.Context, id string) (string, error) {
	segment, err := pathID("comment id", id)
	if err != nil {
		return "", err
	}

	resp, err := c.apiClient.Request().Path(commentsPath + "/" + segment).Delete(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Comment deleted successfully")
}
