package studyhive

import (
	"context"
	"fmt"

	"github.com/studyhive/studyhive-go/core"
)

const requestsPath = "/api/requests"

type RequestsOptions struct {
	Status   RequestStatus
	CourseID string
	ListOptions
}

type CreateStudyRequest struct {
	CourseID string      `json:"courseId"`
	Type     RequestType `json:"type"`
	Message  string      `json:"message"`
}

func (c *Client) Requests(ctx context.Context, opts RequestsOptions) (*Page[StudyRequest], error) {
	query := opts.ListOptions.apply(nil)
	setString(query, "status", string(opts.Status))
	setString(query, "courseId", opts.CourseID)

	return core.NewTypedRequest[*Page[StudyRequest]](c.apiClient).
		Path(requestsPath).
		QueryMap(query).
		Get(ctx)
}

func (c *Client) CreateRequest(ctx context.Context, req CreateStudyRequest) (*StudyRequest, error) {
	if err := requireField("course id", req.CourseID); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("invalid request type %q", req.Type)
	}

	return core.NewTypedRequest[*StudyRequest](c.apiClient).
		Path(requestsPath).
		Body(req).
		Post(ctx)
}

// FulfillRequest marks a request resolved. Reps and admins only; payload
// may be nil.
func (c *Client) FulfillRequest(ctx context.Context, id string, payload map[string]any) (*StudyRequest, error) {
	return c.resolveRequest(ctx, id, "fulfill", payload)
}

// RejectRequest dismisses a request. Reps and admins only; payload may be
// nil.
func (c *Client) RejectRequest(ctx context.Context, id string, payload map[string]any) (*StudyRequest, error) {
	return c.resolveRequest(ctx, id, "reject", payload)
}

func (c *Client) resolveRequest(ctx context.Context, id, action string, payload map[string]any) (*StudyRequest, error) {
	segment, err := pathID("request id", id)
	if err != nil {
		return nil, err
	}

	req := core.NewTypedRequest[*StudyRequest](c.apiClient).
		Path(requestsPath + "/" + segment + "/" + action)
	if payload != nil {
		req = req.Body(payload)
	}
	return req.Patch(ctx)
}
