package studyhive

import (
	"context"
	"fmt"
	"net/http"

	"github.com/studyhive/studyhive-go/core"
)

const usersPath = "/api/users"

// UpdateProfileRequest only sends the fields that are set.
type UpdateProfileRequest struct {
	Name           *string `json:"name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

type UpdateReputationRequest struct {
	Score  int    `json:"score"`
	Reason string `json:"reason,omitempty"`
}

// GET /api/users/{id}
func (c *Client) User(ctx context.Context, id string) (*User, error) {
	segment, err := pathID("user id", id)
	if err != nil {
		return nil, err
	}
	return core.NewTypedRequest[*User](c.apiClient).
		Path(usersPath + "/" + segment).
		Get(ctx)
}

// GET /api/users/{id}/stats
func (c *Client) UserStats(ctx context.Context, id string) (*UserStats, error) {
	segment, err := pathID("user id", id)
	if err != nil {
		return nil, err
	}
	return core.NewTypedRequest[*UserStats](c.apiClient).
		Path(usersPath + "/" + segment + "/stats").
		Get(ctx)
}

// UpdateProfile edits the current user.
// PUT /api/users/profile
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	if req.Name == nil && req.Bio == nil && req.ProfilePicture == nil {
		return nil, fmt.Errorf("update profile: nothing to update")
	}
	if req.Name != nil {
		if err := requireField("name", *req.Name); err != nil {
			return nil, err
		}
	}

	return core.NewTypedRequest[*User](c.apiClient).
		Path(usersPath + "/profile").
		Body(req).
		Put(ctx)
}

// POST /api/users/notes/{noteId}/save
func (c *Client) SaveNote(ctx context.Context, noteID string) (string, error) {
	segment, err := pathID("note id", noteID)
	if err != nil {
		return "", err
	}

	resp, err := c.apiClient.Request().Path(usersPath + "/notes/" + segment + "/save").Post(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Note saved successfully")
}

// DELETE /api/users/notes/{noteId}/save
func (c *Client) UnsaveNote(ctx context.Context, noteID string) (string, error) {
	segment, err := pathID("note id", noteID)
	if err != nil {
		return "", err
	}

	resp, err := c.apiClient.Request().Path(usersPath + "/notes/" + segment + "/save").Delete(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Note unsaved successfully")
}

// GET /api/users/saved-notes
func (c *Client) SavedNotes(ctx context.Context) ([]SavedNote, error) {
	return core.NewTypedRequest[[]SavedNote](c.apiClient).
		Path(usersPath + "/saved-notes").
		Get(ctx)
}

// Users lists every account. Admins only.
// GET /api/users
func (c *Client) Users(ctx context.Context) ([]User, error) {
	return core.NewTypedRequest[[]User](c.apiClient).
		Path(usersPath).
		Get(ctx)
}

// PATCH /api/users/{id}/role
func (c *Client) UpdateUserRole(ctx context.Context, id string, role Role) (*User, error) {
	switch role {
	case RoleStudent, RoleRep, RoleAdmin:
	default:
		return nil, fmt.Errorf("invalid role %q", role)
	}
	return c.adminUpdate(ctx, id, "/role", http.MethodPatch, map[string]Role{"role": role})
}

// PATCH /api/users/{id}/deactivate
func (c *Client) DeactivateUser(ctx context.Context, id string) (*User, error) {
	return c.adminUpdate(ctx, id, "/deactivate", http.MethodPatch, nil)
}

// PATCH /api/users/{id}/activate
func (c *Client) ActivateUser(ctx context.Context, id string) (*User, error) {
	return c.adminUpdate(ctx, id, "/activate", http.MethodPatch, nil)
}

// AssignCourses makes a rep responsible for the given courses.
// POST /api/users/{id}/assign-courses
func (c *Client) AssignCourses(ctx context.Context, id string, courseIDs []string) (*User, error) {
	if len(courseIDs) == 0 {
		return nil, fmt.Errorf("assign courses: no course ids")
	}
	return c.adminUpdate(ctx, id, "/assign-courses", http.MethodPost, map[string][]string{"courseIds": courseIDs})
}

// POST /api/users/{id}/update-reputation
func (c *Client) UpdateReputation(ctx context.Context, id string, req UpdateReputationRequest) (*User, error) {
	return c.adminUpdate(ctx, id, "/update-reputation", http.MethodPost, req)
}

func (c *Client) adminUpdate(ctx context.Context, id, action, method string, body any) (*User, error) {
	segment, err := pathID("user id", id)
	if err != nil {
		return nil, err
	}

	req := core.NewTypedRequest[*User](c.apiClient).
		Path(usersPath + "/" + segment + action)
	if body != nil {
		req = req.Body(body)
	}
	return req.Do(ctx, method)
}
