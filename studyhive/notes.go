package studyhive

import (
	"context"
	"fmt"

	"github.com/studyhive/studyhive-go/core"
)

const (
	notesPath = "/api/community-notes"

	defaultNotesLimit = 10
	defaultNotesSort  = "recent"
)

type NotesOptions struct {
	CourseID string
	// SortBy is "recent" by default; the backend also knows "popular".
	SortBy string
	Status string
	ListOptions
}

func (o NotesOptions) query() map[string]string {
	if o.Page <= 0 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = defaultNotesLimit
	}
	if o.SortBy == "" {
		o.SortBy = defaultNotesSort
	}

	query := o.ListOptions.apply(nil)
	setString(query, "sortBy", o.SortBy)
	setString(query, "courseId", o.CourseID)
	setString(query, "status", o.Status)
	return query
}

type CreateNoteRequest struct {
	CourseID   string   `json:"courseId"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
	CoverImage string   `json:"coverImage,omitempty"`
}

// UpdateNoteRequest only sends the fields that are set.
type UpdateNoteRequest struct {
	Title      *string  `json:"title,omitempty"`
	Content    *string  `json:"content,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	CoverImage *string  `json:"coverImage,omitempty"`
}

// Notes lists community notes, newest first unless SortBy says otherwise.
// GET /api/community-notes
func (c *Client) Notes(ctx context.Context, opts NotesOptions) (*NotesPage, error) {
	return core.NewTypedRequest[*NotesPage](c.apiClient).
		Path(notesPath).
		QueryMap(opts.query()).
		Get(ctx)
}

// NotesByCourse lists the notes of one course.
// GET /api/community-notes/course/{courseId}
func (c *Client) NotesByCourse(ctx context.Context, courseID string, opts NotesOptions) (*NotesPage, error) {
	segment, err := pathID("course id", courseID)
	if err != nil {
		return nil, err
	}
	opts.CourseID = ""

	return core.NewTypedRequest[*NotesPage](c.apiClient).
		Path(notesPath + "/course/" + segment).
		QueryMap(opts.query()).
		Get(ctx)
}

// MyNotes lists the notes written by the current user.
// GET /api/community-notes/me
func (c *Client) MyNotes(ctx context.Context, opts ListOptions) (*NotesPage, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultNotesLimit
	}

	return core.NewTypedRequest[*NotesPage](c.apiClient).
		Path(notesPath + "/me").
		QueryMap(opts.apply(nil)).
		Get(ctx)
}

// GET /api/community-notes/{id}
func (c *Client) Note(ctx context.Context, id string) (*CommunityNote, error) {
	segment, err := pathID("note id", id)
	if err != nil {
		return nil, err
	}
	return core.NewTypedRequest[*CommunityNote](c.apiClient).
		Path(notesPath + "/" + segment).
		Get(ctx)
}

// POST /api/community-notes
func (c *Client) CreateNote(ctx context.Context, req CreateNoteRequest) (*CommunityNote, error) {
	if err := requireField("course id", req.CourseID); err != nil {
		return nil, err
	}
	if err := requireField("title", req.Title); err != nil {
		return nil, err
	}

	return core.NewTypedRequest[*CommunityNote](c.apiClient).
		Path(notesPath).
		Body(req).
		Post(ctx)
}

// PUT /api/community-notes/{id}
func (c *Client) UpdateNote(ctx context.Context, id string, req UpdateNoteRequest) (*CommunityNote, error) {
	segment, err := pathID("note id", id)
	if err != nil {
		return nil, err
	}
	if req.Title == nil && req.Content == nil && req.Tags == nil && req.CoverImage == nil {
		return nil, fmt.Errorf("update note %s: nothing to update", id)
	}

	return core.NewTypedRequest[*CommunityNote](c.apiClient).
		Path(notesPath + "/" + segment).
		Body(req).
		Put(ctx)
}

// DELETE /api/community-notes/{id}
func (c *Client) DeleteNote(ctx context.Context, id string) (string, error) {
	segment, err := pathID("note id", id)
	if err != nil {
		return "", err
	}

	resp, err := c.apiClient.Request().Path(notesPath + "/" + segment).Delete(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Note deleted successfully")
}

// ReportNote flags a note for moderator review.
// POST /api/community-notes/{id}/report
func (c *Client) ReportNote(ctx context.Context, id string) (string, error) {
	segment, err := pathID("note id", id)
	if err != nil {
		return "", err
	}

	resp, err := c.apiClient.Request().Path(notesPath + "/" + segment + "/report").Post(ctx)
	if err != nil {
		return "", err
	}
	return message(resp, "Note reported successfully")
}
