package studyhive

import (
	"context"
	"fmt"

	"github.com/studyhive/studyhive-go/core"
)

const pastQuestionsPath = "/api/past-questions"

type PastQuestionsOptions struct {
	CourseID string
	Type     PastQuestionType
	Year     int
	Semester Semester
	ListOptions
}

func (o PastQuestionsOptions) query() map[string]string {
	query := o.ListOptions.apply(nil)
	setString(query, "courseId", o.CourseID)
	setString(query, "type", string(o.Type))
	setInt(query, "year", o.Year)
	setString(query, "semester", string(o.Semester))
	return query
}

// CreatePastQuestionRequest registers a file that was already uploaded,
// see UploadFile.
type CreatePastQuestionRequest struct {
	CourseID string           `json:"courseId"`
	Year     int              `json:"year"`
	Semester Semester         `json:"semester"`
	Type     PastQuestionType `json:"type"`
	FileKey  string           `json:"fileKey"`
	FileName string           `json:"fileName"`
	FileSize int64            `json:"fileSize,omitempty"`
	FileType string           `json:"fileType,omitempty"`
}

type pastQuestionDownload struct {
	DownloadURL string `json:"downloadUrl"`
}

// GET /api/past-questions
func (c *Client) PastQuestions(ctx context.Context, opts PastQuestionsOptions) (*Page[PastQuestion], error) {
	if opts.Type != "" && !opts.Type.Valid() {
		return nil, fmt.Errorf("invalid past question type %q", opts.Type)
	}

	return core.NewTypedRequest[*Page[PastQuestion]](c.apiClient).
		Path(pastQuestionsPath).
		QueryMap(opts.query()).
		Get(ctx)
}

// PastQuestionsByCourse is PastQuestions filtered on one course.
func (c *Client) PastQuestionsByCourse(ctx context.Context, courseID string, opts PastQuestionsOptions) (*Page[PastQuestion], error) {
	if err := requireField("course id", courseID); err != nil {
		return nil, err
	}
	opts.CourseID = courseID
	return c.PastQuestions(ctx, opts)
}

// GET /api/past-questions/{id}
func (c *Client) PastQuestion(ctx context.Context, id string) (*PastQuestion, error) {
	segment, err := pathID("past question id", id)
	if err != nil {
		return nil, err
	}
	return core.NewTypedRequest[*PastQuestion](c.apiClient).
		Path(pastQuestionsPath + "/" + segment).
		Get(ctx)
}

// CreatePastQuestion is limited to reps and admins.
// POST /api/past-questions
func (c *Client) CreatePastQuestion(ctx context.Context, req CreatePastQuestionRequest) (*PastQuestion, error) {
	if err := requireField("course id", req.CourseID); err != nil {
		return nil, err
	}
	if err := requireField("file key", req.FileKey); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("invalid past question type %q", req.Type)
	}
	if req.Year <= 0 {
		return nil, fmt.Errorf("past question year %d is not valid", req.Year)
	}

	return core.NewTypedRequest[*PastQuestion](c.apiClient).
		Path(pastQuestionsPath).
		Body(req).
		Post(ctx)
}

// DownloadPastQuestion returns a short-lived signed url for the file.
// GET /api/past-questions/{id}/download
func (c *Client) DownloadPastQuestion(ctx context.Context, id string) (string, error) {
	segment, err := pathID("past question id", id)
	if err != nil {
		return "", err
	}

	download, err := core.NewTypedRequest[pastQuestionDownload](c.apiClient).
		Path(pastQuestionsPath + "/" + segment + "/download").
		Get(ctx)
	if err != nil {
		return "", err
	}
	if download.DownloadURL == "" {
		return "", fmt.Errorf("download past question %s: no download url in response", id)
	}
	return download.DownloadURL, nil
}
