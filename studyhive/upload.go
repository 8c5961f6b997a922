package studyhive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/studyhive/studyhive-go/core"
)

const PresignedURLPath = "/api/upload/presigned-url"

type UploadFolder string

const (
	FolderNotes         UploadFolder = "notes"
	FolderPastQuestions UploadFolder = "past-questions"
	FolderOfficialNotes UploadFolder = "official-notes"
	FolderQuizzes       UploadFolder = "quizzes"
	FolderProfiles      UploadFolder = "profiles"
)

type PresignedURLRequest struct {
	FileName string       `json:"fileName"`
	FileType string       `json:"fileType"`
	Folder   UploadFolder `json:"folder,omitempty"`
}

type PresignedUpload struct {
	UploadURL   string `json:"uploadUrl"`
	FileKey     string `json:"fileKey"`
	DownloadURL string `json:"downloadUrl"`
}

// UploadedFile identifies a stored object. FileKey is what resource
// endpoints such as CreatePastQuestion expect.
type UploadedFile struct {
	FileKey     string `json:"fileKey"`
	DownloadURL string `json:"downloadUrl"`
}

// PresignedURL asks the backend for a direct upload url.
// POST /api/upload/presigned-url
func (c *Client) PresignedURL(ctx context.Context, req PresignedURLRequest) (*PresignedUpload, error) {
	if err := requireField("file name", req.FileName); err != nil {
		return nil, err
	}
	if err := requireField("file type", req.FileType); err != nil {
		return nil, err
	}

	upload, err := core.NewTypedRequest[*PresignedUpload](c.apiClient).
		Path(PresignedURLPath).
		Body(req).
		Post(ctx)
	if err != nil {
		return nil, err
	}
	if upload == nil || upload.UploadURL == "" || upload.FileKey == "" {
		return nil, fmt.Errorf("presigned url response is missing uploadUrl or fileKey")
	}
	return upload, nil
}

// PutObject sends the file straight to object storage. The url carries its
// own signature, so no bearer token is attached.
func (c *Client) PutObject(ctx context.Context, uploadURL, contentType string, r io.Reader) error {
	if err := requireField("upload url", uploadURL); err != nil {
		return err
	}

	resp, err := c.apiClient.Request().
		Path(uploadURL).
		RawBody(contentType, r).
		WithoutToken().
		Put(ctx)
	if err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	if !resp.IsSuccess() {
		_, err := core.ParseEnvelope[json.RawMessage](resp.StatusCode, resp.Body)
		return fmt.Errorf("upload object: %w", err)
	}
	return nil
}

// UploadFile stores a file in two steps: request a presigned url, then put
// the bytes to it.
func (c *Client) UploadFile(ctx context.Context, fileName, contentType string, folder UploadFolder, r io.Reader) (*UploadedFile, error) {
	upload, err := c.PresignedURL(ctx, PresignedURLRequest{
		FileName: fileName,
		FileType: contentType,
		Folder:   folder,
	})
	if err != nil {
		return nil, err
	}
	if err := c.PutObject(ctx, upload.UploadURL, contentType, r); err != nil {
		return nil, err
	}
	return &UploadedFile{FileKey: upload.FileKey, DownloadURL: upload.DownloadURL}, nil
}
