package studyhive

import (
	"context"
	"fmt"
	"strconv"

	"github.com/studyhive/studyhive-go/core"
)

const quizzesPath = "/api/quizzes"

type QuizzesOptions struct {
	CourseID string
	ListOptions
}

func (c *Client) Quizzes(ctx context.Context, opts QuizzesOptions) (*Page[Quiz], error) {
	query := opts.ListOptions.apply(nil)
	setString(query, "courseId", opts.CourseID)

	return core.NewTypedRequest[*Page[Quiz]](c.apiClient).
		Path(quizzesPath).
		QueryMap(query).
		Get(ctx)
}

// Quiz fetches a quiz. With attempting set the backend includes the
// questions without their answers.
func (c *Client) Quiz(ctx context.Context, id string, attempting bool) (*Quiz, error) {
	segment, err := pathID("quiz id", id)
	if err != nil {
		return nil, err
	}

	return core.NewTypedRequest[*Quiz](c.apiClient).
		Path(quizzesPath + "/" + segment).
		Query("attempting", strconv.FormatBool(attempting)).
		Get(ctx)
}

// SubmitAttempt grades one attempt server side.
func (c *Client) SubmitAttempt(ctx context.Context, id string, attempt QuizAttempt) (*QuizAttemptResult, error) {
	segment, err := pathID("quiz id", id)
	if err != nil {
		return nil, err
	}
	if len(attempt.Answers) == 0 {
		return nil, fmt.Errorf("submit attempt %s: no answers", id)
	}
	if attempt.TimeTaken < 0 {
		return nil, fmt.Errorf("submit attempt %s: negative time taken", id)
	}

	return core.NewTypedRequest[*QuizAttemptResult](c.apiClient).
		Path(quizzesPath + "/" + segment + "/attempt").
		Body(attempt).
		Post(ctx)
}
