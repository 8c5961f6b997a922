package studyhive

import (
	"context"

	"github.com/studyhive/studyhive-go/core"
)

const coursesPath = "/api/courses"

type CoursesOptions struct {
	LevelID  string
	Semester Semester
	Search   string
	ListOptions
}

func (o CoursesOptions) query() map[string]string {
	query := o.ListOptions.apply(nil)
	setString(query, "levelId", o.LevelID)
	setString(query, "semester", string(o.Semester))
	setString(query, "search", o.Search)
	return query
}

// Courses lists courses, optionally filtered by level, semester or a
// search term.
// GET /api/courses
func (c *Client) Courses(ctx context.Context, opts CoursesOptions) ([]Course, error) {
	return core.NewTypedRequest[[]Course](c.apiClient).
		Path(coursesPath).
		QueryMap(opts.query()).
		Get(ctx)
}

// Course fetches one course.
// GET /api/courses/{id}
func (c *Client) Course(ctx context.Context, id string) (*Course, error) {
	segment, err := pathID("course id", id)
	if err != nil {
		return nil, err
	}
	return core.NewTypedRequest[*Course](c.apiClient).
		Path(coursesPath + "/" + segment).
		Get(ctx)
}
