package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/studyhive/studyhive-go/studyhive"
)

type LoginCommand struct {
	Email    string `short:"e" long:"email" description:"account email" required:"true"`
	Password string `short:"p" long:"password" description:"account password" env:"STUDYHIVE_PASSWORD"`

	root *Options
}

func (c *LoginCommand) Execute([]string) error {
	if c.Password == "" {
		return errors.New("password is required, pass --password or set STUDYHIVE_PASSWORD")
	}
	client, err := c.root.api()
	if err != nil {
		return err
	}
	result, err := client.Login(c.root.ctx, studyhive.LoginRequest{Email: c.Email, Password: c.Password})
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, result.User)
	}
	if result.User == nil {
		fmt.Fprintln(c.root.stdout, "logged in")
		return nil
	}
	fmt.Fprintf(c.root.stdout, "logged in as %s <%s>\n", result.User.Name, result.User.Email)
	if result.NeedsVerification() {
		fmt.Fprintln(c.root.stdout, "email not verified yet")
	}
	return nil
}

type LogoutCommand struct {
	root *Options
}

func (c *LogoutCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	if err := client.Logout(c.root.ctx); err != nil {
		// Local tokens are gone either way.
		client.Config().Logger.Warn("logout request failed", "error", err)
	}
	fmt.Fprintln(c.root.stdout, "logged out")
	return nil
}

type StatusCommand struct {
	root *Options
}

type statusView struct {
	Authenticated     bool            `json:"authenticated"`
	NeedsVerification bool            `json:"needsVerification,omitempty"`
	User              *studyhive.User `json:"user,omitempty"`
	ExpiresIn         string          `json:"expiresIn,omitempty"`
}

func (c *StatusCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	state := client.CheckAuth(c.root.ctx)
	view := statusView{
		Authenticated:     state.Authenticated,
		NeedsVerification: state.NeedsVerification,
		User:              state.User,
	}
	if claims, err := client.Session(c.root.ctx); err == nil && state.Authenticated {
		if left := claims.ExpiresIn(time.Now()); left > 0 {
			view.ExpiresIn = left.Round(time.Second).String()
		}
	}

	if c.root.JSON {
		return writeJSON(c.root.stdout, view)
	}
	if !view.Authenticated {
		fmt.Fprintln(c.root.stdout, "not logged in")
		return nil
	}
	rows := [][]string{{"authenticated", "yes"}}
	if view.User != nil {
		rows = append(rows,
			[]string{"name", view.User.Name},
			[]string{"email", view.User.Email},
			[]string{"role", string(view.User.Role)},
			[]string{"reputation", fmt.Sprint(view.User.ReputationScore)},
		)
	}
	if view.NeedsVerification {
		rows = append(rows, []string{"verified", "no"})
	}
	if view.ExpiresIn != "" {
		rows = append(rows, []string{"token expires in", view.ExpiresIn})
	}
	return writeTable(c.root.stdout, nil, rows)
}

type LevelsCommand struct {
	Active bool `short:"a" long:"active" description:"only active levels"`

	root *Options
}

func (c *LevelsCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	opts := studyhive.LevelsOptions{}
	if c.Active {
		opts.ActiveOnly = &c.Active
	}
	levels, err := client.Levels(c.root.ctx, opts)
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, levels)
	}
	rows := make([][]string, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, []string{l.ID, l.Code, l.Name})
	}
	return writeTable(c.root.stdout, []string{"ID", "CODE", "NAME"}, rows)
}

type CoursesCommand struct {
	Level    string `short:"l" long:"level" description:"level id"`
	Semester string `long:"semester" description:"semester offered" choice:"first" choice:"second"`
	Search   string `short:"q" long:"search" description:"search by title or code"`
	Page     int    `long:"page" description:"page number"`
	Limit    int    `long:"limit" description:"page size"`

	root *Options
}

func (c *CoursesCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	courses, err := client.Courses(c.root.ctx, studyhive.CoursesOptions{
		LevelID:     c.Level,
		Semester:    studyhive.Semester(c.Semester),
		Search:      c.Search,
		ListOptions: studyhive.ListOptions{Page: c.Page, Limit: c.Limit},
	})
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, courses)
	}
	rows := make([][]string, 0, len(courses))
	for _, course := range courses {
		rows = append(rows, []string{course.ID, course.Code, course.Title, fmt.Sprint(course.CreditUnits)})
	}
	return writeTable(c.root.stdout, []string{"ID", "CODE", "TITLE", "UNITS"}, rows)
}

type NotesCommand struct {
	Course string `long:"course" description:"course id"`
	Sort   string `long:"sort" description:"sort order" choice:"recent" choice:"popular"`
	Mine   bool   `short:"m" long:"mine" description:"only notes you wrote"`
	Page   int    `long:"page" description:"page number"`
	Limit  int    `long:"limit" description:"page size"`

	root *Options
}

func (c *NotesCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	list := studyhive.ListOptions{Page: c.Page, Limit: c.Limit}

	var page *studyhive.NotesPage
	switch {
	case c.Mine:
		if c.Course != "" {
			return errors.New("--mine and --course cannot be combined")
		}
		page, err = client.MyNotes(c.root.ctx, list)
	case c.Course != "":
		page, err = client.NotesByCourse(c.root.ctx, c.Course, studyhive.NotesOptions{SortBy: c.Sort, ListOptions: list})
	default:
		page, err = client.Notes(c.root.ctx, studyhive.NotesOptions{SortBy: c.Sort, ListOptions: list})
	}
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, page)
	}
	rows := make([][]string, 0, len(page.Notes))
	for _, n := range page.Notes {
		rows = append(rows, []string{n.ID, n.Title, fmt.Sprint(n.Upvotes - n.Downvotes)})
	}
	if err := writeTable(c.root.stdout, []string{"ID", "TITLE", "VOTES"}, rows); err != nil {
		return err
	}
	return writePagination(c.root.stdout, page.Pagination)
}

type QuizzesCommand struct {
	Course string `long:"course" description:"course id"`
	Page   int    `long:"page" description:"page number"`
	Limit  int    `long:"limit" description:"page size"`

	root *Options
}

func (c *QuizzesCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	page, err := client.Quizzes(c.root.ctx, studyhive.QuizzesOptions{
		CourseID:    c.Course,
		ListOptions: studyhive.ListOptions{Page: c.Page, Limit: c.Limit},
	})
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, page)
	}
	rows := make([][]string, 0, len(page.Data))
	for _, q := range page.Data {
		rows = append(rows, []string{q.ID, q.Title, fmt.Sprintf("%dm", q.TimeLimitMins), fmt.Sprint(q.AttemptCount)})
	}
	if err := writeTable(c.root.stdout, []string{"ID", "TITLE", "LIMIT", "ATTEMPTS"}, rows); err != nil {
		return err
	}
	return writePagination(c.root.stdout, page.Pagination)
}

type LeaderboardCommand struct {
	Limit  int    `short:"n" long:"limit" description:"number of entries"`
	Period string `long:"period" description:"ranking window" choice:"all" choice:"month" choice:"week"`
	Me     bool   `long:"me" description:"show only your own rank"`

	root *Options
}

func (c *LeaderboardCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}

	var entries []studyhive.LeaderboardEntry
	if c.Me {
		entry, err := client.MyRank(c.root.ctx)
		if err != nil {
			return err
		}
		entries = []studyhive.LeaderboardEntry{*entry}
	} else {
		entries, err = client.Leaderboard(c.root.ctx, studyhive.LeaderboardOptions{Limit: c.Limit, Period: c.Period})
		if err != nil {
			return err
		}
	}

	if c.root.JSON {
		return writeJSON(c.root.stdout, entries)
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{fmt.Sprint(e.Rank), e.UserName, fmt.Sprint(e.ReputationScore), fmt.Sprint(e.NoteCount)})
	}
	return writeTable(c.root.stdout, []string{"RANK", "NAME", "REPUTATION", "NOTES"}, rows)
}

type RequestsCommand struct {
	List   RequestsListCommand   `command:"list" description:"list material requests"`
	Create RequestsCreateCommand `command:"create" description:"ask course reps for missing material"`
}

type RequestsListCommand struct {
	Status string `long:"status" description:"request status" choice:"pending" choice:"resolved" choice:"dismissed"`
	Course string `long:"course" description:"course id"`
	Page   int    `long:"page" description:"page number"`
	Limit  int    `long:"limit" description:"page size"`

	root *Options
}

func (c *RequestsListCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	page, err := client.Requests(c.root.ctx, studyhive.RequestsOptions{
		Status:      studyhive.RequestStatus(c.Status),
		CourseID:    c.Course,
		ListOptions: studyhive.ListOptions{Page: c.Page, Limit: c.Limit},
	})
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, page)
	}
	rows := make([][]string, 0, len(page.Data))
	for _, r := range page.Data {
		rows = append(rows, []string{r.ID, string(r.Type), string(r.Status), r.Message})
	}
	if err := writeTable(c.root.stdout, []string{"ID", "TYPE", "STATUS", "MESSAGE"}, rows); err != nil {
		return err
	}
	return writePagination(c.root.stdout, page.Pagination)
}

type RequestsCreateCommand struct {
	Course  string `long:"course" description:"course id" required:"true"`
	Type    string `short:"t" long:"type" description:"material wanted" choice:"pq" choice:"notes" choice:"quiz" required:"true"`
	Message string `short:"m" long:"message" description:"what is missing" required:"true"`

	root *Options
}

func (c *RequestsCreateCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	req, err := client.CreateRequest(c.root.ctx, studyhive.CreateStudyRequest{
		CourseID: c.Course,
		Type:     studyhive.RequestType(c.Type),
		Message:  c.Message,
	})
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, req)
	}
	fmt.Fprintf(c.root.stdout, "request %s created (%s)\n", req.ID, req.Status)
	return nil
}

type SearchCommand struct {
	Type string `short:"t" long:"type" description:"limit to one kind" choice:"courses" choice:"notes" choice:"past-questions" choice:"quizzes"`
	Args struct {
		Query string `positional-arg-name:"query" required:"true"`
	} `positional-args:"yes"`

	root *Options
}

func (c *SearchCommand) Execute([]string) error {
	client, err := c.root.api()
	if err != nil {
		return err
	}
	result, err := client.Search(c.root.ctx, studyhive.SearchOptions{
		Query: c.Args.Query,
		Type:  studyhive.SearchScope(c.Type),
	})
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, result)
	}

	var rows [][]string
	for _, course := range result.Courses {
		rows = append(rows, []string{"course", course.ID, course.Code + " " + course.Title})
	}
	for _, n := range result.Notes {
		rows = append(rows, []string{"note", n.ID, n.Title})
	}
	for _, pq := range result.PastQuestions {
		rows = append(rows, []string{"past question", pq.ID, fmt.Sprintf("%d %s %s", pq.Year, pq.Semester, pq.Type)})
	}
	for _, q := range result.Quizzes {
		rows = append(rows, []string{"quiz", q.ID, q.Title})
	}
	return writeTable(c.root.stdout, []string{"KIND", "ID", "TITLE"}, rows)
}

type UploadCommand struct {
	Folder string `short:"f" long:"folder" description:"storage folder" choice:"notes" choice:"past-questions" choice:"official-notes" choice:"quizzes" choice:"profiles" default:"notes"`
	Type   string `short:"t" long:"type" description:"content type, guessed from the file extension when empty"`
	Args   struct {
		File string `positional-arg-name:"file" required:"true"`
	} `positional-args:"yes"`

	root *Options
}

func (c *UploadCommand) Execute([]string) error {
	f, err := os.Open(c.Args.File)
	if err != nil {
		return err
	}
	defer f.Close()

	contentType := c.Type
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(c.Args.File))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	client, err := c.root.api()
	if err != nil {
		return err
	}
	uploaded, err := client.UploadFile(c.root.ctx, filepath.Base(c.Args.File), contentType, studyhive.UploadFolder(c.Folder), f)
	if err != nil {
		return err
	}
	if c.root.JSON {
		return writeJSON(c.root.stdout, uploaded)
	}
	return writeTable(c.root.stdout, nil, [][]string{
		{"file key", uploaded.FileKey},
		{"download url", uploaded.DownloadURL},
	})
}
