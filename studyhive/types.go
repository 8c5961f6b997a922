package studyhive

import (
	"strconv"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleRep     Role = "rep"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	IsVerified      bool      `json:"isVerified"`
	ProfilePicture  string    `json:"profilePicture,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	ReputationScore int       `json:"reputationScore"`
	NotesCreated    int       `json:"notesCreated"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CanModerate reports whether the user may fulfill or reject requests.
func (u *User) CanModerate() bool {
	return u != nil && (u.Role == RoleRep || u.Role == RoleAdmin)
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is the paginated list shape used by quizzes and requests.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Level struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Semester string

const (
	SemesterFirst  Semester = "First"
	SemesterSecond Semester = "Second"
	SemesterBoth   Semester = "Both"
)

type ResourceCount struct {
	PastQuestions int `json:"pastQuestions"`
	Notes         int `json:"notes"`
	Quizzes       int `json:"quizzes"`
}

type Course struct {
	ID              string        `json:"_id"`
	Title           string        `json:"title"`
	Code            string        `json:"code"`
	Department      string        `json:"department,omitempty"`
	CreditUnits     int           `json:"creditUnits"`
	SemesterOffered Semester      `json:"semesterOffered,omitempty"`
	Levels          []string      `json:"levels,omitempty"`
	Description     string        `json:"description,omitempty"`
	ResourceCount   ResourceCount `json:"resourceCount"`
	CreatedBy       string        `json:"createdBy,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

type CommunityNote struct {
	ID           string    `json:"_id"`
	AuthorID     string    `json:"authorId"`
	CourseID     string    `json:"courseId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Upvotes      int       `json:"upvotes"`
	Downvotes    int       `json:"downvotes"`
	Saves        int       `json:"saves"`
	CommentCount int       `json:"commentCount"`
	IsPinned     bool      `json:"isPinned"`
	IsArchived   bool      `json:"isArchived,omitempty"`
	Score        float64   `json:"score"`
	Tags         []string  `json:"tags,omitempty"`
	CoverImage   string    `json:"coverImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type NotesPage struct {
	Notes      []CommunityNote `json:"notes"`
	Pagination Pagination      `json:"pagination"`
}

type QuizQuestion struct {
	ID                 string   `json:"_id,omitempty"`
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectOptionIndex *int     `json:"correctOptionIndex,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID            string         `json:"_id"`
	CourseID      string         `json:"courseId"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Questions     []QuizQuestion `json:"questions,omitempty"`
	TimeLimitMins int            `json:"timeLimitMins"`
	AttemptCount  int            `json:"attemptCount"`
	AvgScore      float64        `json:"avgScore"`
	CreatedBy     string         `json:"createdBy,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type QuizAttempt struct {
	// Answers holds the chosen option index per question, in order.
	Answers []int `json:"answers"`
	// TimeTaken is in seconds.
	TimeTaken int `json:"timeTaken"`
}

type QuizAttemptResult struct {
	ID             string    `json:"_id,omitempty"`
	QuizID         string    `json:"quizId"`
	Score          float64   `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	TimeTaken      int       `json:"timeTaken"`
	CompletedAt    time.Time `json:"completedAt"`
}

type RequestType string

const (
	RequestPastQuestions RequestType = "pq"
	RequestNotes         RequestType = "notes"
	RequestQuiz          RequestType = "quiz"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestPastQuestions, RequestNotes, RequestQuiz:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestResolved  RequestStatus = "resolved"
	RequestDismissed RequestStatus = "dismissed"
)

// StudyRequest asks course reps for missing material.
type StudyRequest struct {
	ID         string        `json:"_id"`
	UserID     string        `json:"userId"`
	UserName   string        `json:"userName,omitempty"`
	CourseID   string        `json:"courseId"`
	CourseName string        `json:"courseName,omitempty"`
	Type       RequestType   `json:"type"`
	Message    string        `json:"message"`
	Status     RequestStatus `json:"status"`
	ResolvedBy string        `json:"resolvedBy,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

type LeaderboardEntry struct {
	Rank            int     `json:"rank"`
	UserID          string  `json:"userId"`
	UserName        string  `json:"userName"`
	UserAvatar      string  `json:"userAvatar,omitempty"`
	ReputationScore int     `json:"reputationScore"`
	NoteCount       int     `json:"noteCount"`
	QuizAvgScore    float64 `json:"quizAvgScore"`
}

// CommentParent is the kind of resource a comment hangs off.
type CommentParent string

const (
	CommentOnNote         CommentParent = "CommunityNote"
	CommentOnQuiz         CommentParent = "Quiz"
	CommentOnPastQuestion CommentParent = "PastQuestion"
)

func (p CommentParent) Valid() bool {
	switch p {
	case CommentOnNote, CommentOnQuiz, CommentOnPastQuestion:
		return true
	}
	return false
}

type Comment struct {
	ID         string        `json:"_id"`
	ParentID   string        `json:"parentId"`
	ParentType CommentParent `json:"parentType"`
	UserID     string        `json:"userId"`
	UserName   string        `json:"userName"`
	UserAvatar string        `json:"userAvatar,omitempty"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt,omitzero"`
}

type PastQuestionType string

const (
	PastQuestionExam         PastQuestionType = "exam"
	PastQuestionMidSemester  PastQuestionType = "mid-semester"
	PastQuestionQuiz         PastQuestionType = "quiz"
	PastQuestionAssignment   PastQuestionType = "assignment"
	PastQuestionClassWork    PastQuestionType = "class-work"
	PastQuestionGroupProject PastQuestionType = "group-project"
	PastQuestionProject      PastQuestionType = "project"
	PastQuestionTutorial     PastQuestionType = "tutorial"
)

func (t PastQuestionType) Valid() bool {
	switch t {
	case PastQuestionExam, PastQuestionMidSemester, PastQuestionQuiz, PastQuestionAssignment,
		PastQuestionClassWork, PastQuestionGroupProject, PastQuestionProject, PastQuestionTutorial:
		return true
	}
	return false
}

// PastQuestion is an uploaded exam or coursework paper. The file itself is
// fetched through a signed download url.
type PastQuestion struct {
	ID            string           `json:"_id"`
	CourseID      string           `json:"courseId"`
	Year          int              `json:"year"`
	Semester      Semester         `json:"semester"`
	Type          PastQuestionType `json:"type"`
	FileURL       string           `json:"fileURL,omitempty"`
	FileName      string           `json:"fileName"`
	FileSize      int64            `json:"fileSize"`
	FileType      string           `json:"fileType,omitempty"`
	UploadedBy    string           `json:"uploadedBy,omitempty"`
	DownloadCount int              `json:"downloadCount"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type UserStats struct {
	NotesCreated    int `json:"notesCreated"`
	NotesSaved      int `json:"notesSaved"`
	QuizzesTaken    int `json:"quizzesTaken"`
	ReputationScore int `json:"reputationScore"`
	Rank            int `json:"rank,omitempty"`
}

type SavedNote struct {
	ID      string    `json:"_id"`
	NoteID  string    `json:"noteId"`
	UserID  string    `json:"userId"`
	SavedAt time.Time `json:"savedAt"`
}

// ListOptions are the paging parameters shared by list endpoints. Zero
// values are omitted from the query.
type ListOptions struct {
	Page  int
	Limit int
}

func (o ListOptions) apply(query map[string]string) map[string]string {
	if query == nil {
		query = make(map[string]string)
	}
	setInt(query, "page", o.Page)
	setInt(query, "limit", o.Limit)
	return query
}

func setInt(query map[string]string, key string, value int) {
	if value > 0 {
		query[key] = strconv.Itoa(value)
	}
}

func setString(query map[string]string, key, value string) {
	if value != "" {
		query[key] = value
	}
}
