package domain

import "context"

// Records held by the external PostgREST-style data store. Field names follow
// the store's column names.

type InterviewStatus string

const (
	InterviewPublished InterviewStatus = "Published"
	InterviewDraft     InterviewStatus = "Draft"
	InterviewArchived  InterviewStatus = "Archived"
)

type Interview struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	JobRole     string          `json:"job_role"`
	Description *string         `json:"description,omitempty"`
	Status      InterviewStatus `json:"status"`
	Username    string          `json:"username"`
}

type Question struct {
	ID          int64      `json:"id"`
	InterviewID int64      `json:"interview_id"`
	Question    string     `json:"question"`
	Difficulty  Difficulty `json:"difficulty"`
	Username    string     `json:"username"`
}

// QuestionCreate adds a question to an interview's question bank.
type QuestionCreate struct {
	InterviewID int64      `json:"interview_id"`
	Question    string     `json:"question"`
	Difficulty  Difficulty `json:"difficulty"`
	Username    string     `json:"username"`
}

type ApplicantInterviewStatus string

const (
	ApplicantNotStarted ApplicantInterviewStatus = "Not Started"
	ApplicantCompleted  ApplicantInterviewStatus = "Completed"
)

type Applicant struct {
	ID              int64                    `json:"id"`
	InterviewID     int64                    `json:"interview_id"`
	Title           string                   `json:"title"`
	Firstname       string                   `json:"firstname"`
	Surname         string                   `json:"surname"`
	PhoneNumber     *string                  `json:"phone_number,omitempty"`
	EmailAddress    string                   `json:"email_address"`
	InterviewStatus ApplicantInterviewStatus `json:"interview_status"`
	Username        string                   `json:"username"`
}

// ApplicantUpdate patches an applicant. Only the interview status changes
// once an applicant has been invited.
type ApplicantUpdate struct {
	InterviewStatus *ApplicantInterviewStatus `json:"interview_status,omitempty"`
}

// ApplicantAnswer is a stored answer; Answer is nil when the applicant skipped.
type ApplicantAnswer struct {
	ID          int64   `json:"id"`
	InterviewID int64   `json:"interview_id"`
	QuestionID  int64   `json:"question_id"`
	ApplicantID int64   `json:"applicant_id"`
	Answer      *string `json:"answer"`
	Username    string  `json:"username"`
}

type ApplicantAnswerCreate struct {
	InterviewID int64   `json:"interview_id"`
	QuestionID  int64   `json:"question_id"`
	ApplicantID int64   `json:"applicant_id"`
	Answer      *string `json:"answer"`
	Username    string  `json:"username"`
}

// RecruitingStore (port) is the read side of the data store used by the
// applicant summaries and answer recording.
type RecruitingStore interface {
	GetApplicant(ctx context.Context, id int64) (Applicant, error)
	GetInterview(ctx context.Context, id int64) (Interview, error)
	ListQuestions(ctx context.Context, interviewID int64) ([]Question, error)
	ListApplicants(ctx context.Context, interviewID int64) ([]Applicant, error)
	ListAnswersByApplicant(ctx context.Context, applicantID int64) ([]ApplicantAnswer, error)
}

// QuestionWriter (port) saves questions into an interview's question bank.
type QuestionWriter interface {
	CreateQuestion(ctx context.Context, in QuestionCreate) (Question, error)
}

// AnswerWriter (port) records applicant answers and interview progress.
type AnswerWriter interface {
	CreateAnswer(ctx context.Context, in ApplicantAnswerCreate) (ApplicantAnswer, error)
	UpdateApplicant(ctx context.Context, id int64, in ApplicantUpdate) (Applicant, error)
}
