package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	httpserver "github.com/readysethire/genai-server/internal/adapter/httpserver"
	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/app"
	"github.com/readysethire/genai-server/internal/config"
	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/internal/usecase"
)

// loadServices reads .env and the environment, logs to stderr and wires the
// usecase layer.
func loadServices(cmd *cobra.Command) (*app.Services, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(observability.NewLogger(cmd.ErrOrStderr(), cfg))
	return app.BuildServices(cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGenerateCmd() *cobra.Command {
	var (
		role, seniority, language string
		username                  string
		tech                      []string
		count                     int
		interviewID               int64
		temperature               float64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate interview questions for a role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := loadServices(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svcs.Close() }()

			in := usecase.GenerateQuestionsInput{Role: &role, Seniority: &seniority, TechStack: tech}
			if cmd.Flags().Changed("count") {
				in.Count = &count
			}
			opts := &usecase.GenerationOptionsInput{}
			if cmd.Flags().Changed("language") {
				opts.Language = &language
			}
			if cmd.Flags().Changed("temperature") {
				opts.Temperature = &temperature
			}
			in.Options = opts

			out, err := svcs.GenAI.GenerateQuestions(cmd.Context(), in)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interview-id") {
				return printJSON(cmd.OutOrStdout(), out)
			}
			saved, err := svcs.Questions.Save(cmd.Context(), interviewID, username, out.Items)
			if perr := printJSON(cmd.OutOrStdout(), savedQuestions{Items: out.Items, Saved: saved}); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "job role, e.g. \"Backend Engineer\"")
	cmd.Flags().StringVar(&seniority, "seniority", "", "seniority, e.g. Mid")
	cmd.Flags().StringSliceVar(&tech, "tech", nil, "comma-separated tech stack")
	cmd.Flags().IntVar(&count, "count", usecase.DefaultQuestionCount, "number of questions (1-10)")
	cmd.Flags().StringVar(&language, "language", "en", "output language (en|es)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature override (0-2)")
	cmd.Flags().Int64Var(&interviewID, "interview-id", 0, "save the generated questions to this interview")
	cmd.Flags().StringVar(&username, "username", "", "owner recorded on saved questions")
	return cmd
}

// savedQuestions is the generate output when questions are also stored.
type savedQuestions struct {
	Items []domain.GeneratedQuestion `json:"items"`
	Saved []domain.Question          `json:"saved"`
}

func newSummarizeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize applicant answers from a YAML or JSON request file",
		Example: `  genaictl summarize -f request.yaml
  cat request.yaml | genaictl summarize -f -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := readSummarizeInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			svcs, err := loadServices(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svcs.Close() }()

			out, err := svcs.GenAI.SummarizeApplicant(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (\"-\" for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readSummarizeInput decodes a summarize request. YAML is a superset of
// JSON, so both formats are accepted.
func readSummarizeInput(stdin io.Reader, path string) (usecase.SummarizeInput, error) {
	var r io.Reader
	if path == "-" {
		r = bufio.NewReader(stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return usecase.SummarizeInput{}, fmt.Errorf("open request file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var in usecase.SummarizeInput
	if err := yaml.NewDecoder(r).Decode(&in); err != nil {
		return usecase.SummarizeInput{}, fmt.Errorf("decode request file: %w", err)
	}
	return in, nil
}

func newSuggestCmd() *cobra.Command {
	var (
		jobRole, description, difficulty string
		count                            int
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest plain interview questions for a job role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := loadServices(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svcs.Close() }()

			in := usecase.SuggestInput{JobRole: &jobRole, Description: &description, Count: &count, Difficulty: &difficulty}
			out, err := svcs.GenAI.SuggestQuestions(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&jobRole, "job-role", "", "job role")
	cmd.Flags().StringVar(&description, "description", "", "extra context for the role")
	cmd.Flags().IntVar(&count, "count", usecase.DefaultSuggestCount, "number of questions (1-10)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "Intermediate", "Easy|Intermediate|Advanced")
	return cmd
}

func newApplicantCmd() *cobra.Command {
	var (
		id, interviewID int64
		seniority       string
		skills          []string
	)
	cmd := &cobra.Command{
		Use:   "applicant",
		Short: "Summarize an applicant, or every applicant of an interview, from the recruiting data store",
		Example: `  genaictl applicant --id 7 --seniority Mid
  genaictl applicant --interview-id 3 --skills Go,Kubernetes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := loadServices(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svcs.Close() }()

			in := usecase.ApplicantSummaryInput{Seniority: &seniority, SkillsHint: skills}
			if cmd.Flags().Changed("interview-id") {
				all, err := svcs.Applicants.SummarizeInterview(cmd.Context(), interviewID, in)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), all)
			}
			out, err := svcs.Applicants.Summarize(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "applicant id")
	cmd.Flags().Int64Var(&interviewID, "interview-id", 0, "summarize every applicant of this interview")
	cmd.Flags().StringVar(&seniority, "seniority", "", "seniority of the role")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "comma-separated skills hint")
	cmd.MarkFlagsMutuallyExclusive("id", "interview-id")
	cmd.MarkFlagsOneRequired("id", "interview-id")
	return cmd
}

func newAnswerCmd() *cobra.Command {
	var (
		applicantID, questionID int64
		text, audio             string
	)
	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Record an applicant's answer to an interview question",
		Long: `Record an applicant's answer. Without --text or --audio the answer is
stored as skipped. The applicant is marked Completed once every question of
the interview has an answer.`,
		Example: `  genaictl answer --applicant 7 --question 10 --text "We rolled back."
  genaictl answer --applicant 7 --question 11 --audio answer.webm`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var recording []byte
			if audio != "" {
				b, err := os.ReadFile(audio)
				if err != nil {
					return fmt.Errorf("read audio file: %w", err)
				}
				recording = b
			}
			svcs, err := loadServices(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = svcs.Close() }()

			var out usecase.RecordedAnswer
			switch {
			case audio != "":
				out, err = svcs.Answers.RecordAudio(cmd.Context(), applicantID, questionID, recording)
			case cmd.Flags().Changed("text"):
				out, err = svcs.Answers.Record(cmd.Context(), applicantID, questionID, &text)
			default:
				out, err = svcs.Answers.Record(cmd.Context(), applicantID, questionID, nil)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Int64Var(&applicantID, "applicant", 0, "applicant id")
	cmd.Flags().Int64Var(&questionID, "question", 0, "question id")
	cmd.Flags().StringVar(&text, "text", "", "answer text")
	cmd.Flags().StringVar(&audio, "audio", "", "audio file to transcribe as the answer")
	_ = cmd.MarkFlagRequired("applicant")
	_ = cmd.MarkFlagRequired("question")
	cmd.MarkFlagsMutuallyExclusive("text", "audio")
	return cmd
}

func newHashTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Print an AUTH_TOKEN_HASH value for a bearer token (reads stdin when no argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return fmt.Errorf("token must not be empty")
			}
			hash, err := httpserver.HashToken(token, httpserver.DefaultArgon2Params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
