package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/pkg/textx"
)

type jsonFormat struct {
	Type   string `json:"type"`
	Schema any    `json:"schema"`
}

type generationInstruction struct {
	Instruction string     `json:"instruction"`
	Mix         string     `json:"mix"`
	Format      jsonFormat `json:"format"`
}

type summaryInstruction struct {
	Instruction string          `json:"instruction"`
	Role        string          `json:"role"`
	Seniority   string          `json:"seniority"`
	SkillsHint  []string        `json:"skillsHint"`
	Answers     []domain.Answer `json:"answers"`
	Format      jsonFormat      `json:"format"`
}

type suggestInstruction struct {
	Instruction string     `json:"instruction"`
	Role        string     `json:"role"`
	Context     string     `json:"context"`
	Difficulty  string     `json:"difficulty"`
	Count       int        `json:"count"`
	Format      jsonFormat `json:"format"`
}

// generationPrompt renders the system and user messages for question
// generation.
func generationPrompt(req domain.GenerationRequest) (string, string) {
	system := strings.Join([]string{
		"You are an interview designer creating practical, non-trivia questions.",
		`Return ONLY strict JSON with key "items" as an array of {question, difficulty, rationale}.`,
		"Difficulty must be " + quotedList(difficultyStrings()) + ".",
		"Language: " + string(req.Options.Language),
	}, " ")

	task := fmt.Sprintf("Generate %d questions for a %s %s", req.Count, req.Seniority, req.Role)
	if len(req.TechStack) > 0 {
		task += " focusing on " + strings.Join(req.TechStack, ", ")
	}
	user := mustJSON(generationInstruction{
		Instruction: task + ".",
		Mix:         "Include a balanced mix of difficulties and avoid duplicates. Focus on practical scenarios.",
		Format: jsonFormat{
			Type: "json",
			Schema: map[string]any{
				"items": []map[string]string{{
					"question":   "string",
					"difficulty": strings.Join(quoteEach(difficultyStrings()), "|"),
					"rationale":  "string",
				}},
			},
		},
	})
	return system, user
}

// summaryPrompt renders the system and user messages for applicant
// summarization. Each transcript is truncated to MaxCharsPerAnswer.
func summaryPrompt(req domain.SummaryRequest) (string, string) {
	system := strings.Join([]string{
		"You are a neutral, concise technical recruiter.",
		"Summarize the applicant for the specified role and seniority.",
		"Be evidence-based; avoid speculation or personal bias.",
		"Return ONLY strict JSON with keys: summary, strengths, concerns, overall_signal.",
		"overall_signal must be one of: " + strings.Join(quoteEach(signalStrings()), ", ") + ".",
		"Language: " + string(req.Options.Language),
	}, " ")

	skills := req.SkillsHint
	if skills == nil {
		skills = []string{}
	}
	user := mustJSON(summaryInstruction{
		Instruction: "Produce a 5-7 sentence summary, three strengths, three concerns, and an overall_signal.",
		Role:        req.Role,
		Seniority:   req.Seniority,
		SkillsHint:  skills,
		Answers:     truncateAnswers(req.Answers, req.Options.MaxCharsPerAnswer),
		Format: jsonFormat{
			Type: "json",
			Schema: map[string]string{
				"summary":        "string",
				"strengths":      "string[3]",
				"concerns":       "string[3]",
				"overall_signal": strings.Join(quoteEach(signalStrings()), " | "),
			},
		},
	})
	return system, user
}

// suggestPrompt renders the messages for free-form question suggestions.
func suggestPrompt(req domain.SuggestRequest) (string, string) {
	system := strings.Join([]string{
		"You are helping a recruiter draft concise technical interview questions.",
		"Return ONLY a strict JSON array of strings, one clear single-sentence question per entry.",
	}, " ")
	user := mustJSON(suggestInstruction{
		Instruction: fmt.Sprintf("Generate %d clear, single-sentence questions.", req.Count),
		Role:        req.JobRole,
		Context:     req.Description,
		Difficulty:  string(req.Difficulty),
		Count:       req.Count,
		Format:      jsonFormat{Type: "json", Schema: []string{"string"}},
	})
	return system, user
}

func truncateAnswers(in []domain.Answer, max int) []domain.Answer {
	out := make([]domain.Answer, len(in))
	for i, a := range in {
		out[i] = domain.Answer{Question: a.Question, Transcript: textx.TruncateMiddle(a.Transcript, max)}
	}
	return out
}

// mustJSON encodes v without HTML escaping. The inputs are plain structs,
// maps and strings, so encoding cannot fail.
func mustJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(fmt.Sprintf("usecase: encode prompt: %v", err))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func difficultyStrings() []string {
	out := make([]string, len(domain.Difficulties))
	for i, d := range domain.Difficulties {
		out[i] = string(d)
	}
	return out
}

func signalStrings() []string {
	out := make([]string, len(domain.Signals))
	for i, s := range domain.Signals {
		out[i] = string(s)
	}
	return out
}

func quoteEach(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = `"` + s + `"`
	}
	return out
}

// quotedList renders `"A", "B", or "C"`.
func quotedList(in []string) string {
	q := quoteEach(in)
	switch len(q) {
	case 0:
		return ""
	case 1:
		return q[0]
	}
	return strings.Join(q[:len(q)-1], ", ") + ", or " + q[len(q)-1]
}
