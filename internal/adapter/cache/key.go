// Package cache stores validated applicant summaries keyed by request.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/readysethire/genai-server/internal/domain"
	"github.com/readysethire/genai-server/pkg/textx"
)

type keyAnswer struct {
	Question   string `json:"question"`
	Transcript string `json:"transcript"`
}

type keyMaterial struct {
	Role       string      `json:"role"`
	Seniority  string      `json:"seniority"`
	SkillsHint []string    `json:"skillsHint"`
	Answers    []keyAnswer `json:"answers"`
}

// Key derives the cache key of a normalized summary request. Transcripts are
// truncated first, so requests that differ only in text the model never sees
// share an entry.
func Key(req domain.SummaryRequest) string {
	m := keyMaterial{
		Role:       req.Role,
		Seniority:  req.Seniority,
		SkillsHint: req.SkillsHint,
		Answers:    make([]keyAnswer, 0, len(req.Answers)),
	}
	if m.SkillsHint == nil {
		m.SkillsHint = []string{}
	}
	for _, a := range req.Answers {
		m.Answers = append(m.Answers, keyAnswer{
			Question:   a.Question,
			Transcript: textx.TruncateMiddle(a.Transcript, req.Options.MaxCharsPerAnswer),
		})
	}
	// struct field order makes the encoding stable
	b, _ := json.Marshal(m)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func cloneSummary(s domain.SummaryResponse) domain.SummaryResponse {
	s.Strengths = cloneStrings(s.Strengths)
	s.Concerns = cloneStrings(s.Concerns)
	return s
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
