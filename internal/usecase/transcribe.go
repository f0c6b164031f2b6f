package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/readysethire/genai-server/internal/adapter/observability"
	"github.com/readysethire/genai-server/internal/domain"
)

// StubTranscript is returned while real speech-to-text is disabled.
const StubTranscript = "Sample transcript (stub) — replace with real STT later."

// TranscribeService turns an uploaded interview recording into text.
type TranscribeService struct {
	transcriber domain.Transcriber
	stub        bool
}

// NewTranscribeService wires the service. With stub set every call returns
// StubTranscript. A nil transcriber means no credential is configured.
func NewTranscribeService(transcriber domain.Transcriber, stub bool) *TranscribeService {
	return &TranscribeService{transcriber: transcriber, stub: stub}
}

// Transcribe sniffs the upload, rejects non-audio content and forwards it
// under a random file name.
func (s *TranscribeService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if s.stub {
		return StubTranscript, nil
	}
	if s.transcriber == nil {
		return "", &domain.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	if len(audio) == 0 {
		return "", domain.NewValidationError("audio", "required", "audio file is required")
	}
	mt := mimetype.Detect(audio)
	if !allowedAudio(mt) {
		return "", domain.NewValidationError("audio", "mime", "unsupported media type "+mt.String())
	}
	name := uuid.NewString() + mt.Extension()
	observability.LoggerFromContext(ctx).Info("transcribing upload",
		slog.String("file", name),
		slog.String("mime", mt.String()),
		slog.Int("bytes", len(audio)))

	text, err := s.transcriber.Transcribe(ctx, name, mt.String(), audio)
	if err != nil {
		return "", fmt.Errorf("op=usecase.Transcribe: %w", err)
	}
	return text, nil
}

func allowedAudio(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		switch s := m.String(); {
		case strings.HasPrefix(s, "audio/"):
			return true
		case s == "video/webm", s == "video/mp4", s == "video/ogg":
			return true
		}
	}
	return false
}
