// Package transcriber converts ordered audio segments into text via the
// Whisper API.
package transcriber

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"resumidorDeAtas/internal/segmenter"
)

// TranscriptionError reports a failed speech-to-text call for one segment.
// A single failed segment fails the whole transcription; there is no
// partial-result fallback.
type TranscriptionError struct {
	Segment int
	Err     error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("falha na transcrição do segmento %d: %v", e.Segment, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// speechClient is the slice of the OpenAI client the transcriber needs.
type speechClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Service transcribes segments with bounded parallelism. Results are
// reassembled strictly by segment index before concatenation: segment order
// encodes chronology, so the output must not depend on which API call
// finishes first.
type Service struct {
	client        speechClient
	model         string
	language      string
	maxConcurrent int
}

func NewService(client *openai.Client, model, language string, maxConcurrent int) *Service {
	return newService(client, model, language, maxConcurrent)
}

func newService(client speechClient, model, language string, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		client:        client,
		model:         model,
		language:      language,
		maxConcurrent: maxConcurrent,
	}
}

// Transcribe returns the segment transcripts joined with newlines, in
// segment order.
func (s *Service) Transcribe(ctx context.Context, segments []segmenter.Segment) (string, error) {
	texts := make([]string, len(segments))
	errs := make([]error, len(segments))

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, seg := range segments {
		wg.Add(1)
		go func(i int, seg segmenter.Segment) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}

			resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
				Model:    s.model,
				FilePath: seg.Path,
				Language: s.language,
			})
			if err != nil {
				errs[i] = err
				return
			}
			texts[i] = resp.Text
		}(i, seg)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return "", &TranscriptionError{Segment: segments[i].Index, Err: err}
		}
	}

	return strings.Join(texts, "\n"), nil
}
