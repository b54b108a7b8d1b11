// Package summarizer turns a transcript into legislative-session minutes via
// two-phase map/reduce text generation.
package summarizer

import (
	"context"
	"fmt"
	"strings"
)

const defaultChunkWords = 2000

const mapPrompt = `Você é um assistente especializado em resumir transcrições de reuniões de câmaras de vereadores. ` +
	`Gere um resumo claro e objetivo, destacando apenas:
- Principais pontos discutidos
- Decisões tomadas
- Ações definidas

Use bullet points, evite repetições e conversas paralelas. ` +
	`Comece o resumo sempre com o título: Principais Pontos:`

const reducePrompt = `Combine todos os resumos parciais em um único resumo final claro, ` +
	`organizado em bullet points e começando obrigatoriamente com 'Principais Pontos:'`

// SummarizationError reports a failed generation call. No retry is attempted:
// a transient failure in either phase fails the whole summarization.
type SummarizationError struct {
	Phase string
	Err   error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("falha na geração do resumo (%s): %v", e.Phase, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// Service summarizes transcripts of arbitrary length. The transcript is cut
// into word-bounded chunks so each generation request stays inside the
// model's context window; a second pass merges the partial summaries.
type Service struct {
	completer  Completer
	chunkWords int
}

func NewService(completer Completer, chunkWords int) *Service {
	if chunkWords <= 0 {
		chunkWords = defaultChunkWords
	}
	return &Service{completer: completer, chunkWords: chunkWords}
}

// Summarize produces the final minutes document for a transcript.
func (s *Service) Summarize(ctx context.Context, transcript string) (string, error) {
	chunks := ChunkText(transcript, s.chunkWords)
	if len(chunks) == 0 {
		return "", &SummarizationError{Phase: "map", Err: fmt.Errorf("transcrição vazia")}
	}

	partials := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		partial, err := s.completer.Complete(ctx, mapPrompt, chunk)
		if err != nil {
			return "", &SummarizationError{Phase: "map", Err: err}
		}
		partials = append(partials, partial)
	}

	// One chunk still goes through the reduce pass so every summary obeys
	// the same final-document contract.
	final, err := s.completer.Complete(ctx, reducePrompt, strings.Join(partials, "\n\n"))
	if err != nil {
		return "", &SummarizationError{Phase: "reduce", Err: err}
	}
	return final, nil
}
