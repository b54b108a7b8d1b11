package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	calls   []string // system prompts, in call order
	users   []string
	failOn  int // 1-based call index to fail at, 0 = never
	nextNum int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls = append(f.calls, system)
	f.users = append(f.users, user)
	if f.failOn > 0 && len(f.calls) == f.failOn {
		return "", errors.New("api caiu")
	}
	f.nextNum++
	return fmt.Sprintf("Principais Pontos:\n- resumo %d", f.nextNum), nil
}

func TestSummarizeSingleChunk(t *testing.T) {
	fake := &fakeCompleter{}
	s := NewService(fake, 2000)

	out, err := s.Summarize(context.Background(), "uma transcrição curta da sessão")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Principais Pontos:"))

	// one map call plus one reduce call
	require.Len(t, fake.calls, 2)
	assert.Equal(t, mapPrompt, fake.calls[0])
	assert.Equal(t, reducePrompt, fake.calls[1])
}

func TestSummarizeMapReduce(t *testing.T) {
	fake := &fakeCompleter{}
	s := NewService(fake, 10)

	transcript := strings.Repeat("palavra ", 35) // 35 words, chunk size 10 -> 4 chunks
	_, err := s.Summarize(context.Background(), transcript)
	require.NoError(t, err)

	require.Len(t, fake.calls, 5)
	for _, sys := range fake.calls[:4] {
		assert.Equal(t, mapPrompt, sys)
	}
	assert.Equal(t, reducePrompt, fake.calls[4])

	// the reduce input is the partial summaries joined by blank lines
	reduceInput := fake.users[4]
	assert.Equal(t, 4, len(strings.Split(reduceInput, "\n\n")))
	assert.Contains(t, reduceInput, "resumo 1")
	assert.Contains(t, reduceInput, "resumo 4")
}

func TestSummarizeMapFailure(t *testing.T) {
	fake := &fakeCompleter{failOn: 2}
	s := NewService(fake, 10)

	_, err := s.Summarize(context.Background(), strings.Repeat("palavra ", 25))
	require.Error(t, err)

	var serr *SummarizationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "map", serr.Phase)
}

func TestSummarizeReduceFailure(t *testing.T) {
	fake := &fakeCompleter{failOn: 2}
	s := NewService(fake, 2000)

	_, err := s.Summarize(context.Background(), "transcrição curta")
	require.Error(t, err)

	var serr *SummarizationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "reduce", serr.Phase)
}

func TestSummarizeEmptyTranscript(t *testing.T) {
	fake := &fakeCompleter{}
	s := NewService(fake, 2000)

	_, err := s.Summarize(context.Background(), "   ")
	require.Error(t, err)

	var serr *SummarizationError
	assert.ErrorAs(t, err, &serr)
	assert.Empty(t, fake.calls)
}
