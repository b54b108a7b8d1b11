// Package segmenter splits an audio file into slices small enough for the
// transcription API's upload limit.
package segmenter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"resumidorDeAtas/pkg/executor"
)

// SegmentationError reports a decode or split failure.
type SegmentationError struct {
	Path string
	Err  error
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("falha na segmentação de %s: %v", e.Path, e.Err)
}

func (e *SegmentationError) Unwrap() error { return e.Err }

// Segment is one time-bounded slice of the original audio, in input order.
type Segment struct {
	Index           int
	Path            string
	StartSeconds    float64
	DurationSeconds float64
}

// Service cuts audio on fixed time boundaries. Boundaries are not
// content-aware; a segment may end mid-word.
type Service struct {
	executor executor.Executor
}

func NewService(exec executor.Executor) *Service {
	return &Service{executor: exec}
}

// Split divides audioPath into ordered segments of at most maxSeconds each,
// written next to the input. Segments cover the input with no gaps or overlap.
// Inputs already within the limit come back as a single segment untouched.
func (s *Service) Split(ctx context.Context, audioPath string, maxSeconds int) ([]Segment, error) {
	duration, err := s.probeDuration(ctx, audioPath)
	if err != nil {
		return nil, &SegmentationError{Path: audioPath, Err: err}
	}

	if duration <= float64(maxSeconds) {
		return []Segment{{Index: 0, Path: audioPath, StartSeconds: 0, DurationSeconds: duration}}, nil
	}

	ext := filepath.Ext(audioPath)
	pattern := strings.TrimSuffix(audioPath, ext) + "_part%03d" + ext

	// -c copy avoids a re-encode; cuts land on the nearest packet boundary.
	_, err = s.executor.Execute(ctx, "ffmpeg",
		"-y",
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(maxSeconds),
		"-c", "copy",
		pattern,
	)
	if err != nil {
		return nil, &SegmentationError{Path: audioPath, Err: err}
	}

	paths, err := s.collectParts(audioPath, ext)
	if err != nil {
		return nil, &SegmentationError{Path: audioPath, Err: err}
	}

	segments := make([]Segment, 0, len(paths))
	start := 0.0
	for i, p := range paths {
		segDur := float64(maxSeconds)
		if remaining := duration - start; remaining < segDur {
			segDur = remaining
		}
		segments = append(segments, Segment{
			Index:           i,
			Path:            p,
			StartSeconds:    start,
			DurationSeconds: segDur,
		})
		start += segDur
	}
	return segments, nil
}

func (s *Service) probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := s.executor.Execute(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}
	val := strings.TrimSpace(out)
	if val == "" {
		return 0, errors.New("empty duration response")
	}
	dur, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration from ffprobe: %w", err)
	}
	return dur, nil
}

func (s *Service) collectParts(audioPath, ext string) ([]string, error) {
	prefix := strings.TrimSuffix(filepath.Base(audioPath), ext) + "_part"
	dir := filepath.Dir(audioPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) && filepath.Ext(e.Name()) == ext {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("ffmpeg produced no segments")
	}

	sort.Strings(paths)
	return paths, nil
}
