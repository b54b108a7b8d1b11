// Package downloader resolves a source URL into a title and a local audio file.
package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumidorDeAtas/pkg/executor"
)

// AcquisitionError reports a failure to obtain audio from the source.
type AcquisitionError struct {
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("falha na aquisição do áudio de %s: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// Service downloads audio with yt-dlp, or extracts it with ffmpeg when the
// source is a local media file dropped into the watch folder.
type Service struct {
	executor        executor.Executor
	maxPayloadBytes int64
}

func NewService(exec executor.Executor, maxPayloadBytes int64) *Service {
	return &Service{executor: exec, maxPayloadBytes: maxPayloadBytes}
}

// Download resolves the source title and writes its audio into workDir.
// No validation of URL reachability happens before this point.
func (s *Service) Download(ctx context.Context, url, workDir string) (string, string, error) {
	if info, err := os.Stat(url); err == nil && !info.IsDir() {
		return s.extractLocal(ctx, url, workDir)
	}

	title, err := s.executor.Execute(ctx, "yt-dlp",
		"--no-playlist",
		"--print", "title",
		"--skip-download",
		url,
	)
	if err != nil {
		return "", "", &AcquisitionError{URL: url, Err: fmt.Errorf("vídeo indisponível ou privado: %w", err)}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = url
	}

	audioPath := filepath.Join(workDir, "audio.m4a")
	_, err = s.executor.Execute(ctx, "yt-dlp",
		"--no-playlist",
		"-f", "bestaudio",
		"-x",
		"--audio-format", "m4a",
		"-o", audioPath,
		url,
	)
	if err != nil {
		return "", "", &AcquisitionError{URL: url, Err: fmt.Errorf("nenhum stream de áudio disponível: %w", err)}
	}

	if err := s.checkSize(url, audioPath); err != nil {
		return "", "", err
	}
	return title, audioPath, nil
}

// extractLocal pulls the audio track out of a local media file.
// -vn drops video; 16kHz mono m4a keeps the payload small for transcription.
func (s *Service) extractLocal(ctx context.Context, path, workDir string) (string, string, error) {
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	audioPath := filepath.Join(workDir, "audio.m4a")

	_, err := s.executor.Execute(ctx, "ffmpeg",
		"-y",
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-codec:a", "aac",
		audioPath,
	)
	if err != nil {
		return "", "", &AcquisitionError{URL: path, Err: fmt.Errorf("extração de áudio falhou: %w", err)}
	}

	if err := s.checkSize(path, audioPath); err != nil {
		return "", "", err
	}
	return title, audioPath, nil
}

func (s *Service) checkSize(url, audioPath string) error {
	info, err := os.Stat(audioPath)
	if err != nil {
		return &AcquisitionError{URL: url, Err: fmt.Errorf("áudio não foi gerado: %w", err)}
	}
	if s.maxPayloadBytes > 0 && info.Size() > s.maxPayloadBytes {
		return &AcquisitionError{URL: url, Err: fmt.Errorf("áudio muito grande (%d bytes, limite %d)", info.Size(), s.maxPayloadBytes)}
	}
	return nil
}
