package acquire

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Transcriber converts an audio file to a transcript file. Used as the
// fallback when a video has no captions and transcription is enabled.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Captions acquires subtitles for video URLs via the yt-dlp binary,
// falling back to audio download plus speech-to-text when enabled.
type Captions struct {
	// Binary is the downloader executable. Defaults to "yt-dlp".
	Binary string

	// CookiesFile is passed through for gated content when set.
	CookiesFile string

	// EnableTranscription turns on the audio fallback. Requires Transcriber.
	EnableTranscription bool

	// Transcriber performs speech-to-text for the audio fallback.
	Transcriber Transcriber

	// OutputDir is where subtitle and audio files land. Defaults to CWD.
	OutputDir string
}

// Fetch downloads captions for the video, preferring authored subtitles
// over automatic ones, converted to SRT. Without captions it downloads the
// audio track and transcribes it, if enabled; otherwise it fails.
func (c *Captions) Fetch(ctx context.Context, rawURL string) (string, error) {
	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-format", "srt/vtt/best",
		"--convert-subs", "srt",
		"-o", c.outputTemplate(),
	}

	subtitle, err := c.runAndCollect(ctx, rawURL, args, ".srt", ".vtt")
	if err != nil {
		return "", err
	}
	if subtitle != "" {
		return subtitle, nil
	}

	if !c.EnableTranscription || c.Transcriber == nil {
		return "", fmt.Errorf("no captions available for %s and transcription is disabled", rawURL)
	}

	audioArgs := []string{
		"-x",
		"--audio-format", "m4a",
		"-o", c.outputTemplate(),
	}
	audio, err := c.runAndCollect(ctx, rawURL, audioArgs, ".m4a")
	if err != nil {
		return "", err
	}
	if audio == "" {
		return "", fmt.Errorf("no audio track available for %s", rawURL)
	}

	transcript, err := c.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", audio, err)
	}
	return transcript, nil
}

func (c *Captions) outputTemplate() string {
	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "%(title)s.%(ext)s")
}

// runAndCollect executes the downloader and returns the first new file with
// one of the wanted extensions, or empty when nothing matching appeared.
func (c *Captions) runAndCollect(ctx context.Context, rawURL string, args []string, wantExts ...string) (string, error) {
	binary := c.Binary
	if binary == "" {
		binary = "yt-dlp"
	}
	if c.CookiesFile != "" {
		args = append(args, "--cookies", c.CookiesFile)
	}
	args = append(args, rawURL)

	before, err := c.snapshot(wantExts)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("running %s for %s: %w: %s", binary, rawURL, err, strings.TrimSpace(string(out)))
	}

	after, err := c.snapshot(wantExts)
	if err != nil {
		return "", err
	}
	for path := range after {
		if !before[path] {
			return path, nil
		}
	}
	return "", nil
}

func (c *Captions) snapshot(wantExts []string) (map[string]bool, error) {
	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	found := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range wantExts {
			if ext == want {
				found[filepath.Join(dir, entry.Name())] = true
			}
		}
	}
	return found, nil
}
