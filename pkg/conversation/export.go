package conversation

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	historySuffix    = ".history.json"
	transcriptSuffix = ".gemini.md"
)

// ExportPrefix derives the output path prefix for a conversation's export
// files. Files take priority over URLs: a single file exports next to
// itself with its extension stripped; multiple files share the longest
// common basename prefix in the first file's directory. With only URLs the
// prefix is the last path segment of the first URL, in the current
// directory.
func ExportPrefix(files, urls []string) string {
	if len(files) > 0 {
		first := strings.TrimSuffix(files[0], filepath.Ext(files[0]))
		if len(files) == 1 {
			return first
		}

		bases := make([]string, len(files))
		for i, f := range files {
			bases[i] = strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		}
		common := commonPrefix(bases)
		if common == "" {
			return first
		}
		return filepath.Join(filepath.Dir(files[0]), common)
	}

	if len(urls) > 0 {
		if parsed, err := url.Parse(urls[0]); err == nil {
			if base := strings.TrimSuffix(filepath.Base(parsed.Path), filepath.Ext(parsed.Path)); base != "" && base != "." && base != "/" {
				return base
			}
			if parsed.Host != "" {
				return parsed.Host
			}
		}
		return "conversation"
	}

	return "conversation"
}

// Export writes the two export projections beside the inputs:
// <prefix>.history.json, the self-contained JSON snapshot including
// provenance, and <prefix>.gemini.md, the markdown transcript. It returns
// the two paths written.
func (c *Conversation) Export() (historyPath, transcriptPath string, err error) {
	prefix := ExportPrefix(c.Files, c.URLs)

	snapshot, err := EncodeTurns(c.Turns, c.ArtifactIndex)
	if err != nil {
		return "", "", fmt.Errorf("encoding history snapshot: %w", err)
	}

	historyPath = prefix + historySuffix
	if err := os.WriteFile(historyPath, snapshot, 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", historyPath, err)
	}

	transcriptPath = prefix + transcriptSuffix
	if err := os.WriteFile(transcriptPath, []byte(c.RenderMarkdown()), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", transcriptPath, err)
	}

	return historyPath, transcriptPath, nil
}

func commonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, v := range values[1:] {
		for !strings.HasPrefix(v, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return strings.TrimRight(prefix, "-_. ")
}
