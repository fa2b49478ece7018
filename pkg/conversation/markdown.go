package conversation

import (
	"path/filepath"
	"strings"
)

const (
	// turnSeparator precedes every user turn in the transcript.
	turnSeparator = "----------"

	// sourceDivider separates the source URL list from the transcript body.
	sourceDivider = "---"
)

// RenderMarkdown renders the conversation as a human-readable transcript.
//
// Source URLs, when present, are listed verbatim above a divider line. User
// turns are introduced by a separator line and quoted with "> " per part
// line; model turns render unprefixed. Artifact parts display the basename
// of their provenance path, falling back to the raw remote URI when the
// artifact index has no entry for them.
func (c *Conversation) RenderMarkdown() string {
	var b strings.Builder

	if len(c.URLs) > 0 {
		for _, u := range c.URLs {
			b.WriteString(u)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(sourceDivider)
		b.WriteString("\n\n")
	}

	for _, turn := range c.Turns {
		if turn.Role == RoleUser {
			b.WriteString(turnSeparator)
			b.WriteString("\n")
		}
		for _, part := range turn.Parts {
			line := c.renderPart(part)
			if turn.Role == RoleUser {
				for _, l := range strings.Split(line, "\n") {
					b.WriteString("> ")
					b.WriteString(l)
					b.WriteString("\n")
				}
			} else {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (c *Conversation) renderPart(part Part) string {
	switch part.Type {
	case PartTypeArtifact:
		if prov := c.Provenance(part.RemoteURI); prov != "" {
			return filepath.Base(prov)
		}
		return part.RemoteURI
	default:
		return part.Text
	}
}
