package conversation

// Diff computes the inputs that have not been ingested yet: the set
// difference requested - persisted for files and urls independently.
// Results preserve the relative order of the requested lists, so the output
// is deterministic for a given input.
func Diff(persistedFiles, persistedURLs, requestedFiles, requestedURLs []string) (newFiles, newURLs []string) {
	return subtract(requestedFiles, persistedFiles), subtract(requestedURLs, persistedURLs)
}

// NewInputs decides what subset of the requested inputs must be ingested for
// this conversation. Diffing only activates once the conversation has
// history; a fresh conversation always ingests the full requested set, even
// when some requested inputs overlap a persisted input list. This keeps
// repeat turns from re-ingesting unchanged sources while still supporting
// adding sources to an ongoing conversation.
func (c *Conversation) NewInputs(requestedFiles, requestedURLs []string) (newFiles, newURLs []string) {
	if !c.HasHistory() {
		return requestedFiles, requestedURLs
	}
	return Diff(c.Files, c.URLs, requestedFiles, requestedURLs)
}

func subtract(requested, persisted []string) []string {
	have := make(map[string]struct{}, len(persisted))
	for _, v := range persisted {
		have[v] = struct{}{}
	}

	result := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, v := range requested {
		if _, ok := have[v]; ok {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		result = append(result, v)
		seen[v] = struct{}{}
	}
	return result
}
