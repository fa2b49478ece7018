package conversation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// DeriveID computes the stable identifier for a conversation from its input
// set. If explicitID is non-empty it is returned unchanged, allowing callers
// to resume a known conversation under their own identity.
//
// Otherwise the id is the SHA-256 hex digest of the canonical JSON encoding
// of {"files":[...],"urls":[...]}. The two sequences keep their structure and
// order, so the same inputs always derive the same id and reordering inputs
// derives a different one. Empty inputs hash the empty structure, which is a
// valid degenerate id.
func DeriveID(files, urls []string, explicitID string) string {
	if explicitID != "" {
		return explicitID
	}

	if files == nil {
		files = []string{}
	}
	if urls == nil {
		urls = []string{}
	}

	payload, err := json.Marshal(struct {
		Files []string `json:"files"`
		URLs  []string `json:"urls"`
	}{Files: files, URLs: urls})
	if err != nil {
		// Marshaling two string slices cannot fail.
		panic("marshaling identity payload: " + err.Error())
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
