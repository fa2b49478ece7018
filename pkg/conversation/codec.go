package conversation

import (
	"encoding/json"
	"fmt"
)

// The durable JSON projection of a turn list. Text parts serialize as raw
// JSON strings; artifact parts serialize as {"file_data": {...}} objects.
// The file_path field carries provenance and is only emitted when an index
// is supplied, so the storage form (which persists the index separately)
// never leaks local filesystem layout into the history blob.

type wireTurn struct {
	Role  string            `json:"role"`
	Parts []json.RawMessage `json:"parts"`
}

type wireFileData struct {
	MIMEType string `json:"mime_type,omitempty"`
	FileURI  string `json:"file_uri"`
	FilePath string `json:"file_path,omitempty"`
}

type wireArtifact struct {
	FileData *wireFileData `json:"file_data"`
}

// EncodeTurns serializes turns to the durable JSON form. When index is
// non-nil the output is a self-contained snapshot: each artifact part
// carries its provenance as file_path. Pass nil for the storage form, where
// provenance is persisted separately in the artifact_index column.
func EncodeTurns(turns []Turn, index map[string]string) ([]byte, error) {
	encoded := make([]wireTurn, 0, len(turns))
	for _, turn := range turns {
		wt := wireTurn{Role: turn.Role, Parts: make([]json.RawMessage, 0, len(turn.Parts))}
		for _, part := range turn.Parts {
			raw, err := encodePart(part, index)
			if err != nil {
				return nil, err
			}
			wt.Parts = append(wt.Parts, raw)
		}
		encoded = append(encoded, wt)
	}
	return json.Marshal(encoded)
}

func encodePart(part Part, index map[string]string) (json.RawMessage, error) {
	switch part.Type {
	case PartTypeText:
		return json.Marshal(part.Text)

	case PartTypeArtifact:
		fd := wireFileData{
			MIMEType: part.MIMEType,
			FileURI:  part.RemoteURI,
		}
		if index != nil {
			fd.FilePath = index[part.RemoteURI]
		}
		return json.Marshal(wireArtifact{FileData: &fd})

	default:
		return nil, fmt.Errorf("encoding part: unknown part type %q", part.Type)
	}
}

// DecodeTurns parses the durable JSON form back into turns, recovering any
// provenance embedded as file_path into the returned index. Artifact parts
// missing optional file_data fields degrade gracefully: the part is kept
// with whatever fields were present and simply has no provenance entry.
func DecodeTurns(data []byte) ([]Turn, map[string]string, error) {
	var encoded []wireTurn
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, nil, fmt.Errorf("parsing history: %w", err)
	}

	turns := make([]Turn, 0, len(encoded))
	index := make(map[string]string)
	for _, wt := range encoded {
		turn := Turn{Role: wt.Role, Parts: make([]Part, 0, len(wt.Parts))}
		for _, raw := range wt.Parts {
			part, prov, ok := decodePart(raw)
			if !ok {
				continue
			}
			if prov != "" && part.RemoteURI != "" {
				index[part.RemoteURI] = prov
			}
			turn.Parts = append(turn.Parts, part)
		}
		turns = append(turns, turn)
	}
	return turns, index, nil
}

// decodePart parses a single wire part. The boolean result is false for
// shapes that carry no usable content (neither a string nor a file_data
// object), which are dropped rather than failing the whole history.
func decodePart(raw json.RawMessage) (Part, string, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return NewTextPart(text), "", true
	}

	var artifact wireArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil || artifact.FileData == nil {
		return Part{}, "", false
	}

	part := NewArtifactPart(artifact.FileData.MIMEType, artifact.FileData.FileURI)
	return part, artifact.FileData.FilePath, true
}

// EncodeIndex serializes an artifact index for the storage row.
func EncodeIndex(index map[string]string) ([]byte, error) {
	if index == nil {
		index = map[string]string{}
	}
	return json.Marshal(index)
}

// DecodeIndex parses an artifact index column. An empty blob yields an
// empty, usable index.
func DecodeIndex(data []byte) (map[string]string, error) {
	index := make(map[string]string)
	if len(data) == 0 {
		return index, nil
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parsing artifact index: %w", err)
	}
	return index, nil
}

// EncodeStringList serializes a files or urls column. Nil encodes as the
// empty list so column contents stay canonical.
func EncodeStringList(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

// DecodeStringList parses a files or urls column.
func DecodeStringList(data []byte) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing string list: %w", err)
	}
	return values, nil
}
