package gemini

// Wire types for the generativelanguage REST API. Only the fields the
// client reads or writes are modeled.

type filePart struct {
	MIMEType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type contentPart struct {
	Text     string    `json:"text,omitempty"`
	FileData *filePart `json:"file_data,omitempty"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

// fileResource is the File resource returned by uploads and files.get.
type fileResource struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	State    string `json:"state"`
}

type uploadResponse struct {
	File fileResource `json:"file"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
