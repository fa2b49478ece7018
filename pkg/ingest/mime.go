package ingest

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
)

// sniffLen matches the amount of leading content http.DetectContentType
// considers.
const sniffLen = 512

// DetectMIME determines a file's content type by signature sniffing, never
// by filename extension, so renamed or extension-less files classify
// correctly. Parameters like charset are stripped from the result.
func DetectMIME(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	detected := http.DetectContentType(buf[:n])
	mediaType, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return detected, nil
	}
	return mediaType, nil
}
