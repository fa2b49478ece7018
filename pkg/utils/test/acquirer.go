package testutils

import (
	"context"
	"errors"
)

// FakeAcquirer maps URLs to pre-created local paths.
type FakeAcquirer struct {
	// Paths maps a URL to the local file it "produces".
	Paths map[string]string

	// Fetched accumulates every URL passed to Fetch.
	Fetched []string

	// FailFetch causes Fetch to return an error.
	FailFetch bool
}

// NewFakeAcquirer creates an empty fake acquirer.
func NewFakeAcquirer() *FakeAcquirer {
	return &FakeAcquirer{Paths: make(map[string]string)}
}

func (f *FakeAcquirer) Fetch(_ context.Context, rawURL string) (string, error) {
	if f.FailFetch {
		return "", errors.New("acquisition refused")
	}
	f.Fetched = append(f.Fetched, rawURL)

	path, ok := f.Paths[rawURL]
	if !ok {
		return "", errors.New("no fixture for " + rawURL)
	}
	return path, nil
}
