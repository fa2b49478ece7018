package conversation_test

import (
	"crypto/sha256"
	"encoding/hex"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/conversation"
)

var _ = Describe("DeriveID", func() {
	It("is deterministic for a fixed input set", func() {
		first := conversation.DeriveID([]string{"a.pdf", "b.srt"}, []string{"https://example.com"}, "")
		second := conversation.DeriveID([]string{"a.pdf", "b.srt"}, []string{"https://example.com"}, "")
		Expect(first).To(Equal(second))
	})

	It("matches the digest of the canonical encoding", func() {
		sum := sha256.Sum256([]byte(`{"files":["a.pdf"],"urls":[]}`))
		Expect(conversation.DeriveID([]string{"a.pdf"}, nil, "")).To(Equal(hex.EncodeToString(sum[:])))
	})

	It("is order-sensitive within each sequence", func() {
		forward := conversation.DeriveID([]string{"a.pdf", "b.srt"}, nil, "")
		reversed := conversation.DeriveID([]string{"b.srt", "a.pdf"}, nil, "")
		Expect(forward).NotTo(Equal(reversed))
	})

	It("distinguishes files from urls", func() {
		asFile := conversation.DeriveID([]string{"x"}, nil, "")
		asURL := conversation.DeriveID(nil, []string{"x"}, "")
		Expect(asFile).NotTo(Equal(asURL))
	})

	It("returns an explicit id unchanged", func() {
		Expect(conversation.DeriveID([]string{"a.pdf"}, nil, "my-session")).To(Equal("my-session"))
	})

	It("derives a valid id for empty inputs", func() {
		sum := sha256.Sum256([]byte(`{"files":[],"urls":[]}`))
		Expect(conversation.DeriveID(nil, nil, "")).To(Equal(hex.EncodeToString(sum[:])))
	})

	It("treats nil and empty slices identically", func() {
		Expect(conversation.DeriveID(nil, nil, "")).To(Equal(conversation.DeriveID([]string{}, []string{}, "")))
	})
})
