package conversation_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/conversation"
)

var _ = Describe("ExportPrefix", func() {
	It("strips the extension of a single file", func() {
		Expect(conversation.ExportPrefix([]string{"/docs/a.pdf"}, nil)).To(Equal("/docs/a"))
	})

	It("prefers files over urls", func() {
		prefix := conversation.ExportPrefix([]string{"/docs/a.pdf"}, []string{"https://example.com/x.pdf"})
		Expect(prefix).To(Equal("/docs/a"))
	})

	It("uses the common basename prefix for multiple files", func() {
		prefix := conversation.ExportPrefix([]string{"/docs/talk-part1.srt", "/docs/talk-part2.srt"}, nil)
		Expect(prefix).To(Equal("/docs/talk-part"))
	})

	It("uses the last url path segment when there are no files", func() {
		Expect(conversation.ExportPrefix(nil, []string{"https://example.com/papers/attention.pdf"})).To(Equal("attention"))
	})

	It("falls back to the host for bare urls", func() {
		Expect(conversation.ExportPrefix(nil, []string{"https://example.com/"})).To(Equal("example.com"))
	})
})

var _ = Describe("Export", func() {
	It("writes the snapshot and transcript beside the input", func() {
		dir := GinkgoT().TempDir()
		input := filepath.Join(dir, "a.pdf")

		conv := conversation.New([]string{input}, nil, "")
		conv.RecordProvenance("files/abc", input)
		conv.AppendTurn(conversation.Turn{
			Role:  conversation.RoleUser,
			Parts: []conversation.Part{conversation.NewArtifactPart("application/pdf", "files/abc")},
		})
		conv.AppendTurn(conversation.NewTextTurn(conversation.RoleModel, "summary"))

		historyPath, transcriptPath, err := conv.Export()
		Expect(err).NotTo(HaveOccurred())
		Expect(historyPath).To(Equal(filepath.Join(dir, "a.history.json")))
		Expect(transcriptPath).To(Equal(filepath.Join(dir, "a.gemini.md")))

		snapshot, err := os.ReadFile(historyPath)
		Expect(err).NotTo(HaveOccurred())

		turns, index, err := conversation.DecodeTurns(snapshot)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(Equal(conv.Turns))
		Expect(index).To(Equal(conv.ArtifactIndex))

		transcript, err := os.ReadFile(transcriptPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(transcript)).To(ContainSubstring("> a.pdf"))
	})
})
