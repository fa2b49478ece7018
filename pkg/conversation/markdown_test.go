package conversation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/conversation"
)

var _ = Describe("RenderMarkdown", func() {
	It("renders artifact basenames under the user turn separator", func() {
		conv := conversation.New([]string{"/docs/a.pdf", "/docs/b.srt"}, nil, "")
		conv.RecordProvenance("files/abc", "/docs/a.pdf")
		conv.RecordProvenance("files/def", "/docs/b.srt")
		conv.AppendTurn(conversation.Turn{
			Role: conversation.RoleUser,
			Parts: []conversation.Part{
				conversation.NewArtifactPart("application/pdf", "files/abc"),
				conversation.NewArtifactPart("text/plain", "files/def"),
			},
		})

		Expect(conv.RenderMarkdown()).To(Equal("----------\n> a.pdf\n> b.srt\n\n"))
	})

	It("lists source urls above a divider", func() {
		conv := conversation.New(nil, []string{"https://example.com/post"}, "")
		conv.AppendTurn(conversation.NewTextTurn(conversation.RoleModel, "summary"))

		out := conv.RenderMarkdown()
		Expect(out).To(HavePrefix("https://example.com/post\n\n---\n\n"))
		Expect(out).To(HaveSuffix("summary\n\n"))
	})

	It("renders model turns without a quote prefix", func() {
		conv := conversation.New(nil, nil, "")
		conv.AppendTurn(conversation.NewTextTurn(conversation.RoleUser, "question"))
		conv.AppendTurn(conversation.NewTextTurn(conversation.RoleModel, "answer"))

		Expect(conv.RenderMarkdown()).To(Equal("----------\n> question\n\nanswer\n\n"))
	})

	It("quotes every line of a multi-line user part", func() {
		conv := conversation.New(nil, nil, "")
		conv.AppendTurn(conversation.NewTextTurn(conversation.RoleUser, "line one\nline two"))

		Expect(conv.RenderMarkdown()).To(ContainSubstring("> line one\n> line two\n"))
	})

	It("falls back to the raw remote uri without provenance", func() {
		conv := conversation.New(nil, nil, "")
		conv.AppendTurn(conversation.Turn{
			Role:  conversation.RoleUser,
			Parts: []conversation.Part{conversation.NewArtifactPart("text/plain", "files/orphan")},
		})

		Expect(conv.RenderMarkdown()).To(ContainSubstring("> files/orphan\n"))
	})
})
