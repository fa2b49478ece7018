package conversation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/conversation"
)

var _ = Describe("Diff", func() {
	It("returns only the inputs missing from the persisted set", func() {
		newFiles, newURLs := conversation.Diff(
			[]string{"a", "b"}, nil,
			[]string{"a", "b", "c"}, nil,
		)
		Expect(newFiles).To(Equal([]string{"c"}))
		Expect(newURLs).To(BeEmpty())
	})

	It("returns everything when nothing is persisted", func() {
		newFiles, _ := conversation.Diff(nil, nil, []string{"a"}, nil)
		Expect(newFiles).To(Equal([]string{"a"}))
	})

	It("returns nothing when the request matches the persisted set", func() {
		newFiles, newURLs := conversation.Diff(
			[]string{"a"}, []string{"u"},
			[]string{"a"}, []string{"u"},
		)
		Expect(newFiles).To(BeEmpty())
		Expect(newURLs).To(BeEmpty())
	})

	It("diffs files and urls independently", func() {
		newFiles, newURLs := conversation.Diff(
			[]string{"x"}, []string{"x"},
			[]string{"x", "y"}, []string{"x", "z"},
		)
		Expect(newFiles).To(Equal([]string{"y"}))
		Expect(newURLs).To(Equal([]string{"z"}))
	})

	It("preserves requested order and drops duplicates", func() {
		newFiles, _ := conversation.Diff(
			[]string{"b"}, nil,
			[]string{"c", "a", "c", "b"}, nil,
		)
		Expect(newFiles).To(Equal([]string{"c", "a"}))
	})
})

var _ = Describe("NewInputs", func() {
	Context("when the conversation has no history", func() {
		It("ingests the full requested set even on overlap", func() {
			conv := conversation.New([]string{"a"}, nil, "")
			conv.Files = []string{"a"}

			newFiles, _ := conv.NewInputs([]string{"a", "b"}, nil)
			Expect(newFiles).To(Equal([]string{"a", "b"}))
		})
	})

	Context("when the conversation has history", func() {
		It("ingests only the delta", func() {
			conv := conversation.New([]string{"a"}, nil, "")
			conv.AppendTurn(conversation.NewTextTurn(conversation.RoleUser, "hi"))

			newFiles, _ := conv.NewInputs([]string{"a", "b"}, nil)
			Expect(newFiles).To(Equal([]string{"b"}))
		})

		It("ingests nothing when no new inputs are requested", func() {
			conv := conversation.New([]string{"a"}, nil, "")
			conv.AppendTurn(conversation.NewTextTurn(conversation.RoleUser, "hi"))

			newFiles, newURLs := conv.NewInputs([]string{"a"}, nil)
			Expect(newFiles).To(BeEmpty())
			Expect(newURLs).To(BeEmpty())
		})
	})
})
