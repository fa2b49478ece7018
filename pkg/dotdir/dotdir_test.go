package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/dotdir"
)

var _ = Describe("Manager", func() {
	var (
		m   *dotdir.Manager
		dir string
	)

	BeforeEach(func() {
		m = dotdir.NewManager()
		dir = GinkgoT().TempDir()
	})

	Describe("Target", func() {
		It("uses the override directory and creates it", func() {
			override := filepath.Join(dir, "custom")
			target, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(override))

			info, err := os.Stat(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})
	})

	Describe("ResumeState", func() {
		It("returns nil when no state exists", func() {
			state, err := m.LoadResumeState(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("round-trips a saved state", func() {
			saved := &dotdir.ResumeState{
				ConversationID: "conv-1",
				Namespace:      "team-a",
				Files:          []string{"/docs/report.pdf"},
				URLs:           []string{"https://example.com/post"},
			}
			Expect(m.SaveResumeState(saved, dir)).To(Succeed())

			loaded, err := m.LoadResumeState(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})

		It("rejects saving nil state", func() {
			Expect(m.SaveResumeState(nil, dir)).To(HaveOccurred())
		})

		It("clears state idempotently", func() {
			saved := &dotdir.ResumeState{ConversationID: "conv-1"}
			Expect(m.SaveResumeState(saved, dir)).To(Succeed())
			Expect(m.ClearResumeState(dir)).To(Succeed())
			Expect(m.ClearResumeState(dir)).To(Succeed())

			state, err := m.LoadResumeState(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})
})
