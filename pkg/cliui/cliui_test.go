package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("reports success with the elapsed time", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "uploading report.pdf", func() error { return nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("uploading report.pdf"))
	})

	It("propagates the step error", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")
		err := cliui.Step(&buf, "failing", func() error { return boom })
		Expect(err).To(MatchError(boom))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds under a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds with one decimal above a second", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("renders headings for terminal display", func() {
		out, err := cliui.RenderMarkdown("# Title\n\nbody text\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Title"))
		Expect(out).To(ContainSubstring("body text"))
	})
})
