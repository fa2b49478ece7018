package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/ingest"
	"github.com/gistahq/gista/pkg/llm"
	testutils "github.com/gistahq/gista/pkg/utils/test"
)

// fastOptions keeps polling loops fast in tests.
func fastOptions() ingest.Options {
	return ingest.Options{PollInterval: time.Millisecond, MaxAttempts: 50}
}

func writeFixture(dir, name, content string) string {
	path := filepath.Join(dir, name)
	ExpectWithOffset(1, os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

var _ = Describe("Ingestor", func() {
	var (
		provider *testutils.FakeProvider
		conv     *conversation.Conversation
		ctx      context.Context
		dir      string
	)

	BeforeEach(func() {
		provider = testutils.NewFakeProvider()
		conv = conversation.New(nil, nil, "test")
		ctx = context.Background()
		dir = GinkgoT().TempDir()
	})

	Context("ingesting local files", func() {
		It("uploads, waits for readiness, and records provenance", func() {
			path := writeFixture(dir, "a.srt", "1\n00:00:01,000 --> 00:00:02,000\nhello\n")
			provider.PollStates[testutils.URIFor(0)] = []llm.ArtifactState{llm.StatePending, llm.StateReady}

			ing := ingest.New(provider, nil, nil, fastOptions())
			artifacts, err := ing.Ingest(ctx, conv, []string{path}, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(artifacts).To(HaveLen(1))
			Expect(artifacts[0].State).To(Equal(llm.StateReady))
			Expect(artifacts[0].Provenance).To(Equal(path))
			Expect(artifacts[0].MIMEType).To(HavePrefix("text/plain"))
			Expect(conv.Provenance(artifacts[0].RemoteURI)).To(Equal(path))
		})

		It("preserves input order across multiple files", func() {
			first := writeFixture(dir, "one.txt", "one")
			second := writeFixture(dir, "two.txt", "two")

			ing := ingest.New(provider, nil, nil, fastOptions())
			artifacts, err := ing.Ingest(ctx, conv, []string{first, second}, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(artifacts).To(HaveLen(2))
			Expect(artifacts[0].Provenance).To(Equal(first))
			Expect(artifacts[1].Provenance).To(Equal(second))
		})

		It("aborts the batch on a terminal failure, naming the artifact", func() {
			good := writeFixture(dir, "good.txt", "fine")
			bad := writeFixture(dir, "bad.txt", "broken")
			provider.PollStates[testutils.URIFor(1)] = []llm.ArtifactState{llm.StateFailed}

			ing := ingest.New(provider, nil, nil, fastOptions())
			artifacts, err := ing.Ingest(ctx, conv, []string{good, bad}, nil)

			var failed ingest.ArtifactFailedError
			Expect(err).To(BeAssignableToTypeOf(failed))
			Expect(err.Error()).To(ContainSubstring("bad.txt"))

			// The artifact that was already ready is not rolled back.
			Expect(artifacts).To(HaveLen(1))
			Expect(conv.Provenance(testutils.URIFor(0))).To(Equal(good))
		})

		It("gives up after the attempts ceiling when configured", func() {
			path := writeFixture(dir, "slow.txt", "slow")
			provider.PollStates[testutils.URIFor(0)] = []llm.ArtifactState{
				llm.StatePending, llm.StatePending, llm.StatePending, llm.StatePending,
			}

			opts := ingest.Options{PollInterval: time.Millisecond, MaxAttempts: 2}
			ing := ingest.New(provider, nil, nil, opts)
			_, err := ing.Ingest(ctx, conv, []string{path}, nil)
			Expect(err).To(MatchError(ContainSubstring("state checks")))
		})
	})

	Context("ingesting urls", func() {
		It("acquires the source before uploading", func() {
			local := writeFixture(dir, "Post.jina.md", "# Post\n\nbody")
			acquirer := testutils.NewFakeAcquirer()
			acquirer.Paths["https://example.com/post"] = local

			ing := ingest.New(provider, acquirer, nil, fastOptions())
			artifacts, err := ing.Ingest(ctx, conv, nil, []string{"https://example.com/post"})
			Expect(err).NotTo(HaveOccurred())

			Expect(acquirer.Fetched).To(Equal([]string{"https://example.com/post"}))
			Expect(artifacts).To(HaveLen(1))
			Expect(artifacts[0].Provenance).To(Equal("https://example.com/post"))
		})

		It("records the source url as provenance, not the acquired file", func() {
			local := writeFixture(dir, "Post.jina.md", "# Post\n\nbody")
			acquirer := testutils.NewFakeAcquirer()
			acquirer.Paths["https://example.com/post"] = local

			ing := ingest.New(provider, acquirer, nil, fastOptions())
			artifacts, err := ing.Ingest(ctx, conv, nil, []string{"https://example.com/post"})
			Expect(err).NotTo(HaveOccurred())

			Expect(conv.Provenance(artifacts[0].RemoteURI)).To(Equal("https://example.com/post"))
			for _, origin := range conv.ArtifactIndex {
				Expect(origin).NotTo(ContainSubstring(".jina.md"))
			}
		})

		It("fails without an acquirer", func() {
			ing := ingest.New(provider, nil, nil, fastOptions())
			_, err := ing.Ingest(ctx, conv, nil, []string{"https://example.com"})
			Expect(err).To(MatchError(ContainSubstring("no acquirer configured")))
		})
	})
})

var _ = Describe("DetectMIME", func() {
	It("classifies by content, not extension", func() {
		dir := GinkgoT().TempDir()
		disguised := filepath.Join(dir, "actually-a-pdf.txt")
		Expect(os.WriteFile(disguised, []byte("%PDF-1.4\n%fake"), 0o644)).To(Succeed())

		mime, err := ingest.DetectMIME(disguised)
		Expect(err).NotTo(HaveOccurred())
		Expect(mime).To(Equal("application/pdf"))
	})

	It("strips charset parameters", func() {
		dir := GinkgoT().TempDir()
		plain := filepath.Join(dir, "notes")
		Expect(os.WriteFile(plain, []byte("just some text"), 0o644)).To(Succeed())

		mime, err := ingest.DetectMIME(plain)
		Expect(err).NotTo(HaveOccurred())
		Expect(mime).To(Equal("text/plain"))
	})
})
