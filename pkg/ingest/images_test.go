package ingest_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/ingest"
	testutils "github.com/gistahq/gista/pkg/utils/test"
)

// tiny valid PNG header followed by filler, enough for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

var _ = Describe("markdown image pass", func() {
	var (
		server *httptest.Server
		hits   int
	)

	BeforeEach(func() {
		hits = 0
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			_, _ = w.Write(pngBytes)
		}))
		DeferCleanup(server.Close)
	})

	It("uploads embedded images after the originating document", func() {
		provider := testutils.NewFakeProvider()
		dir := GinkgoT().TempDir()
		md := writeFixture(dir, "doc.md",
			"# Doc\n\n![fig one]("+server.URL+"/fig1.png)\n\ntext\n\n![fig two]("+server.URL+"/fig2.png)\n")

		conv := conversation.New(nil, nil, "test")
		opts := fastOptions()
		opts.ExtractImages = true

		ing := ingest.New(provider, nil, nil, opts)
		artifacts, err := ing.Ingest(context.Background(), conv, []string{md}, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(artifacts).To(HaveLen(3))
		Expect(artifacts[0].Provenance).To(Equal(md))
		Expect(artifacts[1].MIMEType).To(Equal("image/png"))
		Expect(artifacts[1].Provenance).To(Equal(server.URL + "/fig1.png"))
		Expect(artifacts[2].MIMEType).To(Equal("image/png"))
		Expect(artifacts[2].Provenance).To(Equal(server.URL + "/fig2.png"))
		Expect(hits).To(Equal(2))

		// Every artifact landed in the provenance index.
		for _, a := range artifacts {
			Expect(conv.Provenance(a.RemoteURI)).NotTo(BeEmpty())
		}
	})

	It("deduplicates repeated image references", func() {
		provider := testutils.NewFakeProvider()
		dir := GinkgoT().TempDir()
		md := writeFixture(dir, "doc.md",
			"![a]("+server.URL+"/same.png) and again ![b]("+server.URL+"/same.png)\n")

		conv := conversation.New(nil, nil, "test")
		opts := fastOptions()
		opts.ExtractImages = true

		ing := ingest.New(provider, nil, nil, opts)
		artifacts, err := ing.Ingest(context.Background(), conv, []string{md}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(artifacts).To(HaveLen(2))
		Expect(hits).To(Equal(1))
	})

	It("skips the pass when disabled", func() {
		provider := testutils.NewFakeProvider()
		dir := GinkgoT().TempDir()
		md := writeFixture(dir, "doc.md", "![a]("+server.URL+"/fig.png)\n")

		conv := conversation.New(nil, nil, "test")
		ing := ingest.New(provider, nil, nil, fastOptions())
		artifacts, err := ing.Ingest(context.Background(), conv, []string{md}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(artifacts).To(HaveLen(1))
		Expect(hits).To(BeZero())
	})
})
