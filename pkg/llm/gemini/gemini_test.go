package gemini_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/llm"
	"github.com/gistahq/gista/pkg/llm/gemini"
)

var _ = Describe("Client", func() {
	var (
		server *httptest.Server
		mux    *http.ServeMux
		client *gemini.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		client = gemini.NewClient("test-key", gemini.WithBase(server.URL))
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("UploadArtifact", func() {
		It("runs the resumable protocol and returns the file handle", func() {
			var uploadedBody []byte

			mux.HandleFunc("POST /upload/v1beta/files", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Header.Get("X-Goog-Upload-Command")).To(Equal("start"))
				Expect(r.Header.Get("X-Goog-Upload-Header-Content-Type")).To(Equal("text/plain"))
				w.Header().Set("X-Goog-Upload-URL", server.URL+"/upload-session")
				w.WriteHeader(http.StatusOK)
			})
			mux.HandleFunc("POST /upload-session", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Header.Get("X-Goog-Upload-Command")).To(Equal("upload, finalize"))
				uploadedBody, _ = io.ReadAll(r.Body)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"file": map[string]any{"name": "files/abc", "uri": "files/abc", "state": "PROCESSING"},
				})
			})

			path := filepath.Join(GinkgoT().TempDir(), "a.txt")
			Expect(os.WriteFile(path, []byte("subtitle text"), 0o644)).To(Succeed())

			artifact, err := client.UploadArtifact(ctx, path, "text/plain")
			Expect(err).NotTo(HaveOccurred())
			Expect(artifact.URI).To(Equal("files/abc"))
			Expect(artifact.State).To(Equal(llm.StatePending))
			Expect(string(uploadedBody)).To(Equal("subtitle text"))
		})

		It("fails when the start response has no upload url", func() {
			mux.HandleFunc("POST /upload/v1beta/files", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			path := filepath.Join(GinkgoT().TempDir(), "a.txt")
			Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())

			_, err := client.UploadArtifact(ctx, path, "text/plain")
			Expect(err).To(MatchError(ContainSubstring("missing upload url")))
		})
	})

	Describe("GetArtifactState", func() {
		It("maps ACTIVE to ready", func() {
			mux.HandleFunc("GET /v1beta/files/abc", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("key")).To(Equal("test-key"))
				_ = json.NewEncoder(w).Encode(map[string]any{"name": "files/abc", "state": "ACTIVE"})
			})

			state, err := client.GetArtifactState(ctx, "files/abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(llm.StateReady))
		})

		It("maps FAILED to failed", func() {
			mux.HandleFunc("GET /v1beta/files/abc", func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"name": "files/abc", "state": "FAILED"})
			})

			state, err := client.GetArtifactState(ctx, "files/abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(llm.StateFailed))
		})
	})

	Describe("Send", func() {
		It("submits history plus prompt and accumulates turns", func() {
			var requests []map[string]any

			mux.HandleFunc(fmt.Sprintf("POST /v1beta/%s:generateContent", gemini.DefaultModel), func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				requests = append(requests, body)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"candidates": []map[string]any{
						{"content": map[string]any{"parts": []map[string]any{{"text": "the summary"}}}},
					},
				})
			})

			history := []conversation.Turn{
				{Role: conversation.RoleUser, Parts: []conversation.Part{
					conversation.NewArtifactPart("application/pdf", "files/abc"),
				}},
			}

			sess, err := client.StartSession(ctx, history)
			Expect(err).NotTo(HaveOccurred())

			reply, err := sess.Send(ctx, "summarize")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("the summary"))

			contents := requests[0]["contents"].([]any)
			Expect(contents).To(HaveLen(2))

			// Follow-ups carry the accumulated history.
			_, err = sess.Send(ctx, "shorter please")
			Expect(err).NotTo(HaveOccurred())
			Expect(requests[1]["contents"].([]any)).To(HaveLen(4))
		})

		It("surfaces API errors", func() {
			mux.HandleFunc(fmt.Sprintf("POST /v1beta/%s:generateContent", gemini.DefaultModel), func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": 403, "message": "file expired", "status": "PERMISSION_DENIED"},
				})
			})

			sess, err := client.StartSession(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = sess.Send(ctx, "hello")
			Expect(err).To(MatchError(ContainSubstring("file expired")))
		})
	})
})
