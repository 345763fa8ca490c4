package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"server/internal/generation"
	"server/internal/infra"
	"server/internal/providers/gemini"
	"server/internal/store"
)

type stubGenerator struct {
	outcome gemini.Outcome
	calls   int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, image []byte, mediaType string) gemini.Outcome {
	s.calls++
	return s.outcome
}

func newTestApp(t *testing.T, generator generation.ImageGenerator) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	contentDir := filepath.Join(dir, "images")
	results, err := store.New(store.Options{
		ContentDir:   contentDir,
		MetadataFile: filepath.Join(dir, "generations.json"),
		RoutePrefix:  "/images",
	})
	if err != nil {
		t.Fatalf("store.New returned error: %v", err)
	}

	logger := infra.Logger(zerolog.New(io.Discard))
	service := generation.NewService(generator, results, &logger)
	return NewApp(service, results, contentDir, logger), contentDir
}

func testRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/generate", app.Generate)
	r.Get("/api/generations", app.ListGenerations)
	r.Get("/images/{file}", app.ServeImage)
	return r
}

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a})
}

func generateBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"settings": map[string]any{
			"modelSettings": map[string]string{
				"gender":   "Male",
				"bodyType": "Average",
			},
			"environmentSettings": map[string]string{
				"backgroundPreset": "outdoor-nature",
			},
		},
		"imageData": pngDataURI(),
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return body
}

func TestGenerateEndToEndSuccess(t *testing.T) {
	generator := &stubGenerator{outcome: gemini.Outcome{
		Kind:      gemini.KindImage,
		Image:     []byte("generated-png"),
		MediaType: "image/png",
	}}
	app, contentDir := newTestApp(t, generator)
	ts := httptest.NewServer(testRouter(app))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", bytes.NewReader(generateBody(t)))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status mismatch: got %d want 200", resp.StatusCode)
	}
	var out generation.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success, got message %q", out.Message)
	}
	if !strings.HasPrefix(out.ImageURL, "/images/") || !strings.HasSuffix(out.ImageURL, ".png") {
		t.Fatalf("imageUrl mismatch: %q", out.ImageURL)
	}
	if !strings.Contains(out.PromptUsed, "Outdoor nature setting") {
		t.Fatalf("promptUsed missing setting description:\n%s", out.PromptUsed)
	}

	entries, err := os.ReadDir(contentDir)
	if err != nil {
		t.Fatalf("read content dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".png") {
		t.Fatalf("content dir does not hold exactly one png: %v", entries)
	}

	// The stored file is also served back over the image route.
	imgResp, err := http.Get(ts.URL + out.ImageURL)
	if err != nil {
		t.Fatalf("image request failed: %v", err)
	}
	defer imgResp.Body.Close()
	if imgResp.StatusCode != http.StatusOK {
		t.Fatalf("image status mismatch: got %d", imgResp.StatusCode)
	}
	served, _ := io.ReadAll(imgResp.Body)
	if string(served) != "generated-png" {
		t.Fatalf("served image bytes mismatch")
	}
}

func TestGenerateTimeout(t *testing.T) {
	generator := &stubGenerator{outcome: gemini.Outcome{Kind: gemini.KindTimeout}}
	app, _ := newTestApp(t, generator)
	ts := httptest.NewServer(testRouter(app))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", bytes.NewReader(generateBody(t)))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status mismatch: got %d want 504", resp.StatusCode)
	}
	var out generation.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Success || !strings.Contains(out.Message, "took too long") {
		t.Fatalf("unexpected envelope: %+v", out)
	}
}

func TestGenerateMalformedImageData(t *testing.T) {
	generator := &stubGenerator{}
	app, _ := newTestApp(t, generator)
	ts := httptest.NewServer(testRouter(app))
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{
		"settings": map[string]any{
			"modelSettings":       map[string]string{},
			"environmentSettings": map[string]string{},
		},
		"imageData": "not-a-data-uri",
	})
	resp, err := http.Post(ts.URL+"/api/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status mismatch: got %d want 400", resp.StatusCode)
	}
	if generator.calls != 0 {
		t.Fatalf("remote call attempted for malformed image data")
	}
	var out generation.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Success || out.Message == "" {
		t.Fatalf("unexpected envelope: %+v", out)
	}
}

func TestGenerateInvalidJSON(t *testing.T) {
	app, _ := newTestApp(t, &stubGenerator{})
	ts := httptest.NewServer(testRouter(app))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader("{nope"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status mismatch: got %d want 400", resp.StatusCode)
	}
}

func TestListGenerations(t *testing.T) {
	generator := &stubGenerator{outcome: gemini.Outcome{
		Kind:      gemini.KindImage,
		Image:     []byte("generated"),
		MediaType: "image/webp",
	}}
	app, _ := newTestApp(t, generator)
	ts := httptest.NewServer(testRouter(app))
	defer ts.Close()

	// Empty log serves an empty array, not null.
	resp, err := http.Get(ts.URL + "/api/generations")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if got := strings.TrimSpace(string(raw)); got != "[]" {
		t.Fatalf("empty gallery mismatch: %q", got)
	}

	if _, err := http.Post(ts.URL+"/api/generate", "application/json", bytes.NewReader(generateBody(t))); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	resp, err = http.Get(ts.URL + "/api/generations")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var records []generation.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("record count mismatch: got %d want 1", len(records))
	}
	if records[0].SettingsUsed.Model.Gender != "Male" {
		t.Fatalf("settings not persisted verbatim: %+v", records[0].SettingsUsed)
	}
}

func TestServeImageRejectsTraversal(t *testing.T) {
	app, contentDir := newTestApp(t, &stubGenerator{})
	if err := os.WriteFile(filepath.Join(contentDir, "ok.png"), []byte("img"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ts := httptest.NewServer(testRouter(app))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/images/ok.png")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("existing image status mismatch: got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/images/..%2Fgenerations.json")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("traversal request must not succeed")
	}
}
