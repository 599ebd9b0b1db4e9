package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/providers/describe"
	"server/internal/service"

	"github.com/rs/zerolog"
)

type memRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	upserts  int
}

func newMemRepo() *memRepo {
	return &memRepo{products: map[string]*domain.Product{}}
}

func (m *memRepo) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memRepo) UpsertSubmission(ctx context.Context, name string, update domain.ProductUpdate) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	p, ok := m.products[name]
	if !ok {
		p = &domain.Product{ProductName: name}
		m.products[name] = p
	}
	p.Images = append(p.Images, update.ImageURLs...)
	p.Description = update.Description
	p.SizePriceData = update.SizePriceData
	copied := *p
	return &copied, nil
}

type memStore struct {
	mu   sync.Mutex
	puts int
}

func (m *memStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	return "https://bucket.example.com/" + key, nil
}

type stubDescriber struct{}

func (stubDescriber) Describe(ctx context.Context, req describe.Request) (string, error) {
	return "Shop our " + req.UserDescription + "\n\nVisit rezagemcollection.shop where you can find all our products.\n\n#tag", nil
}

type stubWatermarker struct{}

func (stubWatermarker) Apply(imageBytes []byte, label string) ([]byte, error) {
	return imageBytes, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memRepo, *memStore) {
	t.Helper()
	repo := newMemRepo()
	store := &memStore{}
	uploader := service.NewUploader(service.UploaderOptions{
		Products:   repo,
		Store:      store,
		Describer:  stubDescriber{},
		Compositor: stubWatermarker{},
		Logger:     zerolog.Nop(),
	})
	app := handlers.NewApp(zerolog.Nop(), repo, uploader)
	srv := httptest.NewServer(httpapi.NewRouter(app, zerolog.Nop(), nil, "", ""))
	t.Cleanup(srv.Close)
	return srv, repo, store
}

func multipartBody(t *testing.T, name, description string, imageCount int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if name != "" {
		if err := w.WriteField("productName", name); err != nil {
			t.Fatalf("write productName: %v", err)
		}
	}
	if description != "" {
		if err := w.WriteField("userDescription", description); err != nil {
			t.Fatalf("write userDescription: %v", err)
		}
	}
	for i := 0; i < imageCount; i++ {
		part, err := w.CreateFormFile("images", "ring.jpg")
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

type uploadResponse struct {
	Message string         `json:"message"`
	Product domain.Product `json:"product"`
	Error   string         `json:"error"`
}

func postUpload(t *testing.T, srv *httptest.Server, name, description string, imageCount int) (*http.Response, uploadResponse) {
	t.Helper()
	body, contentType := multipartBody(t, name, description, imageCount)
	resp, err := http.Post(srv.URL+"/api/images/upload", contentType, body)
	if err != nil {
		t.Fatalf("post upload: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("decode response %q: %v", raw, err)
	}
	return resp, parsed
}

func TestUploadAndFetchFlow(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)

	resp, parsed := postUpload(t, srv, "Ring A", "gold ring", 2)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if len(parsed.Product.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(parsed.Product.Images))
	}
	if !strings.HasPrefix(parsed.Product.Description, "Shop our") {
		t.Fatalf("description = %q", parsed.Product.Description)
	}

	// Resubmission appends images and replaces the description.
	resp, parsed = postUpload(t, srv, "Ring A", "updated ring", 1)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if len(parsed.Product.Images) != 3 {
		t.Fatalf("images = %d, want 3", len(parsed.Product.Images))
	}
	if !strings.Contains(parsed.Product.Description, "updated ring") {
		t.Fatalf("description not replaced: %q", parsed.Product.Description)
	}

	getResp, err := http.Get(srv.URL + "/api/images/Ring%20A")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", getResp.StatusCode)
	}
	var fetched domain.Product
	if err := json.NewDecoder(getResp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if len(fetched.Images) != 3 {
		t.Fatalf("fetched images = %d, want 3", len(fetched.Images))
	}
}

func TestUploadValidationResponses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		productName string
		description string
		imageCount  int
	}{
		{name: "missing_product_name", description: "gold ring", imageCount: 1},
		{name: "missing_description", productName: "Ring A", imageCount: 1},
		{name: "no_images", productName: "Ring A", description: "gold ring"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv, repo, store := newTestServer(t)
			resp, parsed := postUpload(t, srv, tc.productName, tc.description, tc.imageCount)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if parsed.Error == "" {
				t.Fatal("expected error message in response")
			}
			if store.puts != 0 || repo.upserts != 0 {
				t.Fatalf("validation failure had side effects: puts=%d upserts=%d", store.puts, repo.upserts)
			}
		})
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/images/Nonexistent")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Product not found" {
		t.Fatalf("error = %q, want %q", body["error"], "Product not found")
	}
}

func TestUploadGenerationFailureReturns500(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	store := &memStore{}
	uploader := service.NewUploader(service.UploaderOptions{
		Products:   repo,
		Store:      store,
		Describer:  failingDescriber{},
		Compositor: stubWatermarker{},
		Logger:     zerolog.Nop(),
	})
	app := handlers.NewApp(zerolog.Nop(), repo, uploader)
	srv := httptest.NewServer(httpapi.NewRouter(app, zerolog.Nop(), nil, "", ""))
	t.Cleanup(srv.Close)

	resp, parsed := postUpload(t, srv, "Ring A", "gold ring", 1)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if parsed.Error != "Failed to generate product description." {
		t.Fatalf("error = %q", parsed.Error)
	}
	if store.puts != 0 || repo.upserts != 0 {
		t.Fatalf("generation failure had side effects: puts=%d upserts=%d", store.puts, repo.upserts)
	}
}

type failingDescriber struct{}

func (failingDescriber) Describe(ctx context.Context, req describe.Request) (string, error) {
	return "", errors.New("api down")
}
