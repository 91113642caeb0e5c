package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/middleware"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/handler"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/service"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/database"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestUser is sent as the acting user on test requests.
const TestUser = "Test Clerk"

// TestEnv holds test environment resources
type TestEnv struct {
	DB        *gorm.DB
	Repos     *repository.Repositories
	Services  *service.Services
	Publisher *RecordingPublisher
	Router    *gin.Engine
	T         *testing.T
}

// SetupTestDB opens a fresh SQLite file in the test's temp dir and migrates
// the procurement tables.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "procurement_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db, entity.Models()...); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewEnv wires repositories, services and a router over a fresh database.
// blobs may be nil to keep payloads in the database.
func NewEnv(t *testing.T, blobs service.BlobStore) *TestEnv {
	t.Helper()
	db := SetupTestDB(t)
	repos := repository.NewRepositories(db)
	pub := &RecordingPublisher{}
	svc := service.NewServices(db, repos, blobs, pub, zap.NewNop(), service.Options{})

	router := SetupRouter()
	handler.NewHandlers(svc, sse.NewHub(nil), entity.MaxAttachmentSize, zap.NewNop()).
		RegisterRoutes(router.Group("/api"))

	return &TestEnv{DB: db, Repos: repos, Services: svc, Publisher: pub, Router: router, T: t}
}

// SetupRouter creates a gin test router that honours X-User.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Actor())
	return r
}

// DoRequest executes a JSON request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, user string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User", user)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DoRaw sends body unchanged with the given content type.
func DoRaw(r *gin.Engine, method, path, contentType string, body io.Reader, user string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if user != "" {
		req.Header.Set("X-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DoUpload posts one file in the multipart field "file".
func DoUpload(r *gin.Engine, path, filename string, data []byte, user string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", filename)
	fw.Write(data)
	mw.Close()
	return DoRaw(r, http.MethodPost, path, mw.FormDataContentType(), &buf, user)
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []string
}

func (p *RecordingPublisher) Publish(_ context.Context, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, eventType)
}

func (p *RecordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}

// MemoryBlobStore is an in-process object store.
type MemoryBlobStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{Objects: map[string][]byte{}}
}

func (m *MemoryBlobStore) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *MemoryBlobStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

func (m *MemoryBlobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
