package handler_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/testutil"
)

func TestAttachmentEndpoints(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	id := createPurchase(t, env, "With files")["id"].(string)

	w := testutil.DoUpload(env.Router, "/api/purchases/"+id+"/attachments", "notes.txt", []byte("hello procurement"), testutil.TestUser)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	ref := testutil.ParseResponse(w)["data"].(map[string]interface{})
	attID := ref["id"].(string)
	if ref["uploadedBy"] != testutil.TestUser || ref["size"].(float64) != 17 {
		t.Fatalf("unexpected reference %v", ref)
	}
	if _, ok := ref["data"]; ok {
		t.Fatalf("upload response must not carry the payload")
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/purchases/"+id+"/attachments", nil, "")
	if list := testutil.ParseResponse(w)["data"].([]interface{}); len(list) != 1 {
		t.Fatalf("expected one attachment, got %d", len(list))
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/attachments/"+attID+"/download", nil, "")
	if w.Code != http.StatusOK || w.Body.String() != "hello procurement" {
		t.Fatalf("download: got %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !bytes.HasPrefix([]byte(ct), []byte("text/plain")) {
		t.Fatalf("expected detected text/plain, got %q", ct)
	}

	w = testutil.DoRequest(env.Router, http.MethodDelete, "/api/attachments/"+attID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/attachments/"+attID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestAttachmentTooLarge(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	id := createPurchase(t, env, "Big file")["id"].(string)

	big := bytes.Repeat([]byte("x"), entity.MaxAttachmentSize+1)
	w := testutil.DoUpload(env.Router, "/api/purchases/"+id+"/attachments", "big.bin", big, "")
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/purchases/"+id+"/attachments", nil, "")
	if list := testutil.ParseResponse(w)["data"].([]interface{}); len(list) != 0 {
		t.Fatalf("oversized file must not be stored")
	}
}

func TestAttachmentMissingFile(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/purchases/2025-PF-001/attachments", map[string]string{}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file, got %d", w.Code)
	}
}
