package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/testutil"
)

func TestExportEmptyStore(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	for _, path := range []string{"/api/transfer/export.csv", "/api/transfer/export.xlsx"} {
		w := testutil.DoRequest(env.Router, http.MethodGet, path, nil, "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404 with no data, got %d", path, w.Code)
		}
	}
}

func TestExportThenImport(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	createPurchase(t, env, "Exported")

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/transfer/export.csv", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ".csv") {
		t.Fatalf("expected csv attachment header, got %q", w.Header().Get("Content-Disposition"))
	}
	csvData := w.Body.Bytes()

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/transfer/export.xlsx", nil, "")
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatalf("xlsx: expected a zip payload, got %d", w.Code)
	}

	w = testutil.DoRaw(env.Router, http.MethodPost, "/api/transfer/import?mode=replace", "text/csv", bytes.NewReader(csvData), "")
	if w.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	sum := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if sum["loaded"].(float64) != 1 || sum["total"].(float64) != 1 {
		t.Fatalf("unexpected summary %v", sum)
	}
}

func TestImportRejections(t *testing.T) {
	env := testutil.NewEnv(t, nil)

	w := testutil.DoRaw(env.Router, http.MethodPost, "/api/transfer/import?mode=append", "text/csv", strings.NewReader("x"), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown mode, got %d", w.Code)
	}
	w = testutil.DoUpload(env.Router, "/api/transfer/import", "empty.csv", []byte("ID,PR_No\n\"a\",\"b\"\n"), "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 with no valid rows, got %d: %s", w.Code, w.Body.String())
	}
}

func TestImportFormEncodedBodyIsReadRaw(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	createPurchase(t, env, "Form posted")
	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/transfer/export.csv", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", w.Code)
	}

	w = testutil.DoRaw(env.Router, http.MethodPost, "/api/transfer/import", "application/x-www-form-urlencoded", bytes.NewReader(w.Body.Bytes()), "")
	if w.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	sum := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if sum["loaded"].(float64) != 1 || sum["skipped"].(float64) != 0 {
		t.Fatalf("unexpected summary %v", sum)
	}
}

func TestImportMultipartWithoutFile(t *testing.T) {
	env := testutil.NewEnv(t, nil)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("note", "no file here")
	mw.Close()

	w := testutil.DoRaw(env.Router, http.MethodPost, "/api/transfer/import", mw.FormDataContentType(), &body, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file field, got %d", w.Code)
	}
}
