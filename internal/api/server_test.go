package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flakysalt/InkyPi/internal/browser"
	"github.com/flakysalt/InkyPi/internal/ftpx"
)

// stubService records the last call and returns canned results.
type stubService struct {
	lastSettings browser.DisplaySettings
	lastPath     string

	listing    *ftpx.Listing
	listingErr error
	preview    string
	previewErr error
}

func (s *stubService) ListDirectory(settings browser.DisplaySettings, path string) (*ftpx.Listing, error) {
	s.lastSettings, s.lastPath = settings, path
	return s.listing, s.listingErr
}

func (s *stubService) PreviewImage(settings browser.DisplaySettings, path string) (string, error) {
	s.lastSettings, s.lastPath = settings, path
	return s.preview, s.previewErr
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := NewServerWithService(&stubService{}).Handler()
	rec := doJSON(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestListDirectoryOK(t *testing.T) {
	svc := &stubService{listing: &ftpx.Listing{
		Path:       "/pics",
		ParentPath: "/",
		Files:      []ftpx.Entry{{Name: "cat.jpg", Path: "/pics/cat.jpg", Size: 42}},
	}}
	h := NewServerWithService(svc).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/ftp/list",
		`{"server":"frame.local","path":"/pics","username":"bob","passive":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var got ftpx.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.Path != "/pics" || len(got.Files) != 1 || got.Files[0].Size != 42 {
		t.Errorf("listing = %+v", got)
	}

	if svc.lastPath != "/pics" {
		t.Errorf("path = %q, want /pics", svc.lastPath)
	}
	if svc.lastSettings.Username != "bob" {
		t.Errorf("username = %q, want bob", svc.lastSettings.Username)
	}
	if svc.lastSettings.Passive {
		t.Error("explicit passive:false was overridden by the default")
	}
}

func TestListDirectoryDefaults(t *testing.T) {
	svc := &stubService{listing: &ftpx.Listing{Path: "/", ParentPath: "/"}}
	h := NewServerWithService(svc).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/ftp/list", `{"server":"frame.local"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if svc.lastPath != "/" {
		t.Errorf("path = %q, want / (default)", svc.lastPath)
	}
	s := svc.lastSettings
	if s.Port != 21 || s.Username != "anonymous" || !s.Passive || s.Encoding != "latin-1" {
		t.Errorf("defaults not applied: %+v", s)
	}
}

func TestListDirectoryRequiresServer(t *testing.T) {
	h := NewServerWithService(&stubService{}).Handler()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/ftp/list", `{"path":"/"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["error"] == "" {
		t.Errorf("missing error message in %v", body)
	}
}

func TestListDirectoryMalformedBody(t *testing.T) {
	h := NewServerWithService(&stubService{}).Handler()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/ftp/list", `{nope`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListDirectoryErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad encoding", ftpx.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: dial tcp", ftpx.ErrConnection), http.StatusInternalServerError},
		{fmt.Errorf("%w: denied", ftpx.ErrListing), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		h := NewServerWithService(&stubService{listingErr: tt.err}).Handler()
		rec := doJSON(t, h, http.MethodPost, "/api/v1/ftp/list", `{"server":"x"}`)
		if rec.Code != tt.want {
			t.Errorf("err %v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
		var body map[string]string
		if jerr := json.Unmarshal(rec.Body.Bytes(), &body); jerr != nil {
			t.Errorf("err %v: body not JSON: %v", tt.err, jerr)
			continue
		}
		if body["error"] == "" {
			t.Errorf("err %v: empty error message", tt.err)
		}
	}
}

func TestPreviewImageOK(t *testing.T) {
	svc := &stubService{preview: "aGVsbG8="}
	h := NewServerWithService(svc).Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/ftp/preview",
		`{"server":"frame.local","path":"/pics/cat.jpg"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["preview"] != "aGVsbG8=" {
		t.Errorf("preview = %q", body["preview"])
	}
}

func TestPreviewImageRequiresPath(t *testing.T) {
	h := NewServerWithService(&stubService{}).Handler()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/ftp/preview", `{"server":"frame.local"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewServerWithService(&stubService{}).Handler()
	rec := doJSON(t, h, http.MethodGet, "/api/v1/ftp/list", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
