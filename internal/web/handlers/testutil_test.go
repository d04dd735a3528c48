package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jvasek/facemark/internal/attendance"
	"github.com/jvasek/facemark/internal/config"
	"github.com/jvasek/facemark/internal/database/mock"
	"github.com/jvasek/facemark/internal/enrollment"
	"github.com/jvasek/facemark/internal/imagestore"
)

// fakeRetrainer counts retrain requests without running anything
type fakeRetrainer struct {
	calls atomic.Int32
}

func (f *fakeRetrainer) RequestRetrain() {
	f.calls.Add(1)
}

// fixture wires real enrollment logic over in-memory repositories
type fixture struct {
	manager    *enrollment.Manager
	ledger     *attendance.Ledger
	identities *mock.MockIdentityRepository
	records    *mock.MockAttendanceRepository
	retrainer  *fakeRetrainer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	identities := mock.NewMockIdentityRepository()
	records := mock.NewMockAttendanceRepository()
	store := imagestore.New(&config.ImageStoreConfig{BaseDir: t.TempDir()})
	ledger := attendance.NewLedger(records)
	retrainer := &fakeRetrainer{}
	return &fixture{
		manager:    enrollment.NewManager(identities, store, ledger, retrainer),
		ledger:     ledger,
		identities: identities,
		records:    records,
		retrainer:  retrainer,
	}
}

// testImagePNG encodes a tiny valid PNG for enrollment payloads
func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// jsonRequest creates a request with a JSON body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
