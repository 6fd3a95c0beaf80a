package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cvbuilder-backend/cv/convert"
	"cvbuilder-backend/cv/render"
)

func newTestRouter() (*gin.Engine, *Service) {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewStore(time.Minute), render.NewRenderer(mapStore{"cv.html": testTemplate}))
	h := NewHandler(svc, StartOptions{
		RequireConfirm: true,
		TemplateName:   "cv.html",
		Filename:       "cv.pdf",
	})

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func createSession(t *testing.T, r *gin.Engine, body any) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	id, _ := resp["session_id"].(string)
	if id == "" {
		t.Fatalf("no session_id in %v", resp)
	}
	return id
}

func errorCode(t *testing.T, resp map[string]any) string {
	t.Helper()
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error envelope in %v", resp)
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestCreateSessionReturnsSchema(t *testing.T) {
	r, _ := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if resp["state"] != string(StateCollecting) {
		t.Fatalf("state = %v", resp["state"])
	}
	if resp["require_confirm"] != true {
		t.Fatalf("require_confirm = %v", resp["require_confirm"])
	}
	fields, ok := resp["schema"].([]any)
	if !ok || len(fields) != 9 {
		t.Fatalf("schema = %v", resp["schema"])
	}
}

func TestCreateSessionOverridesDefaults(t *testing.T) {
	r, svc := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions", map[string]any{
		"require_confirm": false,
		"filename":        "tailored.pdf",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if resp["require_confirm"] != false {
		t.Fatalf("require_confirm = %v", resp["require_confirm"])
	}

	sess, err := svc.Sessions.Get(resp["session_id"].(string))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.Filename != "tailored.pdf" {
		t.Fatalf("filename = %q", sess.Filename)
	}
}

func TestFullHTTPLifecycle(t *testing.T) {
	r, _ := newTestRouter()
	id := createSession(t, r, nil)
	base := "/api/v1/form-sessions/" + id

	w, resp := doJSON(t, r, http.MethodPost, base+"/update", map[string]any{
		"fields": map[string]any{"full_name": "Ada Lovelace"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	if resp["outcome"] != string(OutcomeContinue) {
		t.Fatalf("outcome = %v", resp["outcome"])
	}
	missing, _ := resp["missing"].([]any)
	if len(missing) == 0 {
		t.Fatalf("no missing fields reported: %v", resp)
	}

	w, resp = doJSON(t, r, http.MethodPost, base+"/update", map[string]any{
		"fields": completeFields(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	if resp["outcome"] != string(OutcomeAwaitingConfirmation) {
		t.Fatalf("outcome = %v", resp["outcome"])
	}
	if resp["summary"] == nil {
		t.Fatalf("no summary: %v", resp)
	}

	w, resp = doJSON(t, r, http.MethodGet, base, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("progress status = %d: %s", w.Code, w.Body.String())
	}
	if resp["state"] != string(StateAwaitingConfirmation) {
		t.Fatalf("state = %v", resp["state"])
	}

	w, resp = doJSON(t, r, http.MethodPost, base+"/confirm", map[string]any{"confirmed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", w.Code, w.Body.String())
	}
	if resp["outcome"] != string(OutcomeSubmitted) {
		t.Fatalf("outcome = %v", resp["outcome"])
	}
	delivery, ok := resp["delivery"].(map[string]any)
	if !ok {
		t.Fatalf("no delivery payload: %v", resp)
	}
	if delivery["mime_type"] != "application/pdf" {
		t.Fatalf("mime_type = %v", delivery["mime_type"])
	}
	if encoded, _ := delivery["encoded_bytes"].(string); encoded == "" {
		t.Fatalf("empty encoded_bytes: %v", delivery)
	}
}

func TestConfirmRejectionReturnsToCollecting(t *testing.T) {
	r, _ := newTestRouter()
	id := createSession(t, r, nil)
	base := "/api/v1/form-sessions/" + id

	if w, _ := doJSON(t, r, http.MethodPost, base+"/update", map[string]any{"fields": completeFields()}); w.Code != http.StatusOK {
		t.Fatalf("update status = %d", w.Code)
	}

	w, resp := doJSON(t, r, http.MethodPost, base+"/confirm", map[string]any{"confirmed": false})
	if w.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", w.Code, w.Body.String())
	}
	if resp["outcome"] != string(OutcomeContinue) || resp["state"] != string(StateCollecting) {
		t.Fatalf("unexpected response %v", resp)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	r, _ := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions/ghost/update", map[string]any{
		"fields": map[string]any{"full_name": "Ada"},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != ErrorCodeNotFound {
		t.Fatalf("error code = %q", code)
	}
}

func TestConfirmWhileCollectingIs409(t *testing.T) {
	r, _ := newTestRouter()
	id := createSession(t, r, nil)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions/"+id+"/confirm", map[string]any{"confirmed": true})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != ErrorCodeInvalidState {
		t.Fatalf("error code = %q", code)
	}
}

func TestConfirmWithoutFlagIs400(t *testing.T) {
	r, _ := newTestRouter()
	id := createSession(t, r, nil)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions/"+id+"/confirm", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != ErrorCodeValidation {
		t.Fatalf("error code = %q", code)
	}
}

func TestBadFieldTypeIs400(t *testing.T) {
	r, _ := newTestRouter()
	id := createSession(t, r, nil)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions/"+id+"/update", map[string]any{
		"fields": map[string]any{"skills": 42},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != ErrorCodeValidation {
		t.Fatalf("error code = %q", code)
	}
}

func TestCancelThenUpdateIs409(t *testing.T) {
	r, _ := newTestRouter()
	id := createSession(t, r, nil)
	base := "/api/v1/form-sessions/" + id

	w, resp := doJSON(t, r, http.MethodPost, base+"/cancel", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", w.Code, w.Body.String())
	}
	if resp["outcome"] != string(OutcomeCancelled) {
		t.Fatalf("outcome = %v", resp["outcome"])
	}

	w, resp = doJSON(t, r, http.MethodPost, base+"/update", map[string]any{
		"fields": map[string]any{"full_name": "Ada"},
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != ErrorCodeInvalidState {
		t.Fatalf("error code = %q", code)
	}
}

func TestPipelineFailureIs502(t *testing.T) {
	r, svc := newTestRouter()
	svc.Convert = func(string) ([]byte, error) {
		return nil, fmt.Errorf("%w: converter offline", convert.ErrConversion)
	}
	id := createSession(t, r, map[string]any{"require_confirm": false})

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/form-sessions/"+id+"/update", map[string]any{
		"fields": completeFields(),
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != ErrorCodeConversion {
		t.Fatalf("error code = %q", code)
	}
}
