package sections_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/sections"
)

func newRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resumeSvc := &resumes.Service{Repo: resumes.NewMemoryRepo()}
	resume, err := resumeSvc.Create(context.Background(), resumes.CreateInput{Title: "Backend Engineer", Markdown: "# Jane"})
	if err != nil {
		t.Fatalf("create resume: %v", err)
	}

	svc := &sections.Service{Repo: sections.NewMemoryRepo(), Resumes: resumeSvc}
	router := gin.New()
	api := router.Group("/api/v1")
	sections.NewHandler(svc).RegisterRoutes(api)
	return router, resume.ID
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", resp.Body.String(), err)
	}
	return out
}

func TestSectionLifecycle(t *testing.T) {
	router, resumeID := newRouter(t)
	base := "/api/v1/resumes/" + resumeID + "/sections"

	resp := doJSON(router, http.MethodPost, base, `{"title":"Profile","markdown":"Summary"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	profile := decode[sections.SectionResponse](t, resp)
	if profile.Order != 1 || profile.ResumeID != resumeID {
		t.Fatalf("unexpected section: %+v", profile)
	}

	resp = doJSON(router, http.MethodPost, base, `{"title":"Skills","markdown":"Go"}`)
	skills := decode[sections.SectionResponse](t, resp)

	resp = doJSON(router, http.MethodPatch, base+"/"+profile.ID, `{"title":"Profile","markdown":"Updated summary"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, http.MethodGet, base+"/"+profile.ID+"/history", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	history := decode[[]sections.VersionResponse](t, resp)
	if len(history) != 2 || history[0].VersionNo != 1 || history[1].Markdown != "Updated summary" {
		t.Fatalf("unexpected history: %+v", history)
	}

	resp = doJSON(router, http.MethodPost, base+"/"+profile.ID+"/history/"+history[0].ID+"/restore", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	restored := decode[sections.SectionResponse](t, resp)
	if restored.Markdown != "Summary" {
		t.Fatalf("expected restored markdown, got %q", restored.Markdown)
	}

	resp = doJSON(router, http.MethodPatch, base+"/reorder", `{"sectionIds":["`+skills.ID+`","`+profile.ID+`"]}`)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, http.MethodGet, base, "")
	list := decode[[]sections.SectionResponse](t, resp)
	if len(list) != 2 || list[0].ID != skills.ID || list[0].Order != 1 || list[1].Order != 2 {
		t.Fatalf("unexpected order: %+v", list)
	}

	resp = doJSON(router, http.MethodDelete, base+"/"+skills.ID, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
	resp = doJSON(router, http.MethodGet, base+"/"+skills.ID+"/history", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestSectionErrors(t *testing.T) {
	router, resumeID := newRouter(t)
	base := "/api/v1/resumes/" + resumeID + "/sections"

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		status   int
		contains string
	}{
		{name: "unknown resume", method: http.MethodGet, path: "/api/v1/resumes/missing/sections", status: http.StatusNotFound, contains: `"message":"Resume not found"`},
		{name: "blank title", method: http.MethodPost, path: base, body: `{"title":"  "}`, status: http.StatusBadRequest, contains: `"title: must not be blank"`},
		{name: "bad order type", method: http.MethodPost, path: base, body: `{"title":"A","order":"first"}`, status: http.StatusBadRequest, contains: `"order: must be int"`},
		{name: "malformed body", method: http.MethodPost, path: base, body: `{`, status: http.StatusBadRequest, contains: `"body: malformed JSON"`},
		{name: "unknown section", method: http.MethodPatch, path: base + "/nope", body: `{"markdown":"x"}`, status: http.StatusNotFound, contains: `"message":"Section not found"`},
		{name: "reorder unknown id", method: http.MethodPatch, path: base + "/reorder", body: `{"sectionIds":["nope"]}`, status: http.StatusBadRequest, contains: `unknown section id`},
		{name: "reorder missing ids", method: http.MethodPatch, path: base + "/reorder", body: `{}`, status: http.StatusBadRequest, contains: `"sectionIds: must not be blank"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(router, tt.method, tt.path, tt.body)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			if !strings.Contains(resp.Body.String(), tt.contains) {
				t.Fatalf("expected body to contain %s, got %s", tt.contains, resp.Body.String())
			}
		})
	}
}

func TestRestoreForeignVersionIsNotFound(t *testing.T) {
	router, resumeID := newRouter(t)
	base := "/api/v1/resumes/" + resumeID + "/sections"

	a := decode[sections.SectionResponse](t, doJSON(router, http.MethodPost, base, `{"title":"A","markdown":"a"}`))
	b := decode[sections.SectionResponse](t, doJSON(router, http.MethodPost, base, `{"title":"B","markdown":"b"}`))
	historyB := decode[[]sections.VersionResponse](t, doJSON(router, http.MethodGet, base+"/"+b.ID+"/history", ""))

	resp := doJSON(router, http.MethodPost, base+"/"+a.ID+"/history/"+historyB[0].ID+"/restore", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "Section version not found") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}
