// Package client is a typed consumer of the resume builder API. Reads go
// through a keyed cache, and each mutation updates or invalidates exactly the
// cached resources it affects.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

const (
	apiPrefix       = "/api/v1"
	defaultTimeout  = 60 * time.Second
	maxResponseSize = 32 << 20

	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Client calls the API at a base URL such as http://localhost:8080.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithCache shares a cache between clients.
func WithCache(cache *Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// New constructs a Client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base URL %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      NewCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cache exposes the client's cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// resolve turns an API path or a server-provided URL into an absolute URL.
// Absolute URLs pass through; anything else is taken relative to the base.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return c.baseURL + path
}

func api(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}
	return apiPrefix + fmt.Sprintf(format, escaped...)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	contentType := ""
	if in != nil {
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// fetchFile downloads raw bytes. failMessage replaces the message of any
// non-2xx answer.
func (c *Client) fetchFile(ctx context.Context, path, failMessage string) (File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return File{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return File{}, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return File{}, fmt.Errorf("GET %s: read response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		if failMessage != "" {
			apiErr.Message = failMessage
		}
		return File{}, apiErr
	}
	return File{
		Data:        data,
		FileName:    fileName(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func fileName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// Resumes

func (c *Client) ListResumes(ctx context.Context) ([]Resume, error) {
	return loadList(ctx, c.cache, ResumesKey(), func(ctx context.Context) ([]Resume, error) {
		var out []Resume
		err := c.doJSON(ctx, http.MethodGet, api("/resumes"), nil, &out)
		return out, err
	})
}

func (c *Client) GetResume(ctx context.Context, id string) (Resume, error) {
	return loadOne(ctx, c.cache, ResumeKey(id), func(ctx context.Context) (Resume, error) {
		var out Resume
		err := c.doJSON(ctx, http.MethodGet, api("/resumes/%s", id), nil, &out)
		return out, err
	})
}

func (c *Client) CreateResume(ctx context.Context, in ResumeInput) (Resume, error) {
	var out Resume
	if err := c.doJSON(ctx, http.MethodPost, api("/resumes"), in, &out); err != nil {
		return Resume{}, err
	}
	c.cache.Set(ResumeKey(out.ID), out)
	c.cache.Invalidate(ResumesKey())
	return out, nil
}

func (c *Client) UpdateResume(ctx context.Context, id string, patch ResumePatch) (Resume, error) {
	var out Resume
	if err := c.doJSON(ctx, http.MethodPatch, api("/resumes/%s", id), patch, &out); err != nil {
		return Resume{}, err
	}
	c.cache.Set(ResumeKey(id), out)
	c.cache.Invalidate(ResumesKey())
	return out, nil
}

// DeleteResume removes a resume and forgets everything cached under it.
func (c *Client) DeleteResume(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, api("/resumes/%s", id), nil, nil); err != nil {
		return err
	}
	c.cache.InvalidateItem("resumes", id)
	c.cache.Invalidate(ResumesKey())
	return nil
}

// ResumeSource downloads the file an imported resume was created from.
func (c *Client) ResumeSource(ctx context.Context, id string) (File, error) {
	return c.fetchFile(ctx, api("/resumes/%s/source", id), "")
}

// ImportResume uploads a PDF or DOCX whose text becomes the new resume.
// An empty title lets the server derive one from fileName.
func (c *Client) ImportResume(ctx context.Context, title, templateID, fileName string, data []byte) (Resume, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if title != "" {
		if err := w.WriteField("title", title); err != nil {
			return Resume{}, err
		}
	}
	if templateID != "" {
		if err := w.WriteField("templateId", templateID); err != nil {
			return Resume{}, err
		}
	}
	if err := writeFilePart(w, fileName, data); err != nil {
		return Resume{}, err
	}
	if err := w.Close(); err != nil {
		return Resume{}, err
	}

	var out Resume
	if err := c.do(ctx, http.MethodPost, api("/resumes/import"), &buf, w.FormDataContentType(), &out); err != nil {
		return Resume{}, err
	}
	c.cache.Set(ResumeKey(out.ID), out)
	c.cache.Invalidate(ResumesKey())
	return out, nil
}

func writeFilePart(w *multipart.Writer, fileName string, data []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(fileName)))
	header.Set("Content-Type", contentTypeFor(fileName))
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

func contentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return docxContentType
	default:
		return "application/octet-stream"
	}
}

// Sections

func (c *Client) ListSections(ctx context.Context, resumeID string) ([]Section, error) {
	return loadList(ctx, c.cache, SectionsKey(resumeID), func(ctx context.Context) ([]Section, error) {
		var out []Section
		err := c.doJSON(ctx, http.MethodGet, api("/resumes/%s/sections", resumeID), nil, &out)
		return out, err
	})
}

// UpdateSection edits a section, folds the result into the cached list and
// drops the section's cached history.
func (c *Client) UpdateSection(ctx context.Context, resumeID, sectionID string, patch SectionPatch) (Section, error) {
	var out Section
	if err := c.doJSON(ctx, http.MethodPatch, api("/resumes/%s/sections/%s", resumeID, sectionID), patch, &out); err != nil {
		return Section{}, err
	}
	c.upsertSection(resumeID, out)
	c.cache.Invalidate(HistoryKey(resumeID, sectionID))
	return out, nil
}

// DeleteSection has no safe optimistic form since the server renumbers the
// remaining sections, so the list is refetched.
func (c *Client) DeleteSection(ctx context.Context, resumeID, sectionID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, api("/resumes/%s/sections/%s", resumeID, sectionID), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(SectionsKey(resumeID), HistoryKey(resumeID, sectionID))
	return nil
}

func (c *Client) SectionHistory(ctx context.Context, resumeID, sectionID string) ([]SectionVersion, error) {
	return loadList(ctx, c.cache, HistoryKey(resumeID, sectionID), func(ctx context.Context) ([]SectionVersion, error) {
		var out []SectionVersion
		err := c.doJSON(ctx, http.MethodGet, api("/resumes/%s/sections/%s/history", resumeID, sectionID), nil, &out)
		return out, err
	})
}

// RestoreSection rolls a section back to a history entry. The restore adds
// a history entry of its own, so both lists are refetched.
func (c *Client) RestoreSection(ctx context.Context, resumeID, sectionID, versionID string) (Section, error) {
	var out Section
	path := api("/resumes/%s/sections/%s/history/%s/restore", resumeID, sectionID, versionID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return Section{}, err
	}
	c.cache.Invalidate(SectionsKey(resumeID), HistoryKey(resumeID, sectionID))
	return out, nil
}

// Versions

func (c *Client) ListVersions(ctx context.Context, resumeID string) ([]Version, error) {
	return loadList(ctx, c.cache, VersionsKey(resumeID), func(ctx context.Context) ([]Version, error) {
		var out []Version
		err := c.doJSON(ctx, http.MethodGet, api("/resumes/%s/versions", resumeID), nil, &out)
		return out, err
	})
}

func (c *Client) GetVersion(ctx context.Context, resumeID, versionID string) (Version, error) {
	var out Version
	err := c.doJSON(ctx, http.MethodGet, api("/resumes/%s/versions/%s", resumeID, versionID), nil, &out)
	return out, err
}

func (c *Client) CreateVersion(ctx context.Context, resumeID string, in VersionInput) (Version, error) {
	var out Version
	if err := c.doJSON(ctx, http.MethodPost, api("/resumes/%s/versions", resumeID), in, &out); err != nil {
		return Version{}, err
	}
	c.cache.Invalidate(VersionsKey(resumeID))
	return out, nil
}

// Templates

func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	return loadList(ctx, c.cache, TemplatesKey(), func(ctx context.Context) ([]Template, error) {
		var out []Template
		err := c.doJSON(ctx, http.MethodGet, api("/templates"), nil, &out)
		return out, err
	})
}

func (c *Client) GetTemplate(ctx context.Context, id string) (Template, error) {
	var out Template
	err := c.doJSON(ctx, http.MethodGet, api("/templates/%s", id), nil, &out)
	return out, err
}

func (c *Client) CreateTemplate(ctx context.Context, in TemplateInput) (Template, error) {
	var out Template
	if err := c.doJSON(ctx, http.MethodPost, api("/templates"), in, &out); err != nil {
		return Template{}, err
	}
	c.cache.Invalidate(TemplatesKey())
	return out, nil
}

// UploadTemplateAsset stores a reference DOCX for a template.
func (c *Client) UploadTemplateAsset(ctx context.Context, id string, data []byte) (Template, error) {
	var out Template
	if err := c.do(ctx, http.MethodPut, api("/templates/%s/asset", id), bytes.NewReader(data), docxContentType, &out); err != nil {
		return Template{}, err
	}
	c.cache.Invalidate(TemplatesKey())
	return out, nil
}

func (c *Client) DownloadTemplate(ctx context.Context, id string) (File, error) {
	return c.fetchFile(ctx, api("/templates/%s/download", id), "")
}

// Documents

func (c *Client) ListDocuments(ctx context.Context, resumeID string) ([]Document, error) {
	return loadList(ctx, c.cache, DocumentsKey(resumeID), func(ctx context.Context) ([]Document, error) {
		var out []Document
		err := c.doJSON(ctx, http.MethodGet, api("/resumes/%s/documents", resumeID), nil, &out)
		return out, err
	})
}

type generateRequest struct {
	VersionID  string `json:"versionId,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
}

type generateResponse struct {
	DocumentID  string `json:"documentId"`
	DownloadURL string `json:"downloadUrl"`
}

// GenerateDocx renders a DOCX and downloads it. The request body is only
// sent when an option is set, leaving template choice to the server.
func (c *Client) GenerateDocx(ctx context.Context, resumeID string, opts GenerateOptions) (GeneratedFile, error) {
	var in any
	req := generateRequest{
		VersionID:  strings.TrimSpace(opts.VersionID),
		TemplateID: strings.TrimSpace(opts.TemplateID),
	}
	if req.VersionID != "" || req.TemplateID != "" {
		in = req
	}

	var gen generateResponse
	if err := c.doJSON(ctx, http.MethodPost, api("/resumes/%s/generate", resumeID), in, &gen); err != nil {
		return GeneratedFile{}, err
	}
	c.cache.Invalidate(DocumentsKey(resumeID))

	file, err := c.Download(ctx, gen.DownloadURL)
	if err != nil {
		return GeneratedFile{}, err
	}
	return GeneratedFile{DocumentID: gen.DocumentID, DownloadURL: gen.DownloadURL, File: file}, nil
}

// Download fetches a generated document by the URL the server handed out.
func (c *Client) Download(ctx context.Context, downloadURL string) (File, error) {
	if strings.TrimSpace(downloadURL) == "" {
		return File{}, &APIError{Kind: KindUnknown, Message: msgDownloadFailed}
	}
	return c.fetchFile(ctx, downloadURL, msgDownloadFailed)
}

func (c *Client) DocumentText(ctx context.Context, resumeID, documentID string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	err := c.doJSON(ctx, http.MethodGet, api("/resumes/%s/documents/%s/text", resumeID, documentID), nil, &out)
	return out.Text, err
}
