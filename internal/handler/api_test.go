package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var env envelope
	if len(resp.Body.Bytes()) > 0 && resp.Header().Get("Content-Type") != "" &&
		resp.Header().Get("Content-Disposition") == "" {
		_ = json.Unmarshal(resp.Body.Bytes(), &env)
	}
	return resp, env
}

func TestContentLifecycle(t *testing.T) {
	router := setupRouter(t)

	resp, env := doJSON(t, router, http.MethodPost, "/api/v1/content", map[string]interface{}{
		"type":  "article",
		"url":   "https://example.com/a",
		"title": "An Article",
		"tags":  []string{"go"},
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created struct {
		ID    string   `json:"id"`
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "An Article", created.Title)
	require.Equal(t, []string{"go"}, created.Tags)

	resp, env = doJSON(t, router, http.MethodGet, "/api/v1/content/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, env = doJSON(t, router, http.MethodPatch, "/api/v1/content/"+created.ID, map[string]interface{}{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.Code)
	var updated struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, "Renamed", updated.Title)

	resp, env = doJSON(t, router, http.MethodGet, "/api/v1/content", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)

	resp, _ = doJSON(t, router, http.MethodDelete, "/api/v1/content/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, env = doJSON(t, router, http.MethodGet, "/api/v1/content/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, "not_found", env.Error.Code)
}

func TestContentCreateValidationErrors(t *testing.T) {
	router := setupRouter(t)

	resp, env := doJSON(t, router, http.MethodPost, "/api/v1/content", map[string]interface{}{
		"type": "book",
		"url":  "https://example.com/a",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, "invalid", env.Error.Code)

	resp, env = doJSON(t, router, http.MethodPost, "/api/v1/content", map[string]interface{}{
		"type":     "article",
		"url":      "https://example.com/a",
		"metadata": map[string]interface{}{"file_url": "x", "page_count": 3},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, "schema_mismatch", env.Error.Code)
}

func TestHighlightAndCommentFlow(t *testing.T) {
	router := setupRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/api/v1/content", map[string]interface{}{
		"type": "article", "url": "https://example.com/a", "title": "A",
	})
	var content struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &content))

	resp, env := doJSON(t, router, http.MethodPost, "/api/v1/highlights", map[string]interface{}{
		"content_id":    content.ID,
		"selected_text": "a passage",
		"position":      map[string]interface{}{"timestamp": 3},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "schema_mismatch", env.Error.Code)

	resp, env = doJSON(t, router, http.MethodPost, "/api/v1/highlights", map[string]interface{}{
		"content_id":    content.ID,
		"selected_text": "a passage",
		"position":      map[string]interface{}{"start_offset": 0, "end_offset": 9},
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var highlight struct {
		ID    string `json:"id"`
		Color string `json:"color"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &highlight))
	require.Equal(t, "#ffeb3b", highlight.Color)

	resp, _ = doJSON(t, router, http.MethodGet, "/api/v1/comments", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp, env = doJSON(t, router, http.MethodPost, "/api/v1/comments", map[string]interface{}{
		"highlight_id": highlight.ID,
		"text":         "what does this mean?",
		"author_type":  "user",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp, env = doJSON(t, router, http.MethodPost, "/api/v1/highlights/"+highlight.ID+"/reply", map[string]interface{}{
		"instructions": "keep it short",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var reply struct {
		AuthorType  string `json:"author_type"`
		Text        string `json:"text"`
		Order       int    `json:"order"`
		LLMMetadata *struct {
			Model string `json:"model"`
		} `json:"llm_metadata"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	require.Equal(t, "llm", reply.AuthorType)
	require.Equal(t, "a generated reply", reply.Text)
	require.Equal(t, 1, reply.Order)
	require.NotNil(t, reply.LLMMetadata)
	require.Equal(t, "fixed-model", reply.LLMMetadata.Model)

	resp, env = doJSON(t, router, http.MethodGet, "/api/v1/comments?highlight_id="+highlight.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var thread []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &thread))
	require.Len(t, thread, 2)
}

func TestCollectionEndpoints(t *testing.T) {
	router := setupRouter(t)

	resp, env := doJSON(t, router, http.MethodPost, "/api/v1/collections", map[string]interface{}{"name": "Reading"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var col struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &col))

	_, env = doJSON(t, router, http.MethodPost, "/api/v1/content", map[string]interface{}{
		"type": "article", "url": "https://example.com/a", "title": "A",
		"collection_ids": []string{col.ID},
	})
	var content struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &content))

	resp, env = doJSON(t, router, http.MethodGet, "/api/v1/collections/"+col.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var with struct {
		Name    string            `json:"name"`
		Content []json.RawMessage `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &with))
	require.Equal(t, "Reading", with.Name)
	require.Len(t, with.Content, 1)

	resp, _ = doJSON(t, router, http.MethodDelete, "/api/v1/collections/"+col.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp, env = doJSON(t, router, http.MethodGet, "/api/v1/content/"+content.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var stripped struct {
		CollectionIDs []string `json:"collection_ids"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stripped))
	require.Empty(t, stripped.CollectionIDs)
}

func pdfForm(t *testing.T, fields map[string]string, fileField, fileName string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestPDFUploadEndpoints(t *testing.T) {
	router := setupRouter(t)
	payload := []byte("%PDF-1.4 test")

	body, contentType := pdfForm(t, map[string]string{"type": "pdf"}, "file", "paper.pdf", payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/content", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	var content struct {
		ID       string          `json:"id"`
		Type     string          `json:"type"`
		Title    string          `json:"title"`
		Metadata json.RawMessage `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &content))
	require.Equal(t, "pdf", content.Type)
	require.Equal(t, "paper", content.Title)

	var meta struct {
		FileURL   string `json:"file_url"`
		PageCount int    `json:"page_count"`
	}
	require.NoError(t, json.Unmarshal(content.Metadata, &meta))
	require.Contains(t, meta.FileURL, "/api/v1/files/")
	require.Zero(t, meta.PageCount)

	// the raw upload endpoint returns a file reference without creating content
	body, contentType = pdfForm(t, nil, "file", "other.pdf", payload)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/upload/pdf", body)
	req.Header.Set("Content-Type", contentType)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	var upload struct {
		FileName string `json:"file_name"`
		FileURL  string `json:"file_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &upload))
	require.NotEmpty(t, upload.FileName)

	// stored files are served back through the files endpoint
	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/"+upload.FileName, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, payload, resp.Body.Bytes())
}

func TestExportEndpoint(t *testing.T) {
	router := setupRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/api/v1/content", map[string]interface{}{
		"type": "article", "url": "https://example.com/a", "title": "Deep Work",
	})
	var content struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &content))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/"+content.ID+"/export?format=markdown", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Header().Get("Content-Disposition"), `filename="deep-work.md"`)
	require.Contains(t, resp.Body.String(), "# Deep Work")
}
