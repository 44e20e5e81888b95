// Package backend talks to the document service: /chat, /upload and
// /upload-meta.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/csheth/docflow/internal/inputs"
	"github.com/csheth/docflow/internal/logger"
)

const (
	chatPath       = "/chat"
	uploadPath     = "/upload"
	uploadMetaPath = "/upload-meta"

	headerRequestID = "X-Request-ID"
	headerSessionID = "X-Session-ID"
)

// Config describes how to reach the backend.
type Config struct {
	BaseURL    string
	SessionID  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		sessionID: cfg.SessionID,
		client:    pickHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}
}

// pickHTTPClient honours a custom client. Without a configured timeout the
// transport default applies and requests are never cut short client side.
func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	return &http.Client{Timeout: timeout}
}

// Chat posts one message. A decoded {error} payload is returned as part of
// the response, not as an error; err is reserved for transport failures.
func (c *Client) Chat(ctx context.Context, message string) (ChatResponse, error) {
	buf, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return ChatResponse{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, chatPath, bytes.NewReader(buf))
	if err != nil {
		return ChatResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return ChatResponse{}, err
	}
	var parsed ChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if status.code >= 400 {
			return ChatResponse{}, &StatusError{Code: status.code, Status: status.text, Body: strings.TrimSpace(string(body))}
		}
		return ChatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	return parsed, nil
}

// Upload sends a multipart payload and returns the server's status text.
func (c *Client) Upload(ctx context.Context, payload *inputs.Payload) (string, error) {
	if payload == nil {
		return "", inputs.ErrNoValidInput
	}
	req, err := c.newRequest(ctx, http.MethodPost, uploadPath, bytes.NewReader(payload.Body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", payload.ContentType)

	status, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(body))
	if status.code < 200 || status.code >= 300 {
		return "", &StatusError{Code: status.code, Status: status.text, Body: text}
	}
	return text, nil
}

// UploadMeta lists previously uploaded files.
func (c *Client) UploadMeta(ctx context.Context) (UploadMeta, error) {
	req, err := c.newRequest(ctx, http.MethodGet, uploadMetaPath, nil)
	if err != nil {
		return UploadMeta{}, err
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return UploadMeta{}, err
	}
	if status.code >= 400 {
		return UploadMeta{}, &StatusError{Code: status.code, Status: status.text, Body: strings.TrimSpace(string(body))}
	}
	var meta UploadMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return UploadMeta{}, fmt.Errorf("decode upload metadata: %w", err)
	}
	return meta, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headerRequestID, uuid.NewString())
	if c.sessionID != "" {
		req.Header.Set(headerSessionID, c.sessionID)
	}
	return req, nil
}

type responseStatus struct {
	code int
	text string
}

func (c *Client) do(req *http.Request) (responseStatus, []byte, error) {
	started := time.Now()
	entry := logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"path":       req.URL.Path,
		"request_id": req.Header.Get(headerRequestID),
	})
	resp, err := c.client.Do(req)
	if err != nil {
		entry.WithError(err).Warn("backend request failed")
		return responseStatus{}, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		entry.WithError(err).Warn("backend body read failed")
		return responseStatus{}, nil, err
	}
	entry.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(started).String(),
	}).Debug("backend request finished")
	return responseStatus{code: resp.StatusCode, text: resp.Status}, body, nil
}
