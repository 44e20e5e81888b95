package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ChatResponse carries either an answer with optional sources or an
// application error reported by the backend.
type ChatResponse struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

// Source is a document chunk cited by an answer. ID is the dedup key.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts ids encoded as strings or numbers.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Name = raw.Name
	s.ID = ""
	trimmed := bytes.TrimSpace(raw.ID)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &s.ID)
	}
	s.ID = string(trimmed)
	return nil
}

// UploadMeta is the /upload-meta document registry snapshot.
type UploadMeta struct {
	Count int        `json:"count"`
	Files []FileMeta `json:"files"`
}

type FileMeta struct {
	Name       string    `json:"name"`
	UploadedAt Timestamp `json:"uploaded_at"`
}

// Timestamp decodes ISO-8601 values with or without a zone. Unparseable
// values decode to the zero time instead of failing the whole listing.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		t.Time = time.Time{}
		return nil
	}
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// StatusError is a non-2xx reply. Body holds the server's error text.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend error: %s", e.Status)
	}
	return fmt.Sprintf("backend error: %s (%s)", e.Status, e.Body)
}
