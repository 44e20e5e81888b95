package inputs

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Payload is a fully buffered multipart/form-data body.
type Payload struct {
	Body        []byte
	ContentType string
	Boundary    string
	Count       int
}

// BuildPayload writes every valid group as file_type_<id> plus one of
// file_<id>, url_<id> or pasted_<id>. Invalid groups are skipped; when none
// is valid ErrNoValidInput is returned and nothing should be sent.
func BuildPayload(groups []Group) (*Payload, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	count := 0
	for _, g := range groups {
		if !g.Valid() {
			continue
		}
		if err := writer.WriteField(fmt.Sprintf("file_type_%d", g.ID), string(g.Type)); err != nil {
			return nil, err
		}
		var err error
		switch g.Type {
		case SourceLink:
			err = writer.WriteField(fmt.Sprintf("url_%d", g.ID), g.URL)
		case SourcePasted:
			err = writer.WriteField(fmt.Sprintf("pasted_%d", g.ID), g.Pasted)
		default:
			err = writeFilePart(writer, fmt.Sprintf("file_%d", g.ID), g.FilePath)
		}
		if err != nil {
			return nil, err
		}
		count++
	}
	if count == 0 {
		return nil, ErrNoValidInput
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return &Payload{
		Body:        buf.Bytes(),
		ContentType: writer.FormDataContentType(),
		Boundary:    writer.Boundary(),
		Count:       count,
	}, nil
}

func writeFilePart(writer *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()
	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}
