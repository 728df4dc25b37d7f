package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Upload is a file forwarded to the backend as one multipart part.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// formField keeps field order stable on the wire.
type formField struct {
	name  string
	value string
}

type form struct {
	fields []formField
	files  map[string]*Upload
}

func (f *form) set(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

func (f *form) attach(name string, u *Upload) {
	if u == nil || u.Content == nil {
		return
	}
	if f.files == nil {
		f.files = map[string]*Upload{}
	}
	f.files[name] = u
}

func (f *form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", fld.name, err)
		}
	}
	for name, u := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(name), quoteEscaper.Replace(u.Filename)))
		ct := u.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := io.Copy(part, u.Content); err != nil {
			return nil, "", fmt.Errorf("copy part %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) sendForm(ctx context.Context, method, target string, f *form, out interface{}) error {
	body, contentType, err := f.encode()
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", method, target, err)
	}
	raw, err := c.do(ctx, method, target, body, contentType)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}
