package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
)

// imageTypeByExt maps upload file extensions to MIME types
var imageTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

// multipartForm builds a multipart/form-data body, keeping the first error
type multipartForm struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newMultipartForm() *multipartForm {
	f := &multipartForm{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *multipartForm) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.w.WriteField(name, value)
}

func (f *multipartForm) file(field, filename string, data []byte) {
	if f.err != nil {
		return
	}
	if filename == "" {
		filename = "image"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(filename)))
	h.Set("Content-Type", DetectImageType(filename, data))

	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(data)
}

func (f *multipartForm) close() (io.Reader, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("failed to build multipart body: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	return &f.buf, f.w.FormDataContentType(), nil
}

// DetectImageType guesses the MIME type of an image from its extension, then its content
func DetectImageType(filename string, data []byte) string {
	if ct, ok := imageTypeByExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return http.DetectContentType(data)
}
