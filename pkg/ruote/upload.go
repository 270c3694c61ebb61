package ruote

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// upload posts multipart/form-data: the named local file streams as the file
// part, the remaining payload fields ride along as form fields. The request
// body is produced through a pipe so the file is never buffered whole.
func (c *Client) upload(ctx context.Context, rawURL, field, path string, payload map[string]any) (*Response, error) {
	if err := checkUploadSource(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("upload source: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("upload source: %w", err)
	}

	bar := uploadBar(st.Size(), filepath.Base(path))

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeParts(mw, f, bar, field, filepath.Base(path), payload)
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, rawURL, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req)
	if bar != nil {
		_ = bar.Finish()
	}
	return resp, err
}

// writeParts emits the form fields in sorted order, then streams the file
// part, and finishes the multipart body.
func writeParts(mw *multipart.Writer, f *os.File, bar *progressbar.ProgressBar, field, filename string, payload map[string]any) error {
	names := make([]string, 0, len(payload))
	for name := range payload {
		if name != field {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := mw.WriteField(name, fmt.Sprint(payload[name])); err != nil {
			return fmt.Errorf("write form field %s: %w", name, err)
		}
	}

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	var src io.Reader = f
	if bar != nil {
		src = io.TeeReader(f, bar)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("stream %s: %w", filename, err)
	}
	return mw.Close()
}

// uploadBar returns a byte progress bar on stderr, or nil when stderr is not
// a terminal.
func uploadBar(size int64, name string) *progressbar.ProgressBar {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return progressbar.DefaultBytes(size, "uploading "+name)
}

// checkUploadSource rejects unusable upload paths before any request goes
// out.
func checkUploadSource(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("upload source: %w", err)
	}
	if st.IsDir() {
		return fmt.Errorf("upload source %s is a directory", path)
	}
	return nil
}
