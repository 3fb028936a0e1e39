package extraction

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// UploadFile is a file handed to a batch before it is staged.
type UploadFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart wraps the files of a multipart form.
func FromMultipart(headers []*multipart.FileHeader) []UploadFile {
	files := make([]UploadFile, 0, len(headers))
	for _, h := range headers {
		h := h
		files = append(files, UploadFile{
			Name: h.Filename,
			Size: h.Size,
			Open: func() (io.ReadCloser, error) { return h.Open() },
		})
	}
	return files
}

// FromPaths wraps files on disk, named by their base name.
func FromPaths(paths []string) ([]UploadFile, error) {
	files := make([]UploadFile, 0, len(paths))
	for _, p := range paths {
		p := p
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		files = append(files, UploadFile{
			Name: filepath.Base(p),
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) { return os.Open(p) },
		})
	}
	return files, nil
}

// stage copies f into dir under its base name.
func stage(dir string, f UploadFile) (string, int64, error) {
	name := filepath.Base(filepath.Clean("/" + filepath.ToSlash(f.Name)))
	if name == "/" || name == "." {
		return "", 0, fmt.Errorf("invalid file name %q", f.Name)
	}

	src, err := f.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stage upload: %w", err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to stage upload: %w", err)
	}
	return path, n, nil
}
