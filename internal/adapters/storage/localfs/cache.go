package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const imageExt = ".png"

// ImageCache stores generated images as <root>/<dir>/<key>.png.
type ImageCache struct {
	root string
}

func New(root string) *ImageCache {
	return &ImageCache{root: root}
}

func (c *ImageCache) Root() string { return c.root }

func (c *ImageCache) path(dir, key string) (string, error) {
	if key == "" || dir == "" {
		return "", errors.New("empty cache path component")
	}
	if strings.ContainsAny(dir+key, `/\.`) {
		return "", fmt.Errorf("invalid cache path component %q/%q", dir, key)
	}
	return filepath.Join(c.root, dir, key+imageExt), nil
}

func (c *ImageCache) Load(dir, key string) ([]byte, bool, error) {
	p, err := c.path(dir, key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Store writes the image once; an existing file is left alone. Concurrent
// writers for the same key each write a temp file and rename it into place,
// so the last rename wins and readers never see a partial file.
func (c *ImageCache) Store(dir, key string, data []byte) error {
	p, err := c.path(dir, key)
	if err != nil {
		return err
	}
	// ya existe: no pisar
	if _, err := os.Stat(p); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	// escribir en temporal y renombrar
	tmp, err := os.CreateTemp(filepath.Dir(p), key+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}
