// Package storage keeps uploaded vouchers on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrBadPath = errors.New("bad object path")

// LocalStorage is an on-disk object store. Objects live under RootDir
// and are published under PublicBaseURL (served by the HTTP router).
type LocalStorage struct {
	RootDir       string
	PublicBaseURL string
}

func NewLocalStorage(rootDir, publicBaseURL string) *LocalStorage {
	return &LocalStorage{
		RootDir:       filepath.Clean(rootDir),
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// ObjectPath builds "<orderID>/<fileName>" keeping only the base name of the upload.
func ObjectPath(orderID, fileName string) string {
	name := strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "voucher"
	}
	return orderID + "/" + name
}

func (s *LocalStorage) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(objectPath, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", ErrBadPath
	}
	return filepath.Join(s.RootDir, filepath.FromSlash(clean)), nil
}

// PutObject writes the file, creating the order directory.
func (s *LocalStorage) PutObject(objectPath string, data []byte) error {
	abs, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create voucher dir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write voucher: %w", err)
	}
	return nil
}

func (s *LocalStorage) PublicURL(objectPath string) string {
	return s.PublicBaseURL + "/" + strings.TrimPrefix(objectPath, "/")
}
