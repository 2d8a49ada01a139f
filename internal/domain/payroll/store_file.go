package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cryptoutil "ngpayroll/internal/platform/crypto"
)

// FileStore keeps the submission collection in a single JSON document,
// sealed with the data encryption key when one is configured.
type FileStore struct {
	Path   string
	crypto *cryptoutil.Service
}

func NewFileStore(path string, crypto *cryptoutil.Service) *FileStore {
	return &FileStore{Path: path, crypto: crypto}
}

func (f *FileStore) List(_ context.Context) ([]Submission, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if f.crypto != nil && f.crypto.Configured() {
		raw, err = f.crypto.Decrypt(raw)
		if err != nil {
			return nil, fmt.Errorf("decrypt %s: %w", f.Path, err)
		}
	}

	var submissions []Submission
	if err := json.Unmarshal(raw, &submissions); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return submissions, nil
}

func (f *FileStore) Save(_ context.Context, submissions []Submission) error {
	if submissions == nil {
		submissions = []Submission{}
	}
	payload, err := json.MarshalIndent(submissions, "", "  ")
	if err != nil {
		return err
	}
	if f.crypto != nil && f.crypto.Configured() {
		payload, err = f.crypto.Encrypt(payload)
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, f.Path)
}
