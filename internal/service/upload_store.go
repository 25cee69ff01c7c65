package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-docchat-be/internal/constant"

	"github.com/google/uuid"
)

// UploadStore writes attachment bytes under the uploads root. Filenames get a
// random salt so two uploads with the same name never collide.
type UploadStore struct {
	Root string
}

func NewUploadStore(root string) *UploadStore {
	return &UploadStore{Root: root}
}

func (s *UploadStore) Save(name string, data []byte) (string, error) {
	salt := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	base := filepath.Base(name)
	relPath := filepath.Join(constant.MessageUploadPrefix, fmt.Sprintf("%s_%s", salt, base))

	absPath := filepath.Join(s.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return filepath.ToSlash(relPath), nil
}
