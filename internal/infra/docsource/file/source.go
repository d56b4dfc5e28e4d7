package file

import (
	"context"
	"fmt"
	"os"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

// Source reads the Q&A document from local disk, for development and tests.
type Source struct {
	path string
}

// NewSource builds a file backed source.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// FetchText implements qa.DocumentSource.
func (s *Source) FetchText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read document file: %w", err)
	}
	return string(data), nil
}

var _ qa.DocumentSource = (*Source)(nil)
