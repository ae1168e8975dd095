package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/guirluz/rental-backend/internal/utils/logger"
	"go.uber.org/zap"
)

// CleanupUploads removes uploaded spreadsheets older than maxAge and returns
// the removed paths.
func CleanupUploads(dir string, maxAge time.Duration) ([]string, error) {
	const funcName = "importer.CleanupUploads"

	matches, err := filepath.Glob(filepath.Join(dir, "*.xls*"))
	if err != nil {
		return nil, fmt.Errorf("glob uploads: %w", err)
	}

	now := time.Now()
	removed := make([]string, 0)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("failed to stat upload",
				zap.String("function", funcName),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}

		if now.Sub(info.ModTime()) < maxAge {
			continue
		}

		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove upload",
				zap.String("function", funcName),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		removed = append(removed, path)
	}

	logger.Info("upload cleanup finished",
		zap.String("function", funcName),
		zap.Int("removed", len(removed)),
	)

	return removed, nil
}
