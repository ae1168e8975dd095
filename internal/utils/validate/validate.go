package validate

import (
	"path/filepath"
	"strings"

	"github.com/guirluz/rental-backend/internal/utils/errs"
)

var allowedExtensions = map[string]bool{
	".xls":  true,
	".xlsx": true,
}

func ValidateSpreadsheetName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return errs.ErrInvalidFileType
	}

	return nil
}

func ValidateCredentials(username, email, password string) error {
	if strings.TrimSpace(username) == "" ||
		strings.TrimSpace(email) == "" ||
		strings.TrimSpace(password) == "" {
		return errs.ErrEmptyFields
	}

	return nil
}
