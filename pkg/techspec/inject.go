// File: pkg/techspec/inject.go
package techspec

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Markers delimit the replaceable region of the host document.
type Markers struct {
	Start string
	End   string
}

// Splice replaces the text between the line after the first Start marker and
// the first End marker with body. Everything before the cut and from the End
// marker onward is kept byte for byte.
func Splice(original, body string, m Markers) (string, error) {
	startIdx := strings.Index(original, m.Start)
	endIdx := strings.Index(original, m.End)
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return "", fmt.Errorf("%w: start %q, end %q", ErrMarkersInvalid, m.Start, m.End)
	}

	cut := strings.IndexByte(original[startIdx:], '\n')
	if cut == -1 {
		cut = startIdx + len(m.Start)
	} else {
		cut += startIdx
	}
	if cut > endIdx {
		return "", fmt.Errorf("%w: end marker shares the start marker line", ErrMarkersInvalid)
	}

	return original[:cut] + "\n\n" + body + "\n\n" + original[endIdx:], nil
}

// InjectFile splices body into the document at docPath. The original bytes are
// copied to backupPath first; if that fails the document is left untouched.
func InjectFile(docPath, backupPath, body string, m Markers, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(docPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, docPath)
		}
		return fmt.Errorf("failed to stat %s: %w", docPath, err)
	}
	original, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", docPath, err)
	}

	updated, err := Splice(string(original), body, m)
	if err != nil {
		return err
	}

	if err := writeToFile(backupPath, original, info.Mode().Perm(), logger); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBackupFailed, backupPath, err)
	}
	if err := writeToFile(docPath, []byte(updated), info.Mode().Perm(), logger); err != nil {
		return fmt.Errorf("failed to write %s: %w", docPath, err)
	}
	return nil
}

// writeToFile writes data to a file and logs the operation.
func writeToFile(path string, data []byte, perm os.FileMode, logger *zap.Logger) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		logger.Error("Failed to write file", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Successfully wrote file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
