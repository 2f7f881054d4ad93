// Package clipboard provides defensive access to the system clipboard. A
// copy attempt never fails the caller: every outcome is reported as a
// (success, message) pair suitable for direct display.
package clipboard

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

const (
	messageNothingToCopy    = "Nothing to copy."
	messageCopied           = "Copied to clipboard!"
	messageMissingUtilities = "Clipboard failed: missing system dependency (install xclip or xsel)."
	messageGenericFailure   = "Clipboard error occurred."
)

var errUnsupportedPlatform = errors.New("no clipboard utilities available on this platform")

// Copier copies textual data to the system clipboard.
type Copier interface {
	CopyText(text string) (bool, string)
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	logger    *zap.Logger
	writeText func(text string) error
}

// NewService constructs a clipboard service backed by the system clipboard.
func NewService(logger *zap.Logger) *Service {
	return NewServiceWithWriter(logger, systemWriteText)
}

// NewServiceWithWriter constructs a clipboard service with an injected write
// function, used by tests and alternative clipboard backends.
func NewServiceWithWriter(logger *zap.Logger, writeText func(text string) error) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, writeText: writeText}
}

// systemWriteText writes through github.com/atotto/clipboard, surfacing the
// unsupported-platform case as an ordinary error.
func systemWriteText(text string) error {
	if clipboard.Unsupported {
		return errUnsupportedPlatform
	}
	return clipboard.WriteAll(text)
}

// CopyText writes text to the system clipboard. Empty input is the defined
// failure "Nothing to copy."; a missing clipboard utility (common on minimal
// Linux installations) is distinguished from generic failures.
func (service *Service) CopyText(text string) (bool, string) {
	if text == "" {
		service.logger.Warn("clipboard copy aborted: input text is empty")
		return false, messageNothingToCopy
	}
	if writeError := service.writeText(text); writeError != nil {
		if isMissingUtilityError(writeError) {
			service.logger.Error("clipboard utilities unavailable", zap.Error(writeError))
			return false, messageMissingUtilities
		}
		service.logger.Error("clipboard copy failed", zap.Error(writeError))
		return false, messageGenericFailure
	}
	service.logger.Info("text copied to clipboard")
	return true, messageCopied
}

// isMissingUtilityError reports whether the write failure indicates that no
// clipboard helper binary is installed.
func isMissingUtilityError(writeError error) bool {
	if errors.Is(writeError, errUnsupportedPlatform) {
		return true
	}
	message := strings.ToLower(writeError.Error())
	return strings.Contains(message, "no clipboard utilities") ||
		strings.Contains(message, "executable file not found")
}

var _ Copier = (*Service)(nil)
