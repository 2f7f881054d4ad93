// Package assembler reads selected files and formats their contents into a
// single deterministic Markdown document for prompt injection. Assembly is
// total: every failure mode degrades to an inline placeholder or a silent
// skip, never an error to the caller.
package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ctxstudio/internal/tokenizer"
	"github.com/temirov/ctxstudio/internal/types"
)

const (
	documentTitle    = "# Context Injection\n"
	documentPreamble = "The following codebase context was automatically defined as important for this prompt:\n"

	// HeaderFileName is injected after the preamble when present in the root.
	HeaderFileName = "context_header.md"
	// FooterFileName is injected after the last file block when present in the root.
	FooterFileName = "context_footer.md"

	fileHeadingPrefix  = "## File: "
	defaultLanguageTag = "text"

	defaultReadConcurrency = 8
)

// Builder assembles context documents. A Builder may be reused, but only one
// assembly may run at a time; file reads within one assembly happen on a
// bounded worker group while the document itself is emitted strictly in input
// order.
type Builder struct {
	logger          *zap.Logger
	readConcurrency int
}

// NewBuilder returns a Builder logging through the provided logger.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger, readConcurrency: defaultReadConcurrency}
}

// Build assembles the document for the selected files under rootPath. The
// selected paths are emitted in input order; context_header.md and
// context_footer.md in the root are injected at their documented positions
// and excluded from the per-file loop even when explicitly selected.
func (builder *Builder) Build(rootPath string, selectedFiles []string) types.ContextDocument {
	readResults := builder.readSelectedFiles(selectedFiles)

	documentParts := []string{documentTitle, documentPreamble}

	if headerContent, headerPresent := builder.readDecorator(filepath.Join(rootPath, HeaderFileName)); headerPresent {
		documentParts = append(documentParts, headerContent+"\n")
	}

	for fileIndex, filePath := range selectedFiles {
		baseName := filepath.Base(filePath)
		if baseName == HeaderFileName || baseName == FooterFileName {
			continue
		}
		renderedText := readResults[fileIndex].text()
		if renderedText == "" {
			// Zero-byte files contribute nothing, not even a heading.
			continue
		}
		displayPath := builder.displayPath(filePath, rootPath)
		languageTag := languageTagForFile(filePath)
		documentParts = append(documentParts, fmt.Sprintf("%s%s\n```%s\n%s\n```\n",
			fileHeadingPrefix, displayPath, languageTag, renderedText))
	}

	if footerContent, footerPresent := builder.readDecorator(filepath.Join(rootPath, FooterFileName)); footerPresent {
		documentParts = append(documentParts, "\n"+footerContent)
	}

	documentText := strings.Join(documentParts, "\n")
	return types.ContextDocument{
		Text:              documentText,
		EstimatedTokens:   tokenizer.EstimateTokens(documentText),
		SelectedFileCount: len(selectedFiles),
	}
}

// readSelectedFiles reads every selected file on a bounded worker group,
// preserving input order in the returned slice. Readers never fail; each
// slot holds a tagged result.
func (builder *Builder) readSelectedFiles(selectedFiles []string) []fileReadResult {
	readResults := make([]fileReadResult, len(selectedFiles))
	var readGroup errgroup.Group
	readGroup.SetLimit(builder.readConcurrency)
	for fileIndex, filePath := range selectedFiles {
		fileIndex, filePath := fileIndex, filePath
		readGroup.Go(func() error {
			readResults[fileIndex] = builder.readFile(filePath)
			return nil
		})
	}
	_ = readGroup.Wait()
	return readResults
}

// readDecorator reads a header or footer file. Decorators fail silently: a
// missing file, a directory, a failed read, or content that trims to nothing
// all yield (_, false) and no placeholder ever reaches the document.
func (builder *Builder) readDecorator(decoratorPath string) (string, bool) {
	fileInformation, statError := os.Stat(decoratorPath)
	if statError != nil || fileInformation.IsDir() {
		return "", false
	}
	readResult := builder.readFile(decoratorPath)
	if readResult.failed {
		return "", false
	}
	trimmedContent := strings.TrimSpace(readResult.content)
	if trimmedContent == "" {
		return "", false
	}
	return trimmedContent, true
}

// displayPath renders filePath relative to rootPath with forward slashes.
// A path outside the root falls back to its base name with a diagnostic.
func (builder *Builder) displayPath(filePath string, rootPath string) string {
	relativePath, relativeError := filepath.Rel(rootPath, filePath)
	if relativeError != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(os.PathSeparator)) {
		builder.logger.Error("selected file is outside the root",
			zap.String("file", filePath), zap.String("root", rootPath))
		return filepath.Base(filePath)
	}
	return filepath.ToSlash(relativePath)
}

// languageTagForFile derives the fenced-code-block language tag from the file
// extension: lower-cased, without the leading dot, "text" when the file has
// no extension (dotfiles such as .gitignore count as extensionless).
func languageTagForFile(filePath string) string {
	baseName := filepath.Base(filePath)
	extension := filepath.Ext(baseName)
	if extension == "" || extension == baseName {
		return defaultLanguageTag
	}
	return strings.ToLower(strings.TrimPrefix(extension, "."))
}
