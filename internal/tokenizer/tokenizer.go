// Package tokenizer estimates and counts tokens for assembled documents.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// charactersPerToken is the divisor for the heuristic estimate. English
	// prose and source code average roughly four characters per token.
	charactersPerToken = 4

	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// EstimateTokens returns a rough token estimate for text: the character count
// divided by four. This is a cheap heuristic for display purposes, not the
// output of a real tokenizer.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / charactersPerToken
}

// Counter computes exact token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

// NewCounter returns a Counter for the requested model, falling back to the
// default encoding when the model is unknown to tiktoken. The second return
// value names the model or encoding actually in use.
func NewCounter(counterConfig Config) (Counter, string, error) {
	model := strings.TrimSpace(counterConfig.Model)
	if model == "" {
		model = defaultModel
	}
	lowerModel := strings.ToLower(model)

	modelEncoding, encodingError := tiktoken.EncodingForModel(lowerModel)
	if encodingError == nil && modelEncoding != nil {
		return encodingCounter{encoding: modelEncoding, name: lowerModel}, lowerModel, nil
	}
	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return encodingCounter{encoding: fallbackEncoding, name: defaultEncodingName}, defaultEncodingName, nil
}

type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encodingCounter) Name() string {
	return counter.name
}

func (counter encodingCounter) CountString(input string) (int, error) {
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

var _ Counter = encodingCounter{}
