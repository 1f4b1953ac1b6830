package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/insight/internal/compiler"
)

// LoadError represents an error that occurred while reading a query or
// dataset file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadQuery reads a raw query from path. Files ending in .cue are evaluated
// as CUE and exported; anything else is decoded as JSON. A path of "-" reads
// JSON from stdin.
func LoadQuery(path string, stdin io.Reader) (any, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) == ".cue" {
		ctx := cuecontext.New()
		raw, err := compiler.ExportValue(ctx.CompileBytes(data, cue.Filename(path)))
		if err != nil {
			return nil, toLoadError(err)
		}
		return raw, nil
	}
	return ParseQuery(data)
}

// ParseQuery decodes an inline JSON query.
func ParseQuery(data []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("malformed query JSON: %v", err)}
	}
	return raw, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading stdin: %v", err)}
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return data, nil
}

// toLoadError keeps CUE position info from a compiler.SourceError.
func toLoadError(err error) *LoadError {
	var srcErr *compiler.SourceError
	if errors.As(err, &srcErr) {
		return &LoadError{Code: ErrCodeReadFailed, Message: srcErr.Message, Pos: srcErr.Pos}
	}
	return &LoadError{Code: ErrCodeReadFailed, Message: err.Error()}
}
