package output

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const filePerm os.FileMode = 0o644

// JSONFileWriter writes the symbol list as an indented JSON array, replacing
// any previous content of the file
type JSONFileWriter struct {
	fs   afero.Fs
	path string
}

// NewJSONFileWriter creates a writer on the OS filesystem
func NewJSONFileWriter(path string) *JSONFileWriter {
	return NewJSONFileWriterWithFs(afero.NewOsFs(), path)
}

// NewJSONFileWriterWithFs creates a writer on the given filesystem
func NewJSONFileWriterWithFs(fs afero.Fs, path string) *JSONFileWriter {
	return &JSONFileWriter{fs: fs, path: path}
}

// Path returns the destination file
func (w *JSONFileWriter) Path() string {
	return w.path
}

// Write serializes symbols with two-space indentation. An empty list is written as [].
func (w *JSONFileWriter) Write(symbols []string) error {
	if symbols == nil {
		symbols = []string{}
	}

	data, err := json.MarshalIndent(symbols, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrWrite, err)
	}

	if err := afero.WriteFile(w.fs, w.path, data, filePerm); err != nil {
		return fmt.Errorf("%w to %s: %w", ErrWrite, w.path, err)
	}

	return nil
}
