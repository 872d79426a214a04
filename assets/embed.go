package assets

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
)

// ExampleConfig contains the commented starter configuration.
//
//go:embed annotator.example.yaml
var ExampleConfig []byte

// WriteExampleConfig writes ExampleConfig to path. An existing file is left
// untouched and reported as an error.
func WriteExampleConfig(path string) error {
	if len(ExampleConfig) == 0 {
		return fmt.Errorf("embedded annotator.example.yaml is empty")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists", path)
		}
		return err
	}
	if _, err := f.Write(ExampleConfig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
