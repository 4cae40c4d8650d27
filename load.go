package xaml

import (
	"fmt"
	"os"
)

// LoadFile loads the markup document at path.
func LoadFile(path string, opts LoadOptions) (root any, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open markup file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close markup file %s: %w", path, closeErr)
		}
	}()

	root, err = Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}
