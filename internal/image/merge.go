// internal/image/merge.go
package image

import (
	"fmt"
	"io"
	"os"
)

// MergeError reports which stage of a merge failed.
type MergeError struct {
	Stage string
	Path  string
	Err   error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge: %s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// Merge writes bytes(first) followed by bytes(second) into result.
//
// result is truncated first, so merging twice yields identical output.
// No hex record parsing happens: the two images are expected to be a
// matching prefix/suffix pair. On failure result may hold partial data.
func Merge(first, second, result string) error {
	out, err := os.OpenFile(result, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &MergeError{Stage: "create", Path: result, Err: err}
	}

	if err := appendFile(out, first); err != nil {
		_ = out.Close()
		return err
	}
	if err := appendFile(out, second); err != nil {
		_ = out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return &MergeError{Stage: "close", Path: result, Err: err}
	}
	return nil
}

func appendFile(dst io.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return &MergeError{Stage: "open", Path: path, Err: err}
	}
	defer in.Close()

	if _, err := io.Copy(dst, in); err != nil {
		return &MergeError{Stage: "copy", Path: path, Err: err}
	}
	return nil
}
