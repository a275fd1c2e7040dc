// internal/image/details.go
package image

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// DetailsFile is the board description file exposed on the probe's drive.
const DetailsFile = "DETAILS.TXT"

// ErrNoSHA is returned when DETAILS.TXT carries no "Git SHA" line.
var ErrNoSHA = errors.New("no SHA found in file")

var shaLine = regexp.MustCompile(`(?m)Git SHA: ([a-zA-Z0-9]*)$`)

// ReadGitSHA returns the full "Git SHA: ..." line from DETAILS.TXT in dir.
func ReadGitSHA(dir string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(dir, DetailsFile))
	if err != nil {
		return "", fmt.Errorf("details: %w", err)
	}
	// DAPLink writes CRLF
	m := shaLine.Find(stripCR(raw))
	if m == nil {
		return "", ErrNoSHA
	}
	return string(m), nil
}

func stripCR(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c != '\r' {
			out = append(out, c)
		}
	}
	return out
}
