// internal/logsink/entry.go
package logsink

import (
	"fmt"
	"time"
)

// Kind is the severity tag of one log line.
type Kind uint8

const (
	// PlainInfo is printed without any severity prefix (separators, raw tool output).
	PlainInfo Kind = iota
	Info
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case PlainInfo:
		return "plain"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Entry is one tagged log line.
type Entry struct {
	Kind Kind
	Text string
	At   time.Time
}

func newEntry(k Kind, text string) Entry {
	return Entry{Kind: k, Text: text, At: time.Now()}
}

func NewPlain(text string) Entry { return newEntry(PlainInfo, text) }

func NewInfo(text string) Entry { return newEntry(Info, text) }

func NewWarning(text string) Entry { return newEntry(Warning, text) }

func NewError(text string) Entry { return newEntry(Error, text) }

// Infof, Warningf and Errorf format like fmt.Sprintf.
func Infof(format string, args ...any) Entry {
	return newEntry(Info, fmt.Sprintf(format, args...))
}

func Warningf(format string, args ...any) Entry {
	return newEntry(Warning, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) Entry {
	return newEntry(Error, fmt.Sprintf(format, args...))
}
