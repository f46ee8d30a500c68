package scene

import "fmt"

// WarningKind classifies non-fatal problems. Operations that hit one return
// their input unchanged (or continue past the affected node) and report the
// warning instead of failing.
type WarningKind int

const (
	NotFound WarningKind = iota
	MalformedSource
	UnresolvedReference
)

func (k WarningKind) String() string {
	switch k {
	case MalformedSource:
		return "malformed-source"
	case UnresolvedReference:
		return "unresolved-reference"
	default:
		return "not-found"
	}
}

// Warning is a non-fatal diagnostic attached to an operation result.
type Warning struct {
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}

// Warnf builds a warning with a formatted detail message.
func Warnf(kind WarningKind, format string, args ...any) Warning {
	return Warning{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
