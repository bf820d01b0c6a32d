package domain

import (
	"fmt"
	"strings"
)

// QName is a namespace URI plus local element or attribute name.
// Two elements are the same kind iff their QNames are equal.
type QName struct {
	Space string
	Local string
}

// Name builds a QName.
func Name(space, local string) QName {
	return QName{Space: space, Local: local}
}

// String returns the QName in {namespace}local form, or just local if there is no namespace.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// IsZero returns true if the QName is the zero value.
func (q QName) IsZero() bool {
	return q.Space == "" && q.Local == ""
}

// ParseQName parses the {namespace}local form produced by String.
// A bare local name yields an empty namespace.
func ParseQName(s string) (QName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return QName{}, fmt.Errorf("%w: empty qualified name", ErrInvalidInput)
	}
	if !strings.HasPrefix(s, "{") {
		if strings.ContainsAny(s, "{}") {
			return QName{}, fmt.Errorf("%w: invalid qualified name %q", ErrInvalidInput, s)
		}
		return QName{Local: s}, nil
	}
	space, local, ok := strings.Cut(s[1:], "}")
	if !ok || local == "" || strings.ContainsAny(local, "{}") {
		return QName{}, fmt.Errorf("%w: invalid qualified name %q", ErrInvalidInput, s)
	}
	return QName{Space: space, Local: local}, nil
}
