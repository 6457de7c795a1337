package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies failures of the record store and rules.
type ErrorKind int

const (
	KindProbeFailure ErrorKind = iota + 1
	KindRemoteFailure
	KindLocalNotFound
	KindValidation
	KindStorageFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindProbeFailure:
		return "probe failure"
	case KindRemoteFailure:
		return "remote operation failure"
	case KindLocalNotFound:
		return "not found"
	case KindValidation:
		return "validation failure"
	case KindStorageFailure:
		return "local storage failure"
	default:
		return "unknown"
	}
}

// Error is the tagged error returned across the store, remote client and rules.
type Error struct {
	Kind   ErrorKind
	Op     string
	ID     int
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.ID != 0 {
		fmt.Fprintf(&b, " (id %d)", e.ID)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i == 0 {
				b.WriteString(": ")
			} else {
				b.WriteString("; ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(e.Fields[k])
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
