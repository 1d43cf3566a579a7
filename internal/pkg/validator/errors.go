package validator

import (
	"fmt"
	"strings"
)

// ValidationError lists failed rule messages per field key.
type ValidationError struct {
	Errors map[string][]string
	keys   []string
}

func (e *ValidationError) add(key, msg string) {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}
	if _, ok := e.Errors[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.Errors[key] = append(e.Errors[key], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.Errors) == 0
}

// Keys returns the failing field keys in the order they failed.
func (e *ValidationError) Keys() []string {
	return append([]string(nil), e.keys...)
}

// First returns the first message for key, or "".
func (e *ValidationError) First(key string) string {
	if msgs := e.Errors[key]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e *ValidationError) Error() string {
	if len(e.keys) == 0 {
		return "validation failed"
	}
	var total int
	for _, msgs := range e.Errors {
		total += len(msgs)
	}
	first := e.First(e.keys[0])
	if total == 1 {
		return first
	}
	return fmt.Sprintf("%s (and %d more %s)", strings.TrimSuffix(first, "."), total-1, plural(total-1))
}

func plural(n int) string {
	if n == 1 {
		return "error"
	}
	return "errors"
}
