package config

import (
	"fmt"
	"strings"
)

// ParserError is returned when parsing config fails, carrying the offending key and value.
type ParserError struct {
	Message string
	Key     string
	Value   any
}

func (e *ParserError) Error() string {
	parts := []string{e.Message}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key='%s'", e.Key))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value='%v'", e.Value))
	}
	if len(parts) == 1 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(parts[1:], " | ")
}

func parserError(message, key string, value any) *ParserError {
	return &ParserError{Message: message, Key: key, Value: value}
}
