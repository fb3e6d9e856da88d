package utils

import (
	"bufio"
	"strings"
)

/*
ReadSSE reads one line of a server-sent event stream and returns the payload
of a "data:" field. Comments, blank lines and other fields yield "".
*/
func ReadSSE(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	line = strings.TrimSpace(line)

	if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, "data:") {
		return "", err
	}

	return strings.TrimSpace(strings.TrimPrefix(line, "data:")), err
}

// TrimTrailingSlash removes every trailing "/".
func TrimTrailingSlash(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

// EnsureTrailingSlash returns s with exactly one trailing "/".
func EnsureTrailingSlash(s string) string {
	return TrimTrailingSlash(s) + "/"
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
