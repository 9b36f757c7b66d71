package config

import (
	"errors"
	"strings"
)

var errMultiStringSetEmptyValue = errors.New("value cannot be empty")

const defaultSeparator = ","

// MultiStringFlag implements the flag.Value interface and allows a string flag
// to be specified multiple times on the command line, each value possibly
// holding several separated entries.
//
// e.g.: -listen-http 127.0.0.1:80 -listen-http [::1]:80,127.0.0.1:8080
type MultiStringFlag struct {
	value     []string
	separator string
}

// String returns the values joined with the separator
func (s *MultiStringFlag) String() string {
	return strings.Join(s.value, s.sep())
}

// Set appends value
func (s *MultiStringFlag) Set(value string) error {
	if value == "" {
		return errMultiStringSetEmptyValue
	}

	s.value = append(s.value, value)
	return nil
}

// Split returns every entry of every value, with blanks dropped
func (s *MultiStringFlag) Split() []string {
	var result []string

	for _, str := range s.value {
		for _, entry := range strings.Split(str, s.sep()) {
			if entry = strings.TrimSpace(entry); entry != "" {
				result = append(result, entry)
			}
		}
	}

	return result
}

func (s *MultiStringFlag) sep() string {
	if s.separator == "" {
		return defaultSeparator
	}

	return s.separator
}
