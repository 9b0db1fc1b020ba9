// Package util has small helpers shared by the commands and the
// platform code.
package util

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"deedles.dev/phoc/geom"
)

// Flag registers value with the default flag set and returns it.
func Flag[T flag.Value](name string, value T, usage string) T {
	flag.Var(value, name, usage)
	return value
}

type stringsFlag []string

func (s stringsFlag) String() string {
	return strings.Join(s, ",")
}

// Set splits v on commas. Blank entries are dropped.
func (s *stringsFlag) Set(v string) error {
	*s = (*s)[:0]
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// StringsFlag defines a flag holding a comma-separated list.
func StringsFlag(name string, value []string, usage string) *[]string {
	return (*[]string)(Flag(name, (*stringsFlag)(&value), usage))
}

type sizeFlag geom.Point[int]

func (s sizeFlag) String() string {
	if geom.Point[int](s).IsZero() {
		return ""
	}
	return fmt.Sprintf("%dx%d", s.X, s.Y)
}

func (s *sizeFlag) Set(v string) error {
	size, err := ParseSize(v)
	if err != nil {
		return err
	}
	*s = sizeFlag(size)
	return nil
}

// SizeFlag defines a flag holding a size written as WxH. The size is
// zero if the flag isn't given.
func SizeFlag(name string, usage string) *geom.Point[int] {
	var size geom.Point[int]
	return (*geom.Point[int])(Flag(name, (*sizeFlag)(&size), usage))
}

// ParseSize parses a size written as WxH.
func ParseSize(s string) (size geom.Point[int], err error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return size, fmt.Errorf("size %q is not of the form WxH", s)
	}
	if _, err := fmt.Sscan(w, &size.X); err != nil {
		return size, fmt.Errorf("size %q: width: %w", s, err)
	}
	if _, err := fmt.Sscan(h, &size.Y); err != nil {
		return size, fmt.Errorf("size %q: height: %w", s, err)
	}
	if (size.X <= 0) || (size.Y <= 0) {
		return geom.Point[int]{}, errors.New("size must be positive")
	}
	return size, nil
}
