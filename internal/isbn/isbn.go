// Package isbn validates scanned book identifiers.
package isbn

import (
	"errors"
	"strings"
)

var (
	ErrEmpty       = errors.New("isbn is empty")
	ErrNotISBN13   = errors.New("isbn must be 13 digits starting with 978 or 979")
	ErrBadChecksum = errors.New("isbn checksum mismatch")
)

// Normalize strips the separators people type or scanners emit.
func Normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

// Validate reports why code is not a Bookland EAN-13 (ISBN-13).
func Validate(code string) error {
	if code == "" {
		return ErrEmpty
	}
	if len(code) != 13 || !(strings.HasPrefix(code, "978") || strings.HasPrefix(code, "979")) {
		return ErrNotISBN13
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d := code[i]
		if d < '0' || d > '9' {
			return ErrNotISBN13
		}
		w := 1
		if i%2 == 1 {
			w = 3
		}
		sum += int(d-'0') * w
	}
	last := code[12]
	if last < '0' || last > '9' {
		return ErrNotISBN13
	}
	if CheckDigit(sum) != int(last-'0') {
		return ErrBadChecksum
	}
	return nil
}

func ValidISBN13(code string) bool {
	return Validate(code) == nil
}

// CheckDigit turns the weighted sum of the first twelve digits into the
// EAN-13 check digit.
func CheckDigit(weightedSum int) int {
	return (10 - weightedSum%10) % 10
}
