package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ID accepts both JSON numbers and strings; the remote API is not consistent
// about which one it sends.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("library id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

type Library struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	OpenDays  string `json:"openDays"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

// LibraryInput is the body for creating or updating a library.
type LibraryInput struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	OpenDays  string `json:"openDays"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

type Book struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title,omitempty"`
	PublishDate   string `json:"publishDate,omitempty"`
	NumberOfPages int    `json:"numberOfPages,omitempty"`
	ByStatement   string `json:"byStatement,omitempty"`
	CoverURL      string `json:"coverUrl,omitempty"`
	Available     int    `json:"available"`
	CheckedOut    int    `json:"checkedOut"`
	Stock         int    `json:"stock"`
}

type StockInput struct {
	Stock int `json:"stock"`
}

// Checkout is the loan record the remote API returns for both checkout and
// check-in.
type Checkout struct {
	ID      ID     `json:"id"`
	DueDate string `json:"dueDate"`
	Book    Book   `json:"book"`
}

// Due parses DueDate, accepting RFC 3339 timestamps and plain dates.
func (c Checkout) Due() (time.Time, bool) {
	if c.DueDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, c.DueDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

const AllDays = "All"

// JoinOpenDays renders the selected days the way the API stores them:
// "All" wins over any explicit list.
func JoinOpenDays(days []string) string {
	var picked []string
	for _, d := range days {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if strings.EqualFold(d, AllDays) {
			return AllDays
		}
		picked = append(picked, d)
	}
	return strings.Join(picked, ", ")
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidClock reports whether s is a 24h HH:MM time.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// NewLibraryInput validates the form fields and builds the request body.
func NewLibraryInput(name, address string, days []string, openTime, closeTime string) (LibraryInput, error) {
	in := LibraryInput{
		Name:      strings.TrimSpace(name),
		Address:   strings.TrimSpace(address),
		OpenDays:  JoinOpenDays(days),
		OpenTime:  strings.TrimSpace(openTime),
		CloseTime: strings.TrimSpace(closeTime),
	}
	switch {
	case in.Name == "":
		return LibraryInput{}, fmt.Errorf("%w: name", ErrInvalidInput)
	case in.Address == "":
		return LibraryInput{}, fmt.Errorf("%w: address", ErrInvalidInput)
	case in.OpenDays == "":
		return LibraryInput{}, fmt.Errorf("%w: at least one open day", ErrInvalidInput)
	case in.OpenTime != "" && !ValidClock(in.OpenTime):
		return LibraryInput{}, fmt.Errorf("%w: open time %q", ErrInvalidInput, in.OpenTime)
	case in.CloseTime != "" && !ValidClock(in.CloseTime):
		return LibraryInput{}, fmt.Errorf("%w: close time %q", ErrInvalidInput, in.CloseTime)
	}
	return in, nil
}
