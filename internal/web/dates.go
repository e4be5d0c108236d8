package web

import (
	"fmt"
	"strings"
	"time"
)

const (
	wireDateLayout    = "20060102"
	displayDateLayout = "2006-01-02"
)

// displayDate turns 20240131 into 2024-01-31. Values that are not a
// valid YYYYMMDD date are returned unchanged.
func displayDate(s string) string {
	t, err := time.Parse(wireDateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(displayDateLayout)
}

// wireDate turns 2024-01-31 into 20240131.
func wireDate(s string) (string, error) {
	t, err := time.Parse(displayDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q", s)
	}
	return t.Format(wireDateLayout), nil
}

func today() string {
	return time.Now().Format(displayDateLayout)
}
