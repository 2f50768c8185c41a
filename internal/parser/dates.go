package parser

import (
	"fmt"
	"strings"
	"time"
)

const (
	rulingDateLayout = "1/2/2006"
	isoDateLayout    = "2006-01-02"
)

// FormatRulingDate converts a MM/DD/YYYY ruling date to YYYY-MM-DD.
func FormatRulingDate(raw string) (string, error) {
	t, err := time.Parse(rulingDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid ruling date %q: %w", raw, err)
	}
	return t.Format(isoDateLayout), nil
}
