package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	multiverseIDPattern = regexp.MustCompile(`multiverseid=(\d+)`)
	setInfoPattern      = regexp.MustCompile(`.*set=([^&]*).*rarity=([^&]*)`)
	setAnnotation       = regexp.MustCompile(` \([^)]*\)`)
)

// ParseMultiverseID reads the multiverseid query parameter out of a card
// link. The last occurrence wins.
func ParseMultiverseID(href string) (int, error) {
	if strings.TrimSpace(href) == "" {
		return 0, ErrMissingReference
	}

	matches := multiverseIDPattern.FindAllStringSubmatch(href, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedReference, href)
	}

	id, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedReference, href, err)
	}

	return id, nil
}

// rarityFromSource returns the value of the rarity parameter of an icon source.
func rarityFromSource(src string) string {
	idx := strings.LastIndex(src, "rarity=")
	if idx < 0 {
		return ""
	}
	value := src[idx+len("rarity="):]
	if amp := strings.Index(value, "&"); amp >= 0 {
		value = value[:amp]
	}
	return value
}

// setInfoFromSource extracts the set code and rarity from a set symbol source.
func setInfoFromSource(src string) (setCode, rarity string, err error) {
	matches := setInfoPattern.FindStringSubmatch(src)
	if len(matches) < 3 {
		return "", "", fmt.Errorf("%w: set symbol %q", ErrMalformedReference, src)
	}
	return matches[1], matches[2], nil
}

// stripSetAnnotation removes a parenthetical such as " (Rare)" from a set name.
func stripSetAnnotation(alt string) string {
	loc := setAnnotation.FindStringIndex(alt)
	if loc == nil {
		return alt
	}
	return alt[:loc[0]] + alt[loc[1]:]
}
