package servicer

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/twentyfive/pkg/domain"
)

var (
	// DefaultMaxItemSize is 512 bytes.
	DefaultMaxItemSize = 512
	// EnvMaxItemSize is the environment variable to override the default
	EnvMaxItemSize = "TWENTYFIVE_MAX_ITEM_SIZE"
)

var (
	ErrItemTooLarge = errors.New("item exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("item contains invalid UTF-8 sequences")
	ErrInvalidItem  = errors.New("item contains control characters")
)

// SanitizeItem checks an item value before it reaches a handler. The value is
// never rewritten: it is either accepted verbatim or rejected.
func SanitizeItem(item string) (string, error) {
	// Reject rather than truncate so equality stays predictable.
	limit := maxItemSize()
	if len(item) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrItemTooLarge, len(item), limit)
	}

	if !utf8.ValidString(item) {
		return "", ErrInvalidUTF8
	}

	// Tab, newline and carriage return are whitespace; ESC, NUL, BEL and the
	// rest would corrupt logs and terminals.
	for i, r := range item {
		if unicode.IsControl(r) && !isSafeControl(r) {
			return "", fmt.Errorf("%w: %U at byte %d", ErrInvalidItem, r, i)
		}
	}
	return item, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// sanitizeRequest applies SanitizeItem to the item of a request, if any.
func sanitizeRequest(req any) (any, error) {
	var err error
	switch r := req.(type) {
	case domain.AddRequest:
		r.Item, err = SanitizeItem(r.Item)
		return r, err
	case domain.MoveRequest:
		r.Item, err = SanitizeItem(r.Item)
		return r, err
	case domain.DeleteRequest:
		r.Item, err = SanitizeItem(r.Item)
		return r, err
	}
	return req, nil
}

func maxItemSize() int {
	if val := os.Getenv(EnvMaxItemSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxItemSize
}
