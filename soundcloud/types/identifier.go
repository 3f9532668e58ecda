package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedURN = errors.New("malformed urn")

// Identifier addresses a resource either by numeric ID or by URN
// (e.g. "soundcloud:tracks:123"). The zero value is invalid.
type Identifier struct {
	id  int64
	urn string
}

func ID(id int64) Identifier {
	return Identifier{id: id, urn: ""}
}

func URN(urn string) Identifier {
	return Identifier{id: 0, urn: urn}
}

// ParseIdentifier treats all-digit input as a numeric ID and anything else as a URN.
func ParseIdentifier(s string) (Identifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identifier{}, errors.New("empty identifier")
	}

	if id, err := strconv.ParseInt(s, 10, 64); nil == err {
		if id <= 0 {
			return Identifier{}, fmt.Errorf("identifier must be positive, got: %d", id)
		}

		return ID(id), nil
	}

	return URN(s), nil
}

func (i Identifier) IsURN() bool {
	return i.urn != ""
}

func (i Identifier) IsZero() bool {
	return i.urn == "" && i.id == 0
}

func (i Identifier) String() string {
	if i.IsURN() {
		return i.urn
	}

	return strconv.FormatInt(i.id, 10)
}

// NumericID returns the numeric ID, extracting it from the last URN segment
// when needed.
func (i Identifier) NumericID() (int64, error) {
	if !i.IsURN() {
		return i.id, nil
	}

	idx := strings.LastIndexByte(i.urn, ':')
	if idx < 0 || idx == len(i.urn)-1 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedURN, i.urn)
	}

	id, err := strconv.ParseInt(i.urn[idx+1:], 10, 64)
	if nil != err {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedURN, i.urn, err)
	}

	return id, nil
}
