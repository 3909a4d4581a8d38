package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var roomRe = regexp.MustCompile(`^(?:([A-Za-z][A-Za-z0-9]*)\s*-\s*)?(\d{3,4})$`)

// ParsedRoom holds the structured data parsed from a room number.
type ParsedRoom struct {
	Building string
	Floor    int
	Seq      int
}

// ParseRoomNumber extracts building, floor, and door sequence from a
// room number such as "404", "A-404" or "B2-1203". The last two digits
// are the door sequence, the leading digits the floor.
func ParseRoomNumber(raw string) (ParsedRoom, error) {
	s := strings.TrimSpace(raw)

	matches := roomRe.FindStringSubmatch(s)
	if matches == nil {
		return ParsedRoom{}, fmt.Errorf("unable to parse room number: %q", raw)
	}

	number, err := strconv.Atoi(matches[2])
	if err != nil {
		return ParsedRoom{}, fmt.Errorf("unable to parse room number: %q", raw)
	}

	floor := number / 100
	seq := number % 100
	if floor == 0 {
		return ParsedRoom{}, fmt.Errorf("room number %q has no floor digit", raw)
	}

	return ParsedRoom{
		Building: strings.ToUpper(matches[1]),
		Floor:    floor,
		Seq:      seq,
	}, nil
}
