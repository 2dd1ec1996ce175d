package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// Protocol values as the manager names them in port_type.
const (
	ProtocolTCP = "tcp"
	ProtocolUDP = "udp"
)

var (
	ErrEmptyBound       = errors.New("port bound is empty")
	ErrInvalidBound     = errors.New("port range start and end must be numbers")
	ErrBoundOutOfRange  = errors.New("port must be between 1 and 65535")
	ErrStartAfterEnd    = errors.New("the end of the port range can't be below its start")
	ErrRangeOverlap     = errors.New("new port range overlaps with an existing one")
	ErrInvalidProtocol  = errors.New("protocol must be tcp or udp")
	ErrEmptyRangeString = errors.New("port range is empty")
	ErrRangeFormat      = errors.New(`use format start-end/proto or "start-end proto"`)
)

// Range is an inclusive span of ports for one protocol.
type Range struct {
	Start    int
	End      int
	Protocol string
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d/%s", r.Start, r.Protocol)
	}
	return fmt.Sprintf("%d-%d/%s", r.Start, r.End, r.Protocol)
}

// RangeError describes why a candidate range was rejected.
type RangeError struct {
	Field    string
	Value    string
	Conflict *Range
	Err      error
}

func (e *RangeError) Error() string {
	switch {
	case e.Conflict != nil:
		return fmt.Sprintf("%s (%s)", e.Err.Error(), e.Conflict.String())
	case e.Field != "":
		return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Err.Error())
	default:
		return e.Err.Error()
	}
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// ParseBound parses one port bound as entered by the user.
func ParseBound(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrEmptyBound
	}
	// Only plain digits; Atoi alone would also take a sign.
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return 0, ErrInvalidBound
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, ErrBoundOutOfRange
	}
	if n < MinPort || n > MaxPort {
		return 0, ErrBoundOutOfRange
	}
	return n, nil
}

// ParseProtocol normalizes a protocol name. The one-letter forms used in
// manager port range specs (T, U) are accepted.
func ParseProtocol(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "tcp", "t":
		return ProtocolTCP, nil
	case "udp", "u":
		return ProtocolUDP, nil
	default:
		return "", ErrInvalidProtocol
	}
}

// NewRange parses and checks a candidate range without looking at any
// existing ranges.
func NewRange(start, end, protocol string) (Range, error) {
	s, err := ParseBound(start)
	if err != nil {
		return Range{}, &RangeError{Field: "start", Value: start, Err: err}
	}
	e, err := ParseBound(end)
	if err != nil {
		return Range{}, &RangeError{Field: "end", Value: end, Err: err}
	}
	proto, err := ParseProtocol(protocol)
	if err != nil {
		return Range{}, &RangeError{Field: "protocol", Value: protocol, Err: err}
	}
	if s > e {
		return Range{}, &RangeError{Err: ErrStartAfterEnd}
	}
	return Range{Start: s, End: e, Protocol: proto}, nil
}

// Overlaps reports whether two ranges of the same protocol share any port.
// Touching at a boundary counts as overlapping.
func Overlaps(a, b Range) bool {
	if a.Protocol != b.Protocol {
		return false
	}
	switch {
	case a.Start == b.Start, a.Start == b.End:
		return true
	case a.End == b.Start, a.End == b.End:
		return true
	case a.Start > b.Start && a.Start < b.End:
		return true
	case a.End > b.Start && a.End < b.End:
		return true
	case a.Start < b.Start && a.End > b.End:
		return true
	}
	return false
}

// CheckOverlap returns a *RangeError wrapping ErrRangeOverlap for the first
// existing range the candidate collides with.
func CheckOverlap(candidate Range, existing []Range) error {
	for i := range existing {
		if Overlaps(candidate, existing[i]) {
			conflict := existing[i]
			return &RangeError{Conflict: &conflict, Err: ErrRangeOverlap}
		}
	}
	return nil
}

// ParseRangeString accepts "80/tcp", "1000-2000/udp", "1000-2000 udp" and
// the manager's port range notation "T:1000-2000".
func ParseRangeString(value string) (Range, error) {
	input := strings.TrimSpace(value)
	if input == "" {
		return Range{}, ErrEmptyRangeString
	}

	var span, proto string
	switch {
	case len(input) > 2 && input[1] == ':':
		proto = input[:1]
		span = input[2:]
	case strings.Contains(input, "/"):
		span, proto, _ = strings.Cut(input, "/")
	default:
		fields := strings.Fields(input)
		if len(fields) != 2 {
			return Range{}, ErrRangeFormat
		}
		span, proto = fields[0], fields[1]
	}

	start, end, ok := strings.Cut(span, "-")
	if !ok {
		end = start
	}
	return NewRange(start, end, proto)
}
