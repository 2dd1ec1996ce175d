package validation

import (
	"errors"
	"testing"
)

func TestParseBound(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{name: "plain", input: "80", want: 80},
		{name: "whitespace", input: " 443 ", want: 443},
		{name: "lowest", input: "1", want: 1},
		{name: "highest", input: "65535", want: 65535},
		{name: "empty", input: "", wantErr: ErrEmptyBound},
		{name: "letters", input: "http", wantErr: ErrInvalidBound},
		{name: "float", input: "1.5", wantErr: ErrInvalidBound},
		{name: "plus sign", input: "+80", wantErr: ErrInvalidBound},
		{name: "minus sign", input: "-80", wantErr: ErrInvalidBound},
		{name: "huge", input: "99999999999999999999", wantErr: ErrBoundOutOfRange},
		{name: "zero", input: "0", wantErr: ErrBoundOutOfRange},
		{name: "too high", input: "70000", wantErr: ErrBoundOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBound(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseBound(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBound(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseBound(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewRangeRejectsInvertedBounds(t *testing.T) {
	_, err := NewRange("50", "10", "tcp")
	if !errors.Is(err, ErrStartAfterEnd) {
		t.Fatalf("NewRange(50, 10) error = %v, want ErrStartAfterEnd", err)
	}
}

func TestNewRangeReportsField(t *testing.T) {
	_, err := NewRange("1", "x", "tcp")
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error %v is not a *RangeError", err)
	}
	if rangeErr.Field != "end" {
		t.Fatalf("Field = %q, want end", rangeErr.Field)
	}
}

func TestOverlaps(t *testing.T) {
	existing := Range{Start: 10, End: 20, Protocol: ProtocolTCP}
	tests := []struct {
		name      string
		candidate Range
		want      bool
	}{
		{name: "touches end", candidate: Range{Start: 20, End: 30, Protocol: ProtocolTCP}, want: true},
		{name: "touches start", candidate: Range{Start: 1, End: 10, Protocol: ProtocolTCP}, want: true},
		{name: "same start", candidate: Range{Start: 10, End: 12, Protocol: ProtocolTCP}, want: true},
		{name: "same end", candidate: Range{Start: 15, End: 20, Protocol: ProtocolTCP}, want: true},
		{name: "start inside", candidate: Range{Start: 15, End: 25, Protocol: ProtocolTCP}, want: true},
		{name: "end inside", candidate: Range{Start: 5, End: 15, Protocol: ProtocolTCP}, want: true},
		{name: "contains", candidate: Range{Start: 5, End: 25, Protocol: ProtocolTCP}, want: true},
		{name: "inside", candidate: Range{Start: 12, End: 18, Protocol: ProtocolTCP}, want: true},
		{name: "below", candidate: Range{Start: 5, End: 9, Protocol: ProtocolTCP}, want: false},
		{name: "above", candidate: Range{Start: 21, End: 30, Protocol: ProtocolTCP}, want: false},
		{name: "other protocol", candidate: Range{Start: 10, End: 20, Protocol: ProtocolUDP}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.candidate, existing); got != tt.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tt.candidate, existing, got, tt.want)
			}
			if got := Overlaps(existing, tt.candidate); got != tt.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v (reversed)", existing, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestCheckOverlapNamesConflict(t *testing.T) {
	existing := []Range{
		{Start: 1, End: 5, Protocol: ProtocolUDP},
		{Start: 10, End: 20, Protocol: ProtocolTCP},
	}
	err := CheckOverlap(Range{Start: 20, End: 30, Protocol: ProtocolTCP}, existing)
	if !errors.Is(err, ErrRangeOverlap) {
		t.Fatalf("CheckOverlap error = %v, want ErrRangeOverlap", err)
	}
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) || rangeErr.Conflict == nil || rangeErr.Conflict.Start != 10 {
		t.Fatalf("conflict not reported: %#v", rangeErr)
	}

	if err := CheckOverlap(Range{Start: 5, End: 9, Protocol: ProtocolTCP}, existing); err != nil {
		t.Fatalf("CheckOverlap unexpected error: %v", err)
	}
}

func TestParseRangeString(t *testing.T) {
	tests := []struct {
		input   string
		want    Range
		wantErr bool
		is      error
	}{
		{input: "80/tcp", want: Range{Start: 80, End: 80, Protocol: ProtocolTCP}},
		{input: "1000-2000/UDP", want: Range{Start: 1000, End: 2000, Protocol: ProtocolUDP}},
		{input: "1000-2000 tcp", want: Range{Start: 1000, End: 2000, Protocol: ProtocolTCP}},
		{input: "T:1-1024", want: Range{Start: 1, End: 1024, Protocol: ProtocolTCP}},
		{input: "U:53", want: Range{Start: 53, End: 53, Protocol: ProtocolUDP}},
		{input: "80/sctp", wantErr: true},
		{input: "2000-1000/tcp", wantErr: true},
		{input: "80", wantErr: true, is: ErrRangeFormat},
		{input: "", wantErr: true, is: ErrEmptyRangeString},
		{input: "+80/tcp", wantErr: true, is: ErrInvalidBound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRangeString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRangeString(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("ParseRangeString(%q) error = %v, want %v", tt.input, err, tt.is)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("ParseRangeString(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}
