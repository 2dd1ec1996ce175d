//go:build linux
// +build linux

package firewalld

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		raw      string
		want     Version
		wantErr  bool
		wantDict bool
	}{
		{raw: "0.8.2", want: Version{0, 8, 2}},
		{raw: "1.3.4", want: Version{1, 3, 4}, wantDict: true},
		{raw: "2.1", want: Version{2, 1, 0}, wantDict: true},
		{raw: "1.0.0-rc1", want: Version{1, 0, 0}, wantDict: true},
		{raw: " 0.9.11 ", want: Version{0, 9, 11}},
		{raw: "", wantErr: true},
		{raw: "devel", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseVersion(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Fatalf("ParseVersion(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if got.dictSettings() != tt.wantDict {
				t.Fatalf("%v dictSettings = %v, want %v", got, got.dictSettings(), tt.wantDict)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	if got := (Version{Major: 1, Minor: 2}).String(); got != "1.2.0" {
		t.Fatalf("String() = %q", got)
	}
}
