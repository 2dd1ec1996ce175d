//go:build linux
// +build linux

package firewalld

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "bus access denied", err: &dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied"}, want: ErrPermissionDenied},
		{name: "firewalld not authorized", err: &dbus.Error{Name: "org.fedoraproject.FirewallD1.NotAuthorized"}, want: ErrPermissionDenied},
		{name: "polkit text", err: errors.New("permission denied by polkit"), want: ErrPermissionDenied},
		{name: "invalid zone exception", err: &dbus.Error{Name: "org.fedoraproject.FirewallD1.Exception.INVALID_ZONE"}, want: ErrInvalidZone},
		{name: "invalid zone text", err: errors.New("INVALID_ZONE: nope"), want: ErrInvalidZone},
		{name: "wrapped dbus error", err: errors.Join(errors.New("call"), &dbus.Error{Name: "org.fedoraproject.FirewallD1.Error.AccessDenied"}), want: ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyPassesThrough(t *testing.T) {
	if classify(nil) != nil {
		t.Fatalf("classify(nil) should be nil")
	}
	other := errors.New("bus closed")
	if got := classify(other); got != other {
		t.Fatalf("classify() wrapped an unrelated error: %v", got)
	}
}
