//go:build linux
// +build linux

package firewalld

import "errors"

type Port struct {
	Port     string
	Protocol string
}

func (p Port) String() string {
	return p.Port + "/" + p.Protocol
}

// ZonePorts is what a zone opens, either directly or through its services.
type ZonePorts struct {
	Zone      string
	Permanent bool
	Ports     []Port
	Services  []string
}

var (
	ErrNotRunning       = errors.New("firewalld service is not running")
	ErrPermissionDenied = errors.New("permission denied (try sudo)")
	ErrUnsupportedAPI   = errors.New("firewalld version not supported")
	ErrInvalidZone      = errors.New("zone does not exist")
)
