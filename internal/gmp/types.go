package gmp

import (
	"errors"
	"fmt"
)

// EntityTypePortRange tags ranges the way the manager's entity model does.
const EntityTypePortRange = "portrange"

type PortRange struct {
	ID         string
	Start      int
	End        int
	Protocol   string
	Comment    string
	EntityType string
}

type PortCount struct {
	All int
	TCP int
	UDP int
}

type PortList struct {
	ID         string
	Name       string
	Comment    string
	Owner      string
	InUse      bool
	Writable   bool
	Count      PortCount
	PortRanges []PortRange
}

// PortListData is the payload of create_port_list and save_port_list.
// An empty ID selects create.
type PortListData struct {
	ID        string
	Name      string
	Comment   string
	PortRange string
}

type CreatePortRangeRequest struct {
	PortListID string
	Start      int
	End        int
	PortType   string
	Comment    string
}

type ImportData struct {
	Filename string
	XML      []byte
}

// Response is the action_result of a mutating command.
type Response struct {
	Action  string
	ID      string
	Message string
}

var (
	ErrUnauthorized     = errors.New("not authenticated (check server credentials)")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("entity not found")
	ErrNoToken          = errors.New("no session token (login first)")
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Command string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gmp %s: status %d", e.Command, e.Status)
	}
	return fmt.Sprintf("gmp %s: status %d: %s", e.Command, e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == 401
	case ErrPermissionDenied:
		return e.Status == 403
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}
