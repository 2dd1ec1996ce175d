//go:build linux
// +build linux

package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lazyportlist/internal/editor"
	"lazyportlist/internal/gmp"
	"lazyportlist/internal/validation"
)

var (
	errEmptyRangeInput  = errors.New("range is empty")
	errRangeInputFormat = errors.New(`use "start-end/proto", "start-end proto" or a single port`)
)

// parseRangeInput splits what was typed into the add-range prompt. The
// protocol defaults to tcp; bounds are validated by the editor.
func parseRangeInput(value string) (editor.RangeInput, error) {
	input := strings.TrimSpace(value)
	if input == "" {
		return editor.RangeInput{}, errEmptyRangeInput
	}

	var span, proto string
	if before, after, ok := strings.Cut(input, "/"); ok {
		span, proto = before, after
	} else {
		fields := strings.Fields(input)
		switch len(fields) {
		case 1:
			span, proto = fields[0], validation.ProtocolTCP
		case 2:
			span, proto = fields[0], fields[1]
		default:
			return editor.RangeInput{}, errRangeInputFormat
		}
	}

	start, end, ok := strings.Cut(strings.TrimSpace(span), "-")
	if !ok {
		end = start
	}
	return editor.RangeInput{
		Start:    strings.TrimSpace(start),
		End:      strings.TrimSpace(end),
		Protocol: strings.ToLower(strings.TrimSpace(proto)),
	}, nil
}

func describeCommit(data gmp.PortListData, created, deleted []editor.Range) string {
	if data.ID == "" {
		if len(created) == 0 {
			return fmt.Sprintf("create port list %q without ranges", data.Name)
		}
		return fmt.Sprintf("create port list %q with %s", data.Name, joinRanges(created))
	}
	parts := []string{fmt.Sprintf("save port list %q", data.Name)}
	if len(created) > 0 {
		parts = append(parts, "add "+joinRanges(created))
	}
	if len(deleted) > 0 {
		parts = append(parts, "delete "+joinRanges(deleted))
	}
	return strings.Join(parts, "; ")
}

func joinRanges(ranges []editor.Range) string {
	items := make([]string, 0, len(ranges))
	for _, r := range ranges {
		items = append(items, r.String())
	}
	return strings.Join(items, ", ")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (m *Model) setDryRunNotice(action string) {
	m.err = nil
	m.notice = "Dry-run: would " + action
}
