//go:build linux
// +build linux

package ui

import (
	"fmt"
	"strings"

	"lazyportlist/internal/backup"
	"lazyportlist/internal/gmp"
)

func buildBackupPreview(item backup.Backup, current *gmp.PortList) (string, error) {
	saved, err := backup.Read(item)
	if err != nil {
		return "", err
	}

	tcp, udp := countProtocols(saved.PortRanges)
	lines := []string{
		fmt.Sprintf("Backup contains: %d ranges (tcp %d, udp %d)", len(saved.PortRanges), tcp, udp),
	}
	if item.Description != "" {
		lines = append(lines, "Description: "+item.Description)
	}

	if current == nil {
		return strings.Join(lines, "\n"), nil
	}

	add, del := diffRangeCounts(current.PortRanges, saved.PortRanges)
	lines = append(lines, fmt.Sprintf("Ranges: +%d  -%d", add, del))

	if current.Name != saved.Name {
		lines = append(lines, fmt.Sprintf("Name: %s → %s", current.Name, saved.Name))
	}
	if current.Comment != saved.Comment {
		lines = append(lines, fmt.Sprintf("Comment: %s → %s", emptyAsNone(current.Comment), emptyAsNone(saved.Comment)))
	}

	return strings.Join(lines, "\n"), nil
}

func countProtocols(ranges []gmp.PortRange) (tcp int, udp int) {
	for _, r := range ranges {
		switch strings.ToLower(r.Protocol) {
		case "tcp":
			tcp++
		case "udp":
			udp++
		}
	}
	return tcp, udp
}

// diffRangeCounts compares by span and protocol; range ids differ between
// a backup and the live list.
func diffRangeCounts(current, saved []gmp.PortRange) (add int, del int) {
	key := func(r gmp.PortRange) string {
		return fmt.Sprintf("%d-%d/%s", r.Start, r.End, strings.ToLower(r.Protocol))
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, r := range current {
		currentSet[key(r)] = struct{}{}
	}
	savedSet := make(map[string]struct{}, len(saved))
	for _, r := range saved {
		k := key(r)
		savedSet[k] = struct{}{}
		if _, ok := currentSet[k]; !ok {
			add++
		}
	}
	for k := range currentSet {
		if _, ok := savedSet[k]; !ok {
			del++
		}
	}
	return add, del
}

func emptyAsNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
