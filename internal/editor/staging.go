package editor

import (
	"errors"

	"lazyportlist/internal/gmp"
	"lazyportlist/internal/validation"
)

var ErrRangeNotFound = errors.New("port range is not staged")

// Range is one port range of an editing session. Token is assigned locally
// when the range enters the session and is the only identity used for
// removal, since staged ranges have no server id yet.
type Range struct {
	Token      string
	ID         string
	Start      int
	End        int
	Protocol   string
	Comment    string
	EntityType string
	IsTmp      bool
}

func (r Range) span() validation.Range {
	return validation.Range{Start: r.Start, End: r.End, Protocol: r.Protocol}
}

func (r Range) String() string {
	return r.span().String()
}

func (r Range) portRange() gmp.PortRange {
	return gmp.PortRange{
		ID:         r.ID,
		Start:      r.Start,
		End:        r.End,
		Protocol:   r.Protocol,
		Comment:    r.Comment,
		EntityType: r.EntityType,
	}
}

// staging holds the ranges of one session keyed by token. order keeps the
// display order; removed tokens stay in it as tombstones until compaction.
type staging struct {
	order        []string
	ranges       map[string]*Range
	created      map[string]struct{}
	deleted      map[string]*Range
	deletedOrder []string
	tombstones   int
}

func newStaging() staging {
	return staging{
		ranges:  make(map[string]*Range),
		created: make(map[string]struct{}),
		deleted: make(map[string]*Range),
	}
}

func (s *staging) seed(ranges []gmp.PortRange, newToken func() string) {
	*s = newStaging()
	for _, pr := range ranges {
		s.add(&Range{
			Token:      newToken(),
			ID:         pr.ID,
			Start:      pr.Start,
			End:        pr.End,
			Protocol:   pr.Protocol,
			Comment:    pr.Comment,
			EntityType: gmp.EntityTypePortRange,
		})
	}
}

func (s *staging) add(r *Range) {
	s.ranges[r.Token] = r
	s.order = append(s.order, r.Token)
	if r.IsTmp {
		s.created[r.Token] = struct{}{}
	}
}

func (s *staging) remove(token string) (Range, error) {
	r, ok := s.ranges[token]
	if !ok {
		return Range{}, ErrRangeNotFound
	}
	delete(s.ranges, token)
	s.tombstones++
	if r.IsTmp {
		delete(s.created, token)
	} else {
		s.deleted[token] = r
		s.deletedOrder = append(s.deletedOrder, token)
	}
	if s.tombstones > len(s.ranges) {
		s.compact()
	}
	return *r, nil
}

// confirmCreated marks a staged range as persisted under id.
func (s *staging) confirmCreated(token, id string) {
	if _, ok := s.created[token]; !ok {
		return
	}
	delete(s.created, token)
	if r, ok := s.ranges[token]; ok {
		r.ID = id
		r.IsTmp = false
	}
}

func (s *staging) confirmDeleted(token string) {
	delete(s.deleted, token)
}

// foldCreated confirms the outstanding creates once they were persisted
// as part of the parent list. The folded ranges have no id of their own.
func (s *staging) foldCreated() {
	for token := range s.created {
		if r, ok := s.ranges[token]; ok {
			r.IsTmp = false
		}
	}
	s.created = make(map[string]struct{})
}

func (s *staging) compact() {
	live := make([]string, 0, len(s.ranges))
	for _, token := range s.order {
		if _, ok := s.ranges[token]; ok {
			live = append(live, token)
		}
	}
	s.order = live
	s.tombstones = 0

	pending := make([]string, 0, len(s.deleted))
	for _, token := range s.deletedOrder {
		if _, ok := s.deleted[token]; ok {
			pending = append(pending, token)
		}
	}
	s.deletedOrder = pending
}

func (s *staging) list() []Range {
	out := make([]Range, 0, len(s.ranges))
	for _, token := range s.order {
		if r, ok := s.ranges[token]; ok {
			out = append(out, *r)
		}
	}
	return out
}

func (s *staging) pendingCreated() []Range {
	out := make([]Range, 0, len(s.created))
	for _, token := range s.order {
		if _, ok := s.created[token]; !ok {
			continue
		}
		if r, ok := s.ranges[token]; ok {
			out = append(out, *r)
		}
	}
	return out
}

func (s *staging) pendingDeleted() []Range {
	out := make([]Range, 0, len(s.deleted))
	for _, token := range s.deletedOrder {
		if r, ok := s.deleted[token]; ok {
			out = append(out, *r)
		}
	}
	return out
}

func (s *staging) spans() []validation.Range {
	out := make([]validation.Range, 0, len(s.ranges))
	for _, token := range s.order {
		if r, ok := s.ranges[token]; ok {
			out = append(out, r.span())
		}
	}
	return out
}

func (s *staging) portRanges() []gmp.PortRange {
	out := make([]gmp.PortRange, 0, len(s.ranges))
	for _, token := range s.order {
		if r, ok := s.ranges[token]; ok {
			out = append(out, r.portRange())
		}
	}
	return out
}
