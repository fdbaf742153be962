package kds

import (
	"fmt"
	"strconv"
	"time"
)

const unknownIDPrefix = "unknown_"

// CanonicalID returns the identifier a ticket is keyed by: the first non-empty
// of check id, ticket id, id and order id. ok is false when none is set.
func CanonicalID(ref TicketRef) (string, bool) {
	for _, id := range ref.ids() {
		if !id.Empty() {
			return id.String(), true
		}
	}
	return "", false
}

// Normalize resolves the canonical id of t. A ticket with no identifier gets a
// synthetic unknown_<millis> id stamped into its check id, so normalizing the
// result again yields the same id.
func Normalize(t Ticket, now time.Time) (string, Ticket, bool) {
	if id, ok := CanonicalID(t.TicketRef); ok {
		return id, t, true
	}
	id := unknownIDPrefix + strconv.FormatInt(now.UnixMilli(), 10)
	t.CheckID = ID(id)
	return id, t, false
}

// distinctSynthetic suffixes a synthetic id with _<n> until no ticket in taken
// is keyed by it, stamping the result into t's check id.
func distinctSynthetic(id string, t Ticket, taken map[string]Ticket) (string, Ticket) {
	if _, ok := taken[id]; !ok {
		return id, t
	}
	for n := 1; ; n++ {
		candidate := id + "_" + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			t.CheckID = ID(candidate)
			return candidate, t
		}
	}
}

// FindByAnyID locates a held ticket by any of its identifiers. It tries the
// literal key, then numeric and string coercions of it, then scans every
// ticket's identifiers.
func FindByAnyID(tickets map[string]Ticket, id string) (string, Ticket, bool) {
	if id == "" {
		return "", Ticket{}, false
	}

	if t, ok := tickets[id]; ok {
		return id, t, true
	}

	for _, key := range coercions(id) {
		if t, ok := tickets[key]; ok {
			return key, t, true
		}
	}

	for key, t := range tickets {
		if t.Matches(ID(id)) {
			return key, t, true
		}
	}

	return "", Ticket{}, false
}

func coercions(id string) []string {
	var keys []string
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		if s := strconv.FormatInt(n, 10); s != id {
			keys = append(keys, s)
		}
	}
	if f, err := strconv.ParseFloat(id, 64); err == nil && f == float64(int64(f)) {
		if s := fmt.Sprintf("%d", int64(f)); s != id {
			keys = append(keys, s)
		}
	}
	return keys
}
