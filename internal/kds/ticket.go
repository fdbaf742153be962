package kds

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a ticket or item identifier. Producers send identifiers as JSON
// numbers, strings or null; all of them decode to their string form and
// null decodes to the empty ID.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) Empty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Number returns the identifier as an integer when it parses as one.
func (id ID) Number() (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid identifier %s: %w", data, err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		*id = ID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// Source tags which producer created a ticket.
type Source string

const (
	SourcePOS    Source = "POS"
	SourceGuest  Source = "GUEST"
	SourceOnline Source = "ONLINE"
)

// TicketRef carries every identifier a producer may attach to a ticket.
// Any of them may be empty.
type TicketRef struct {
	ID       ID `json:"id,omitempty"`
	CheckID  ID `json:"check_id,omitempty"`
	TicketID ID `json:"ticket_id,omitempty"`
	OrderID  ID `json:"order_id,omitempty"`
}

func (r TicketRef) ids() []ID {
	return []ID{r.CheckID, r.TicketID, r.ID, r.OrderID}
}

// Matches reports whether any of the ref's identifiers equals id, comparing
// both the string and the numeric form.
func (r TicketRef) Matches(id ID) bool {
	want := strings.TrimSpace(id.String())
	if want == "" {
		return false
	}
	wantNum, wantIsNum := id.Number()
	for _, candidate := range r.ids() {
		if candidate.Empty() {
			continue
		}
		if candidate.String() == want {
			return true
		}
		if n, ok := candidate.Number(); ok && wantIsNum && n == wantNum {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	CookStation string `json:"cook_station,omitempty"`
	Status      string `json:"status"`
}

type Ticket struct {
	TicketRef
	TableNumber  string      `json:"table_number"`
	CustomerName string      `json:"customer_name,omitempty"`
	BatchNo      int         `json:"batch_no"`
	Source       Source      `json:"source"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	Items        []OrderItem `json:"items"`
	Version      int         `json:"version"`
}

// Clone returns a copy that shares no item storage with t.
func (t Ticket) Clone() Ticket {
	if t.Items != nil {
		items := make([]OrderItem, len(t.Items))
		copy(items, t.Items)
		t.Items = items
	}
	return t
}

// TicketPatch holds the fields of a partial ticket update. Nil fields are
// left untouched. ItemStatus, when set, is applied to every item after Items.
type TicketPatch struct {
	Status       *string
	Items        []OrderItem
	ItemStatus   *string
	TableNumber  *string
	CustomerName *string
	BatchNo      *int
	Source       *Source
	CreatedAt    *time.Time
	Version      *int
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return p.Status == nil && p.Items == nil && p.ItemStatus == nil &&
		p.TableNumber == nil && p.CustomerName == nil && p.BatchNo == nil &&
		p.Source == nil && p.CreatedAt == nil && p.Version == nil
}

// Apply merges the patch into a copy of t.
func (p TicketPatch) Apply(t Ticket) Ticket {
	t = t.Clone()
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Items != nil {
		t.Items = make([]OrderItem, len(p.Items))
		copy(t.Items, p.Items)
	}
	if p.ItemStatus != nil {
		for i := range t.Items {
			t.Items[i].Status = *p.ItemStatus
		}
	}
	if p.TableNumber != nil {
		t.TableNumber = *p.TableNumber
	}
	if p.CustomerName != nil {
		t.CustomerName = *p.CustomerName
	}
	if p.BatchNo != nil {
		t.BatchNo = *p.BatchNo
	}
	if p.Source != nil {
		t.Source = *p.Source
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
	if p.Version != nil {
		t.Version = *p.Version
	}
	return t
}

// PatchFrom builds a patch that overwrites every field of the held ticket
// with the fields of t. Identifiers are not part of a patch.
func PatchFrom(t Ticket) TicketPatch {
	t = t.Clone()
	p := TicketPatch{
		Status:       &t.Status,
		TableNumber:  &t.TableNumber,
		CustomerName: &t.CustomerName,
		BatchNo:      &t.BatchNo,
		Source:       &t.Source,
		CreatedAt:    &t.CreatedAt,
		Version:      &t.Version,
	}
	p.Items = t.Items
	if p.Items == nil {
		p.Items = []OrderItem{}
	}
	return p
}
