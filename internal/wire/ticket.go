package wire

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/appetiteclub/kds/internal/kds"
	"github.com/appetiteclub/kds/pkg/enums/ticketstatus"
)

// Item is an order item as producers send it. Name and status each have a
// legacy alias.
type Item struct {
	ID          kds.ID `json:"id"`
	Name        string `json:"name"`
	MenuName    string `json:"menu_name"`
	Quantity    kds.ID `json:"quantity"`
	CookStation string `json:"cook_station"`
	Status      string `json:"status"`
	ItemStatus  string `json:"item_status"`
}

func (i Item) ToItem() kds.OrderItem {
	name := i.Name
	if name == "" {
		name = i.MenuName
	}
	qty := int64(1)
	if n, ok := i.Quantity.Number(); ok && n > 0 {
		qty = n
	}
	status := i.Status
	if status == "" {
		status = i.ItemStatus
	}
	return kds.OrderItem{
		ID:          i.ID,
		Name:        name,
		Quantity:    int(qty),
		CookStation: strings.ToUpper(strings.TrimSpace(i.CookStation)),
		Status:      status,
	}
}

// Ticket is a ticket as producers send it. Pointer fields distinguish an
// absent field from a zero one so partial updates can be told apart.
type Ticket struct {
	ID           kds.ID  `json:"id"`
	CheckID      kds.ID  `json:"check_id"`
	TicketID     kds.ID  `json:"ticket_id"`
	OrderID      kds.ID  `json:"order_id"`
	TableNumber  *kds.ID `json:"table_number"`
	TableNum     *kds.ID `json:"table_num"`
	CustomerName *string `json:"customer_name"`
	BatchNo      *int    `json:"batch_no"`
	Source       *string `json:"source"`
	Status       *string `json:"status"`
	CreatedAt    *string `json:"created_at"`
	Items        *[]Item `json:"items"`
	Version      *int    `json:"version"`
}

func (t Ticket) Ref() kds.TicketRef {
	return kds.TicketRef{ID: t.ID, CheckID: t.CheckID, TicketID: t.TicketID, OrderID: t.OrderID}
}

func (t Ticket) table() (string, bool) {
	for _, v := range []*kds.ID{t.TableNumber, t.TableNum} {
		if v != nil && !v.Empty() {
			return v.String(), true
		}
	}
	return "", false
}

func (t Ticket) items() []kds.OrderItem {
	if t.Items == nil {
		return nil
	}
	items := make([]kds.OrderItem, 0, len(*t.Items))
	for _, item := range *t.Items {
		items = append(items, item.ToItem())
	}
	return items
}

// ToTicket converts a full ticket. Missing fields stay zero; the display fills
// defaults for created tickets.
func (t Ticket) ToTicket() kds.Ticket {
	out := kds.Ticket{TicketRef: t.Ref(), Items: t.items()}
	if table, ok := t.table(); ok {
		out.TableNumber = table
	}
	if t.CustomerName != nil {
		out.CustomerName = *t.CustomerName
	}
	if t.BatchNo != nil {
		out.BatchNo = *t.BatchNo
	}
	if t.Source != nil {
		out.Source = ParseSource(*t.Source)
	}
	if t.Status != nil {
		out.Status = ticketstatus.Normalize(*t.Status)
	}
	if t.CreatedAt != nil {
		out.CreatedAt = ParseTime(*t.CreatedAt)
	}
	if t.Version != nil {
		out.Version = *t.Version
	}
	return out
}

// Patch converts the fields present on the wire into a partial update.
func (t Ticket) Patch() kds.TicketPatch {
	var p kds.TicketPatch
	if t.Status != nil {
		s := ticketstatus.Normalize(*t.Status)
		p.Status = &s
	}
	if t.Items != nil {
		p.Items = t.items()
	}
	if table, ok := t.table(); ok {
		p.TableNumber = &table
	}
	if t.CustomerName != nil {
		name := *t.CustomerName
		p.CustomerName = &name
	}
	if t.BatchNo != nil {
		n := *t.BatchNo
		p.BatchNo = &n
	}
	if t.Source != nil {
		src := ParseSource(*t.Source)
		p.Source = &src
	}
	if t.CreatedAt != nil {
		if ts := ParseTime(*t.CreatedAt); !ts.IsZero() {
			p.CreatedAt = &ts
		}
	}
	if t.Version != nil {
		v := *t.Version
		p.Version = &v
	}
	return p
}

// ParseSource maps producer tags onto the known sources. The guest ordering
// app reports itself as TLL.
func ParseSource(raw string) kds.Source {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return ""
	case "POS":
		return kds.SourcePOS
	case "TLL", "GUEST", "GUEST_APP":
		return kds.SourceGuest
	case "ONLINE", "DELIVERY":
		return kds.SourceOnline
	default:
		return kds.Source(strings.ToUpper(strings.TrimSpace(raw)))
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
}

// ParseTime accepts the timestamp layouts producers use. It returns the zero
// time when none matches.
func ParseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// DecodeTickets decodes a JSON array of tickets.
func DecodeTickets(data []byte) ([]kds.Ticket, error) {
	var raw []Ticket
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cannot decode tickets: %w", err)
	}
	tickets := make([]kds.Ticket, 0, len(raw))
	for _, t := range raw {
		tickets = append(tickets, t.ToTicket())
	}
	return tickets, nil
}
