package kds

import (
	"strings"
	"time"

	"github.com/appetiteclub/kds/pkg/enums/cookstation"
	"github.com/appetiteclub/kds/pkg/enums/ticketstatus"
)

// KitchenItems returns the items routed to a kitchen station. Items without
// a station tag count as kitchen items.
func KitchenItems(items []OrderItem) []OrderItem {
	kept := make([]OrderItem, 0, len(items))
	for _, item := range items {
		if cookstation.Resolve(item.CookStation).KitchenRelevant() {
			kept = append(kept, item)
		}
	}
	return kept
}

// HasKitchenItems reports whether at least one item belongs on this display.
func HasKitchenItems(t Ticket) bool {
	for _, item := range t.Items {
		if cookstation.Resolve(item.CookStation).KitchenRelevant() {
			return true
		}
	}
	return false
}

// PrepareCreated fills the fields a newly created ticket may lack and keeps
// only its kitchen items.
func PrepareCreated(t Ticket, now time.Time) Ticket {
	t = t.Clone()
	t.Items = KitchenItems(t.Items)
	if t.BatchNo <= 0 {
		t.BatchNo = 1
	}
	if strings.TrimSpace(t.TableNumber) == "" {
		t.TableNumber = "N/A"
	}
	if strings.TrimSpace(t.CustomerName) == "" {
		t.CustomerName = "Table " + t.TableNumber
	}
	t.Status = ticketstatus.Normalize(t.Status)
	if t.Source == "" {
		t.Source = SourcePOS
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	return t
}
