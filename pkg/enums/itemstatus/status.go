package itemstatus

import "strings"

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	if len(s.Name) == 0 {
		return ""
	}
	lower := strings.ToLower(s.Name)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

type Enum struct {
	Ordered   Status
	Pending   Status
	Preparing Status
	Ready     Status
	Served    Status
	Cooking   Status
	Completed Status
	Done      Status
}

var Statuses = Enum{
	Ordered:   Status{Name: "ordered"},
	Pending:   Status{Name: "pending"},
	Preparing: Status{Name: "preparing"},
	Ready:     Status{Name: "ready"},
	Served:    Status{Name: "served"},
	Cooking:   Status{Name: "COOKING"},
	Completed: Status{Name: "COMPLETED"},
	Done:      Status{Name: "DONE"},
}

var All = []Status{
	Statuses.Ordered,
	Statuses.Pending,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Served,
	Statuses.Cooking,
	Statuses.Completed,
	Statuses.Done,
}

// ByName returns the status for a given name, or nil if not found.
// Matching ignores case.
func ByName(name string) *Status {
	for _, s := range All {
		if strings.EqualFold(s.Name, name) {
			return &s
		}
	}
	return nil
}

// Next returns the status an item moves to when a cook taps it, and false
// when the status has no successor.
func Next(raw string) (Status, bool) {
	s := ByName(strings.TrimSpace(raw))
	if s == nil {
		return Status{}, false
	}
	switch *s {
	case Statuses.Ordered, Statuses.Pending:
		return Statuses.Preparing, true
	case Statuses.Preparing:
		return Statuses.Ready, true
	case Statuses.Ready:
		return Statuses.Served, true
	}
	return Status{}, false
}

// Plated reports whether an item is ready or already served.
func Plated(raw string) bool {
	s := ByName(strings.TrimSpace(raw))
	return s != nil && (*s == Statuses.Ready || *s == Statuses.Served)
}
