package ticketstatus

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

// Finished reports whether the status takes a ticket off the active board.
func (s Status) Finished() bool {
	switch s {
	case Statuses.Done, Statuses.Completed, Statuses.Served:
		return true
	}
	return false
}

type Enum struct {
	Pending   Status
	Cooking   Status
	Done      Status
	Completed Status
	Served    Status
}

var Statuses = Enum{
	Pending:   Status{Name: "PENDING"},
	Cooking:   Status{Name: "COOKING"},
	Done:      Status{Name: "DONE"},
	Completed: Status{Name: "COMPLETED"},
	Served:    Status{Name: "SERVED"},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Cooking,
	Statuses.Done,
	Statuses.Completed,
	Statuses.Served,
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

// Normalize uppercases a raw status and defaults an empty one to PENDING.
// Unknown statuses are kept so they still render.
func Normalize(raw string) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return Statuses.Pending.Code()
	}
	return raw
}

// IsFinished reports whether a raw status string is one of the finished
// statuses.
func IsFinished(raw string) bool {
	s := ByName(strings.TrimSpace(raw))
	return s != nil && s.Finished()
}
