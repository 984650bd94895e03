package domain

import (
	"context"
	"encoding/json"
	"sort"
)

// Event is the aggregate root: its details plus the set of users registered for it.
// swagger:model Event
type Event struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Date            string  `json:"date"`
	Location        string  `json:"location"`
	Time            string  `json:"time"`
	RegisteredUsers UserSet `json:"registered_users" swaggertype:"array,object"`
}

// NewEvent returns a new Event with no registered users. ID is set by the repository on create.
func NewEvent(name, description, date, location, time string) *Event {
	return &Event{
		Name:            name,
		Description:     description,
		Date:            date,
		Location:        location,
		Time:            time,
		RegisteredUsers: NewUserSet(),
	}
}

// ApplyDetails overwrites every mutable field with the values from src.
// ID and RegisteredUsers are left untouched.
func (e *Event) ApplyDetails(src *Event) {
	e.Name = src.Name
	e.Description = src.Description
	e.Date = src.Date
	e.Location = src.Location
	e.Time = src.Time
}

// Register adds u to the registered users. It reports false if u was already registered.
func (e *Event) Register(u User) bool {
	return e.RegisteredUsers.Add(u)
}

// UserSet is a set of users keyed by ID. The zero value is an empty set ready to use.
type UserSet struct {
	byID map[int64]User
}

// NewUserSet returns a set holding the given users; duplicates by ID collapse to one entry.
func NewUserSet(users ...User) UserSet {
	s := UserSet{byID: make(map[int64]User, len(users))}
	for _, u := range users {
		s.byID[u.ID] = u
	}
	return s
}

// Add inserts u unless a user with the same ID is present. It reports whether u was added.
func (s *UserSet) Add(u User) bool {
	if s.byID == nil {
		s.byID = make(map[int64]User)
	}
	if _, ok := s.byID[u.ID]; ok {
		return false
	}
	s.byID[u.ID] = u
	return true
}

func (s UserSet) Contains(userID int64) bool {
	_, ok := s.byID[userID]
	return ok
}

func (s UserSet) Len() int {
	return len(s.byID)
}

// IDs returns the user IDs in ascending order.
func (s UserSet) IDs() []int64 {
	ids := make([]int64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Users returns the members ordered by ID.
func (s UserSet) Users() []User {
	users := make([]User, 0, len(s.byID))
	for _, id := range s.IDs() {
		users = append(users, s.byID[id])
	}
	return users
}

func (s UserSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Users())
}

func (s *UserSet) UnmarshalJSON(data []byte) error {
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return err
	}
	*s = NewUserSet(users...)
	return nil
}

// EventRepository defines the interface for event storage.
// FindByID and DeleteByID return ErrNotFound for unknown IDs.
// Save inserts when e.ID is zero (assigning e.ID) and updates otherwise; in both
// cases every member of e.RegisteredUsers is linked to the event. Save never
// unlinks users.
type EventRepository interface {
	FindAll(ctx context.Context) ([]*Event, error)
	FindByID(ctx context.Context, id int64) (*Event, error)
	Save(ctx context.Context, e *Event) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
}

// PDFRenderer renders a printable document describing an event.
type PDFRenderer interface {
	Render(e *Event) ([]byte, error)
}

// EventService defines the business logic for events and registrations.
// Lookups report a missing event with found == false rather than an error.
type EventService interface {
	ListEvents(ctx context.Context) ([]*Event, error)
	GetEvent(ctx context.Context, id int64) (event *Event, found bool, err error)
	CreateEvent(ctx context.Context, draft *Event) (*Event, error)
	UpdateEvent(ctx context.Context, id int64, details *Event) (event *Event, found bool, err error)
	DeleteEvent(ctx context.Context, id int64) (deleted bool, err error)
	// RegisterEvent links the requesting user to the event. Registering twice is a no-op.
	// Returns ErrEventNotFound or ErrUserNotFound (wrapped with the missing ID).
	RegisterEvent(ctx context.Context, eventID int64, req RegistrationRequest) error
	// GenerateEventPDF returns found == false for unknown events and ErrPDFRender when rendering fails.
	GenerateEventPDF(ctx context.Context, id int64) (pdf []byte, found bool, err error)
}
