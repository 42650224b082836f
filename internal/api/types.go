package api

import (
	"net/url"
	"strconv"
)

// User is a registered user as returned by the API.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Event is owned by its organizer. Date is YYYY-MM-DD and Time is HH:MM.
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	OrganizerID int64  `json:"organizer_id"`
}

// AttendanceStatus is the relationship of a user to an event.
type AttendanceStatus string

const (
	StatusGoing      AttendanceStatus = "going"
	StatusInterested AttendanceStatus = "interested"
	StatusNotGoing   AttendanceStatus = "not_going"
	StatusInvited    AttendanceStatus = "invited"
)

// Attendee is an invitation record linking a user to an event.
type Attendee struct {
	UserID int64            `json:"user_id"`
	Name   string           `json:"name,omitempty"`
	Email  string           `json:"email,omitempty"`
	Status AttendanceStatus `json:"status,omitempty"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /signup.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AuthResponse is returned by both /login and /signup.
type AuthResponse struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
}

// CreateEventResponse carries the id of the new event.
type CreateEventResponse struct {
	ID int64 `json:"id"`
}

// InviteRequest is the body of POST /events/{id}/invite.
type InviteRequest struct {
	UserID int64 `json:"userId"`
}

// InviteResponse is the acknowledgement of an invitation.
type InviteResponse struct {
	Message string `json:"message,omitempty"`
}

// UpdateAttendanceRequest is the body of PUT /events/{id}/attendance.
type UpdateAttendanceRequest struct {
	UserID int64            `json:"user_id"`
	Status AttendanceStatus `json:"status"`
}

// UpdateAttendanceResponse reports whether the status changed.
type UpdateAttendanceResponse struct {
	Updated bool `json:"updated"`
}

// SearchParams filters GET /events/search. Zero values are omitted.
type SearchParams struct {
	Q           string
	From        string
	To          string
	Location    string
	OrganizerID int64
	UserID      int64
	Page        int
	Size        int
}

// HasCriteria reports whether p narrows the search. Paging and the acting user
// alone do not.
func (p SearchParams) HasCriteria() bool {
	return p.Q != "" || p.From != "" || p.To != "" || p.Location != "" || p.OrganizerID != 0
}

// Values encodes the non-zero parameters as a query.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("q", p.Q)
	set("from", p.From)
	set("to", p.To)
	set("location", p.Location)
	if p.OrganizerID != 0 {
		v.Set("organizer_id", strconv.FormatInt(p.OrganizerID, 10))
	}
	if p.UserID != 0 {
		v.Set("user_id", strconv.FormatInt(p.UserID, 10))
	}
	if p.Page != 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size != 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	return v
}
