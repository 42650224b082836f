package dashboard

import (
	"strings"

	"eventplanner-web/internal/api"
)

// Filter keeps the events whose title, description or location contains query,
// ignoring case. An empty query returns a copy of events.
func Filter(events []api.Event, query string) []api.Event {
	q := strings.ToLower(query)
	out := make([]api.Event, 0, len(events))
	for _, e := range events {
		if q == "" || matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e api.Event, q string) bool {
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Description), q) ||
		strings.Contains(strings.ToLower(e.Location), q)
}

// FilterUsers keeps the users whose name or email contains the trimmed query,
// ignoring case.
func FilterUsers(users []api.User, query string) []api.User {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]api.User, 0, len(users))
	for _, u := range users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

// InviteCandidates returns the users that may still be invited to an event:
// everyone except the organizer and those already holding an invitation.
func InviteCandidates(users []api.User, attendees []api.Attendee, organizerID int64) []api.User {
	taken := make(map[int64]struct{}, len(attendees)+1)
	if organizerID != 0 {
		taken[organizerID] = struct{}{}
	}
	for _, a := range attendees {
		taken[a.UserID] = struct{}{}
	}

	out := make([]api.User, 0, len(users))
	for _, u := range users {
		if _, ok := taken[u.ID]; !ok {
			out = append(out, u)
		}
	}
	return out
}
