package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// EventsService manages events, invitations and attendance.
type EventsService struct {
	client *Client
}

func userQuery(key string, id int64) url.Values {
	if id == 0 {
		return nil
	}
	return url.Values{key: {strconv.FormatInt(id, 10)}}
}

func eventPath(eventID int64, suffix string) string {
	return fmt.Sprintf("/events/%d%s", eventID, suffix)
}

func (s *EventsService) list(ctx context.Context, path string, query url.Values) ([]Event, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return UnwrapList[Event](raw)
}

func (s *EventsService) attendees(ctx context.Context, path string, query url.Values) ([]Attendee, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return UnwrapList[Attendee](raw)
}

// Create creates an event organized by userID.
func (s *EventsService) Create(ctx context.Context, userID int64, req CreateEventRequest) (*CreateEventResponse, error) {
	var resp CreateEventResponse
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/events",
		Query:  userQuery("user_id", userID),
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Organized returns the events userID organizes.
func (s *EventsService) Organized(ctx context.Context, userID int64) ([]Event, error) {
	return s.list(ctx, "/events/organized", userQuery("user_id", userID))
}

// Invited returns the events userID is invited to.
func (s *EventsService) Invited(ctx context.Context, userID int64) ([]Event, error) {
	return s.list(ctx, "/events/invited", userQuery("user_id", userID))
}

// Search returns the events matching params.
func (s *EventsService) Search(ctx context.Context, params SearchParams) ([]Event, error) {
	return s.list(ctx, "/events/search", params.Values())
}

// Attendees lists the invitations of an event. userID is optional.
func (s *EventsService) Attendees(ctx context.Context, eventID, userID int64) ([]Attendee, error) {
	return s.attendees(ctx, eventPath(eventID, "/attendees"), userQuery("user_id", userID))
}

// SentInvitations lists the invitations sent by userID, narrowed to one event
// when eventID is non-zero.
func (s *EventsService) SentInvitations(ctx context.Context, userID, eventID int64) ([]Attendee, error) {
	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	if eventID != 0 {
		query.Set("event_id", strconv.FormatInt(eventID, 10))
	}
	return s.attendees(ctx, "/events/invitations/sent", query)
}

// Invite invites inviteeID to an event on behalf of inviterID.
func (s *EventsService) Invite(ctx context.Context, eventID, inviteeID, inviterID int64) (*InviteResponse, error) {
	var resp InviteResponse
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   eventPath(eventID, "/invite"),
		Query:  userQuery("inviter_id", inviterID),
		Body:   InviteRequest{UserID: inviteeID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateAttendance sets the attendance status of a user for an event.
func (s *EventsService) UpdateAttendance(ctx context.Context, eventID int64, req UpdateAttendanceRequest) (*UpdateAttendanceResponse, error) {
	var resp UpdateAttendanceResponse
	if err := s.client.Put(ctx, eventPath(eventID, "/attendance"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete deletes an event. userID is optional.
func (s *EventsService) Delete(ctx context.Context, eventID, userID int64) error {
	return s.client.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   eventPath(eventID, ""),
		Query:  userQuery("user_id", userID),
	}, nil)
}
