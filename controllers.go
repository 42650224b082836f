package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"eventplanner-web/internal/api"
	"eventplanner-web/internal/dashboard"
	"eventplanner-web/internal/forms"
)

const (
	msgCreateFailed     = "Failed to create event. Please try again."
	msgInviteFailed     = "Failed to invite user. Please try again."
	msgAttendanceFailed = "Failed to update your response. Please try again."
	msgDeleteFailed     = "Failed to delete event."
	msgSearchFailed     = "Search failed. Please try again."
	msgOrganizedFailed  = "Could not load the events you organize."
	msgInvitedFailed    = "Could not load the events you are invited to."
)

// -----------------------------
// Helpers
// -----------------------------

// eventIDParam parses :id, answering 404 when it is not an event id.
func eventIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusNotFound, "event not found")
		c.Abort()
		return 0, false
	}
	return id, true
}

func eventURL(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}

// expired redirects to login when the auth gate rejected the session.
func (a *App) expired(c *gin.Context, err error) bool {
	if !sessionExpired(c, err) {
		return false
	}
	a.redirectToLogin(c, msgSessionExpired)
	return true
}

// -----------------------------
// Dashboard
// -----------------------------

// Dashboard renders one tab of the dashboard, filtered by ?q=.
func (a *App) Dashboard(tab dashboard.Tab) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := a.currentUser(c)
		if !ok {
			return
		}
		client := a.clientFor(c)
		ctx := c.Request.Context()

		snap := dashboard.Load(ctx, client.Events, userID)
		if a.expired(c, snap.OrganizedErr) || a.expired(c, snap.InvitedErr) {
			return
		}

		me, err := client.Users.Me(ctx, userID)
		if a.expired(c, err) {
			return
		}
		if err != nil {
			a.logger.Warn("load current user", slog.Int64("user_id", userID), slog.String("error", err.Error()))
			me = nil
		}

		data := dashboardPage{
			page:   a.newPage(c, "Dashboard"),
			User:   me,
			Tab:    tab,
			Tabs:   tabsFor(tab, snap.Counts),
			Query:  c.Query("q"),
			Events: dashboard.Filter(snap.View(tab), c.Query("q")),
		}
		if snap.OrganizedErr != nil {
			a.logger.Warn("load organized events", slog.Int64("user_id", userID), slog.String("error", snap.OrganizedErr.Error()))
			data.OrganizedErr = msgOrganizedFailed
		}
		if snap.InvitedErr != nil {
			a.logger.Warn("load invited events", slog.Int64("user_id", userID), slog.String("error", snap.InvitedErr.Error()))
			data.InvitedErr = msgInvitedFailed
		}

		c.HTML(http.StatusOK, "dashboard.tmpl", data)
	}
}

// -----------------------------
// Events
// -----------------------------

// ShowCreateEvent renders the create-event form.
func (a *App) ShowCreateEvent(c *gin.Context) {
	c.HTML(http.StatusOK, "create.tmpl", createEventPage{
		page: a.newPage(c, "Create event"),
		Form: forms.EventForm{},
	})
}

// bindForm binds the posted form into dst. A bind failure is logged and left
// to validation, which rejects the zero values it leaves behind.
func (a *App) bindForm(c *gin.Context, dst any) {
	if err := c.ShouldBind(dst); err != nil {
		a.logger.Warn("form bind failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
}

// CreateEvent validates the form and creates the event.
func (a *App) CreateEvent(c *gin.Context) {
	userID, ok := a.currentUser(c)
	if !ok {
		return
	}

	var form forms.EventForm
	a.bindForm(c, &form)

	render := func(status int, errs map[string]string, msg string) {
		c.HTML(status, "create.tmpl", createEventPage{
			page:   a.newPage(c, "Create event"),
			Form:   form,
			Errors: errs,
			Error:  msg,
		})
	}

	if err := forms.Validate(form); err != nil {
		ve, _ := forms.AsValidationError(err)
		render(http.StatusUnprocessableEntity, fieldsOf(ve), "")
		return
	}

	created, err := a.clientFor(c).Events.Create(c.Request.Context(), userID, form.Request())
	if a.expired(c, err) {
		return
	}
	if err != nil {
		render(failureStatus(err), nil, api.Message(err, msgCreateFailed))
		return
	}

	a.logger.Info("event created", slog.Int64("event_id", created.ID), slog.Int64("user_id", userID))
	a.addFlash(c, flashSuccess, "Event created.")
	if created.ID == 0 {
		c.Redirect(http.StatusSeeOther, "/dashboard/organized")
		return
	}
	c.Redirect(http.StatusSeeOther, eventURL(created.ID))
}

// ShowEvent renders one event with its invitations. The organizer also gets
// the invite picker, filtered by ?uq=; an invitee gets the attendance form.
func (a *App) ShowEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := a.currentUser(c)
	if !ok {
		return
	}
	client := a.clientFor(c)
	ctx := c.Request.Context()

	snap := dashboard.Load(ctx, client.Events, userID)
	if a.expired(c, snap.OrganizedErr) || a.expired(c, snap.InvitedErr) {
		return
	}

	event, found := snap.Find(eventID)
	if !found {
		if snap.Failed() {
			a.addFlash(c, flashError, "Could not load the event. Please try again.")
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		c.String(http.StatusNotFound, "event not found")
		return
	}

	data := eventPage{
		page:        a.newPage(c, event.Title),
		Event:       event,
		IsOrganizer: snap.IsOrganizer(eventID),
		Statuses:    respondStatuses,
		UserQuery:   c.Query("uq"),
	}

	var attendees []api.Attendee
	var err error
	if data.IsOrganizer {
		attendees, err = client.Events.SentInvitations(ctx, userID, eventID)
	} else {
		attendees, err = client.Events.Attendees(ctx, eventID, userID)
	}
	if a.expired(c, err) {
		return
	}
	if err != nil {
		a.logger.Warn("load attendees", slog.Int64("event_id", eventID), slog.String("error", err.Error()))
		attendees = []api.Attendee{}
	}
	data.Attendees = attendees

	if data.IsOrganizer {
		users, err := client.Users.List(ctx)
		if a.expired(c, err) {
			return
		}
		if err != nil {
			a.logger.Warn("load users", slog.String("error", err.Error()))
			data.Error = "Failed to load users"
		}
		data.Candidates = dashboard.FilterUsers(dashboard.InviteCandidates(users, attendees, userID), data.UserQuery)
	}

	c.HTML(http.StatusOK, "event.tmpl", data)
}

// InviteUser invites the selected user on behalf of the organizer.
func (a *App) InviteUser(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := a.currentUser(c)
	if !ok {
		return
	}

	var form forms.InviteForm
	a.bindForm(c, &form)
	if err := forms.Validate(form); err != nil {
		a.addFlash(c, flashError, "Select a user to invite.")
		c.Redirect(http.StatusSeeOther, eventURL(eventID))
		return
	}

	_, err := a.clientFor(c).Events.Invite(c.Request.Context(), eventID, form.UserID, userID)
	if a.expired(c, err) {
		return
	}
	if err != nil {
		a.addFlash(c, flashError, api.Message(err, msgInviteFailed))
	} else {
		name := strings.TrimSpace(c.PostForm("user_name"))
		if name == "" {
			name = "User"
		}
		a.addFlash(c, flashSuccess, name+" has been invited!")
	}
	c.Redirect(http.StatusSeeOther, eventURL(eventID))
}

// SetAttendance records the current user's response to an invitation.
func (a *App) SetAttendance(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := a.currentUser(c)
	if !ok {
		return
	}

	var form forms.AttendanceForm
	a.bindForm(c, &form)
	if err := forms.Validate(form); err != nil {
		ve, _ := forms.AsValidationError(err)
		a.addFlash(c, flashError, ve.Field("status"))
		c.Redirect(http.StatusSeeOther, eventURL(eventID))
		return
	}

	resp, err := a.clientFor(c).Events.UpdateAttendance(c.Request.Context(), eventID, form.Request(userID))
	if a.expired(c, err) {
		return
	}
	switch {
	case err != nil:
		a.addFlash(c, flashError, api.Message(err, msgAttendanceFailed))
	case resp.Updated:
		a.addFlash(c, flashSuccess, "Your response has been saved.")
	default:
		a.addFlash(c, flashSuccess, "Your response is unchanged.")
	}
	c.Redirect(http.StatusSeeOther, eventURL(eventID))
}

// DeleteEvent deletes an event and returns to the dashboard.
func (a *App) DeleteEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := a.currentUser(c)
	if !ok {
		return
	}

	err := a.clientFor(c).Events.Delete(c.Request.Context(), eventID, userID)
	if a.expired(c, err) {
		return
	}
	if err != nil {
		a.addFlash(c, flashError, msgDeleteFailed+" "+api.Message(err, "Unknown error"))
		c.Redirect(http.StatusSeeOther, eventURL(eventID))
		return
	}

	a.logger.Info("event deleted", slog.Int64("event_id", eventID), slog.Int64("user_id", userID))
	a.addFlash(c, flashSuccess, "Event deleted.")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// -----------------------------
// Search
// -----------------------------

// SearchEvents runs a server-side search. Supported query parameters: q, from,
// to (YYYY-MM-DD), location, organizer_id, page, size.
func (a *App) SearchEvents(c *gin.Context) {
	userID, ok := a.currentUser(c)
	if !ok {
		return
	}

	organizerID, _ := strconv.ParseInt(c.Query("organizer_id"), 10, 64)
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	params := newSearchParams(userID, c.Query("q"), c.Query("from"), c.Query("to"), c.Query("location"), organizerID, page, size)

	data := searchPage{Params: params}
	if params.HasCriteria() {
		data.Searched = true
		results, err := a.clientFor(c).Events.Search(c.Request.Context(), params)
		if a.expired(c, err) {
			return
		}
		if err != nil {
			data.Error = api.Message(err, msgSearchFailed)
		}
		data.Results = results
	}

	data.page = a.newPage(c, "Search events")
	c.HTML(http.StatusOK, "search.tmpl", data)
}

// newSearchParams builds the search request sent by both the search page and
// the CLI. userID is the acting user, 0 when nobody is logged in.
func newSearchParams(userID int64, q, from, to, location string, organizerID int64, page, size int) api.SearchParams {
	return api.SearchParams{
		Q:           strings.TrimSpace(q),
		From:        strings.TrimSpace(from),
		To:          strings.TrimSpace(to),
		Location:    strings.TrimSpace(location),
		OrganizerID: organizerID,
		UserID:      userID,
		Page:        page,
		Size:        size,
	}
}
