package main

import (
	"eventplanner-web/internal/api"
	"eventplanner-web/internal/dashboard"
)

// page is the data every template receives.
type page struct {
	Title    string
	LoggedIn bool
	Flashes  map[string][]string
}

// authPage renders the login and register forms.
type authPage struct {
	page
	Mode   string // login or register
	Form   interface{}
	Errors map[string]string
	Error  string
}

// tabLink is one dashboard tab with its badge.
type tabLink struct {
	Label  string
	Href   string
	Count  int
	Active bool
}

// dashboardPage renders one tab of the dashboard.
type dashboardPage struct {
	page
	User         *api.User
	Tab          dashboard.Tab
	Tabs         []tabLink
	Query        string
	Events       []api.Event
	OrganizedErr string
	InvitedErr   string
}

// createEventPage renders the create-event form.
type createEventPage struct {
	page
	Form   interface{}
	Errors map[string]string
	Error  string
}

// eventPage renders the details of one event.
type eventPage struct {
	page
	Event       api.Event
	IsOrganizer bool
	Attendees   []api.Attendee
	Candidates  []api.User
	UserQuery   string
	Statuses    []api.AttendanceStatus
	Error       string
}

// searchPage renders the server-side event search.
type searchPage struct {
	page
	Params   api.SearchParams
	Results  []api.Event
	Searched bool
	Error    string
}

func tabsFor(active dashboard.Tab, counts dashboard.Counts) []tabLink {
	return []tabLink{
		{Label: "All events", Href: "/dashboard", Count: counts.All, Active: active == dashboard.TabAll},
		{Label: "Organized", Href: "/dashboard/organized", Count: counts.Organized, Active: active == dashboard.TabOrganized},
		{Label: "Invited", Href: "/dashboard/invited", Count: counts.Invited, Active: active == dashboard.TabInvited},
	}
}

var respondStatuses = []api.AttendanceStatus{api.StatusGoing, api.StatusInterested, api.StatusNotGoing}
