package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"eventplanner-web/internal/api"
	"eventplanner-web/internal/dashboard"
	"eventplanner-web/internal/debounce"
	"eventplanner-web/internal/forms"
)

var errEventNotFound = errors.New("event not found on your dashboard")

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your dashboard events",
	Long: `List the events you organize and the events you are invited to.

Examples:
  eventplanner events list
  eventplanner events list --tab organized
  eventplanner events list --query picnic`,
	RunE: runEventsList,
}

var eventsFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Filter the dashboard interactively",
	Long: `Read search queries line by line from standard input and print the
matching dashboard events once typing settles. An empty line clears the filter.`,
	RunE: runEventsFind,
}

var eventsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event",
	RunE:  runEventsCreate,
}

var eventsShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show an event and its attendees",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsShow,
}

var eventsAttendeesCmd = &cobra.Command{
	Use:   "attendees <event-id>",
	Short: "List the attendees of an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsAttendees,
}

var eventsInviteCmd = &cobra.Command{
	Use:   "invite <event-id> <user-id>",
	Short: "Invite a user to an event you organize",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventsInvite,
}

var eventsRespondCmd = &cobra.Command{
	Use:   "respond <event-id>",
	Short: "Answer an invitation",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsRespond,
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <event-id>",
	Short: "Delete an event you organize",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsDelete,
}

var eventsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search all events",
	RunE:  runEventsSearch,
}

var invitationsCmd = &cobra.Command{
	Use:   "invitations",
	Short: "Invitations you have sent",
}

var invitationsSentCmd = &cobra.Command{
	Use:   "sent",
	Short: "List invitations you have sent",
	RunE:  runInvitationsSent,
}

func init() {
	eventsListCmd.Flags().String("tab", string(dashboard.TabAll), "tab to show: all, organized, invited")
	eventsListCmd.Flags().StringP("query", "q", "", "filter by title, description or location")

	eventsFindCmd.Flags().String("tab", string(dashboard.TabAll), "tab to search: all, organized, invited")

	eventsCreateCmd.Flags().String("title", "", "event title")
	eventsCreateCmd.Flags().String("date", "", "date (YYYY-MM-DD)")
	eventsCreateCmd.Flags().String("time", "", "start time (HH:MM)")
	eventsCreateCmd.Flags().String("location", "", "where it happens")
	eventsCreateCmd.Flags().String("description", "", "what it is about")

	eventsRespondCmd.Flags().String("status", "", "going, interested or not_going")

	eventsDeleteCmd.Flags().Bool("force", false, "skip confirmation")

	eventsSearchCmd.Flags().StringP("query", "q", "", "free text")
	eventsSearchCmd.Flags().String("from", "", "earliest date (YYYY-MM-DD)")
	eventsSearchCmd.Flags().String("to", "", "latest date (YYYY-MM-DD)")
	eventsSearchCmd.Flags().String("location", "", "location contains")
	eventsSearchCmd.Flags().Int64("organizer", 0, "organizer user id")
	eventsSearchCmd.Flags().Int("page", 0, "page number")
	eventsSearchCmd.Flags().Int("size", 0, "page size")

	invitationsSentCmd.Flags().Int64("event", 0, "only invitations for this event")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsFindCmd)
	eventsCmd.AddCommand(eventsCreateCmd)
	eventsCmd.AddCommand(eventsShowCmd)
	eventsCmd.AddCommand(eventsAttendeesCmd)
	eventsCmd.AddCommand(eventsInviteCmd)
	eventsCmd.AddCommand(eventsRespondCmd)
	eventsCmd.AddCommand(eventsDeleteCmd)
	eventsCmd.AddCommand(eventsSearchCmd)

	invitationsCmd.AddCommand(invitationsSentCmd)

	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(invitationsCmd)
}

// currentUserClient returns a client and the logged-in user's id.
func currentUserClient(cmd *cobra.Command) (*api.Client, int64, error) {
	client, err := getClient()
	if err != nil {
		return nil, 0, err
	}
	userID, err := client.Auth.CurrentUserID()
	if err != nil {
		return nil, 0, fail(cmd, err)
	}
	return client, userID, nil
}

// loadDashboard fetches both collections, reporting a partial failure on stderr.
// It fails only when neither collection could be loaded.
func loadDashboard(cmd *cobra.Command, client *api.Client, userID int64) (*dashboard.Snapshot, error) {
	snap := dashboard.Load(cmd.Context(), client.Events, userID)
	switch {
	case snap.OrganizedErr != nil && snap.InvitedErr != nil:
		return nil, fail(cmd, snap.OrganizedErr)
	case snap.OrganizedErr != nil:
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", msgOrganizedFailed)
	case snap.InvitedErr != nil:
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", msgInvitedFailed)
	}
	return snap, nil
}

func printEvents(w io.Writer, events []api.Event, snap *dashboard.Snapshot) error {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found")
		return nil
	}

	tw := newTable(w)
	printTableHeader(tw, "ID", "TITLE", "DATE", "TIME", "LOCATION", "ROLE")
	for _, e := range events {
		role := "-"
		if snap != nil {
			role = "invited"
			if snap.IsOrganizer(e.ID) {
				role = "organizer"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, truncate(e.Title, 40), orDash(e.Date), orDash(e.Time), truncate(orDash(e.Location), 30), role)
	}
	return tw.Flush()
}

func printAttendees(w io.Writer, attendees []api.Attendee) error {
	if len(attendees) == 0 {
		fmt.Fprintln(w, "No attendees yet")
		return nil
	}

	tw := newTable(w)
	printTableHeader(tw, "USER", "NAME", "EMAIL", "STATUS")
	for _, a := range attendees {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.UserID, orDash(a.Name), orDash(a.Email), statusLabel(a.Status))
	}
	return tw.Flush()
}

func runEventsList(cmd *cobra.Command, args []string) error {
	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}

	tabName, _ := cmd.Flags().GetString("tab")
	query, _ := cmd.Flags().GetString("query")
	tab := dashboard.ParseTab(tabName)

	snap, err := loadDashboard(cmd, client, userID)
	if err != nil {
		return err
	}
	events := dashboard.Filter(snap.View(tab), query)

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"tab":    tab,
			"events": events,
			"counts": snap.Counts,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "All (%d)  Organized (%d)  Invited (%d)\n\n",
		snap.Counts.All, snap.Counts.Organized, snap.Counts.Invited)
	return printEvents(cmd.OutOrStdout(), events, snap)
}

// findEmitter prints the events in view matching each settled query. A failed
// write is logged since the debouncer has nobody to return it to.
func findEmitter(out io.Writer, view []api.Event, snap *dashboard.Snapshot, logger *slog.Logger) func(string) {
	var mu sync.Mutex
	return func(query string) {
		mu.Lock()
		defer mu.Unlock()
		if query == "" {
			fmt.Fprintln(out, "> (all)")
		} else {
			fmt.Fprintf(out, "> %s\n", query)
		}
		if err := printEvents(out, dashboard.Filter(view, query), snap); err != nil {
			logger.Warn("print search results", slog.String("query", query), slog.String("error", err.Error()))
		}
	}
}

func runEventsFind(cmd *cobra.Command, args []string) error {
	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}
	tabName, _ := cmd.Flags().GetString("tab")

	snap, err := loadDashboard(cmd, client, userID)
	if err != nil {
		return err
	}
	view := snap.View(dashboard.ParseTab(tabName))

	d := debounce.New(cfg.Search.Debounce, findEmitter(cmd.OutOrStdout(), view, snap, logger))
	defer d.Stop()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			d.Clear()
			continue
		}
		d.Push(line)
	}
	d.Flush()
	return scanner.Err()
}

func runEventsCreate(cmd *cobra.Command, args []string) error {
	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}

	var form forms.EventForm
	form.Title, _ = cmd.Flags().GetString("title")
	form.Date, _ = cmd.Flags().GetString("date")
	form.Time, _ = cmd.Flags().GetString("time")
	form.Location, _ = cmd.Flags().GetString("location")
	form.Description, _ = cmd.Flags().GetString("description")
	if err := forms.Validate(form); err != nil {
		return fail(cmd, err)
	}

	resp, err := client.Events.Create(cmd.Context(), userID, form.Request())
	if err != nil {
		return fail(cmd, err)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Event created (id %d)\n", resp.ID)
	return nil
}

func runEventsShow(cmd *cobra.Command, args []string) error {
	eventID, err := parseID(args[0], "event id")
	if err != nil {
		return err
	}
	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}

	snap, err := loadDashboard(cmd, client, userID)
	if err != nil {
		return err
	}
	event, ok := snap.Find(eventID)
	if !ok {
		return fmt.Errorf("%w: %d", errEventNotFound, eventID)
	}

	organizer := snap.IsOrganizer(eventID)
	var attendees []api.Attendee
	if organizer {
		attendees, err = client.Events.SentInvitations(cmd.Context(), userID, eventID)
	} else {
		attendees, err = client.Events.Attendees(cmd.Context(), eventID, userID)
	}
	if err != nil {
		return fail(cmd, err)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"event":        event,
			"is_organizer": organizer,
			"attendees":    attendees,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n", event.Title)
	fmt.Fprintf(w, "  When:     %s %s\n", orDash(event.Date), orDash(event.Time))
	fmt.Fprintf(w, "  Where:    %s\n", orDash(event.Location))
	fmt.Fprintf(w, "  About:    %s\n", orDash(event.Description))
	if organizer {
		fmt.Fprintln(w, "  You organize this event")
	}
	fmt.Fprintln(w)
	return printAttendees(w, attendees)
}

func runEventsAttendees(cmd *cobra.Command, args []string) error {
	eventID, err := parseID(args[0], "event id")
	if err != nil {
		return err
	}
	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}

	attendees, err := client.Events.Attendees(cmd.Context(), eventID, userID)
	if err != nil {
		return fail(cmd, err)
	}
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), attendees)
	}
	return printAttendees(cmd.OutOrStdout(), attendees)
}

func runEventsInvite(cmd *cobra.Command, args []string) error {
	eventID, err := parseID(args[0], "event id")
	if err != nil {
		return err
	}
	inviteeID, err := parseID(args[1], "user id")
	if err != nil {
		return err
	}
	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Events.Invite(cmd.Context(), eventID, inviteeID, userID)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), api.Message(err, msgInviteFailed))
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "User %d has been invited!\n", inviteeID)
	return nil
}

func runEventsRespond(cmd *cobra.Command, args []string) error {
	eventID, err := parseID(args[0], "event id")
	if err != nil {
		return err
	}
	status, _ := cmd.Flags().GetString("status")
	form := forms.AttendanceForm{Status: status}
	if err := forms.Validate(form); err != nil {
		return fail(cmd, err)
	}

	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Events.UpdateAttendance(cmd.Context(), eventID, form.Request(userID))
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), api.Message(err, msgAttendanceFailed))
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Response saved: %s\n", statusLabel(api.AttendanceStatus(status)))
	return nil
}

func runEventsDelete(cmd *cobra.Command, args []string) error {
	eventID, err := parseID(args[0], "event id")
	if err != nil {
		return err
	}
	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		answer, err := readLine(cmd, fmt.Sprintf("Delete event %d? This cannot be undone. [y/N]: ", eventID))
		if err != nil {
			return err
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	if err := client.Events.Delete(cmd.Context(), eventID, userID); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), msgDeleteFailed+" "+api.Message(err, "Unknown error"))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Event %d deleted\n", eventID)
	return nil
}

func runEventsSearch(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	q, _ := cmd.Flags().GetString("query")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	location, _ := cmd.Flags().GetString("location")
	organizerID, _ := cmd.Flags().GetInt64("organizer")
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	userID, _ := client.Auth.CurrentUserID()
	params := newSearchParams(userID, q, from, to, location, organizerID, page, size)

	events, err := client.Events.Search(cmd.Context(), params)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), api.Message(err, msgSearchFailed))
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"events": events,
			"count":  len(events),
		})
	}
	return printEvents(cmd.OutOrStdout(), events, nil)
}

func runInvitationsSent(cmd *cobra.Command, args []string) error {
	client, userID, err := currentUserClient(cmd)
	if err != nil {
		return err
	}
	eventID, _ := cmd.Flags().GetInt64("event")

	sent, err := client.Events.SentInvitations(cmd.Context(), userID, eventID)
	if err != nil {
		return fail(cmd, err)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), sent)
	}
	if eventID != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Invitations for event %s\n\n", strconv.FormatInt(eventID, 10))
	}
	return printAttendees(cmd.OutOrStdout(), sent)
}
