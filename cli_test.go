package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner-web/internal/api"
	"eventplanner-web/internal/session"
)

// resetFlags puts every flag back to its default. Cobra keeps flag values on
// the package-level commands between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type cliEnv struct {
	t           *testing.T
	api         *fakeAPI
	apiURL      string
	sessionPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	f, srv := newFakeAPI(t)
	return &cliEnv{
		t:           t,
		api:         f,
		apiURL:      srv.URL,
		sessionPath: filepath.Join(t.TempDir(), "session.yaml"),
	}
}

// run executes the CLI with stdin and returns stdout and stderr.
func (e *cliEnv) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--api-url", e.apiURL, "--session-file", e.sessionPath}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (e *cliEnv) token() (string, bool) {
	return session.NewFileStore(e.sessionPath).Get()
}

func (e *cliEnv) login() {
	e.t.Helper()
	require.NoError(e.t, session.NewFileStore(e.sessionPath).Save("7"))
}

func TestCLI_Login(t *testing.T) {
	env := newCLIEnv(t)
	scriptDashboard(env.api)

	out, _, err := env.run("", "login", "--email", "ann@example.com", "--password", "secret")

	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ann (user 7)")
	token, ok := env.token()
	assert.True(t, ok)
	assert.Equal(t, "7", token)
}

func TestCLI_LoginReadsPasswordFromStdin(t *testing.T) {
	env := newCLIEnv(t)
	scriptDashboard(env.api)

	_, stderr, err := env.run("secret\n", "login", "--email", "ann@example.com")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Password: ")
	assert.JSONEq(t, `{"email":"ann@example.com","password":"secret"}`, env.api.body("POST /login"))
}

func TestCLI_LoginRejected(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("POST /login", http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)

	_, stderr, err := env.run("", "login", "--email", "ann@example.com", "--password", "wrong")

	require.Error(t, err)
	assert.Contains(t, stderr, "Invalid credentials")
	_, ok := env.token()
	assert.False(t, ok)
}

func TestCLI_LoginValidation(t *testing.T) {
	env := newCLIEnv(t)

	_, stderr, err := env.run("", "login", "--email", "nope", "--password", "x")

	require.Error(t, err)
	assert.Contains(t, stderr, "--email")
	assert.Zero(t, env.api.count())
}

func TestCLI_Register(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("POST /signup", http.StatusCreated, `{"user_id":9}`)

	out, _, err := env.run("", "register", "--name", "Bob", "--email", "bob@example.com", "--password", "secret1")

	require.NoError(t, err)
	assert.Contains(t, out, msgRegistered)
	_, ok := env.token()
	assert.False(t, ok, "registering does not log in")

	_, stderr, err := env.run("", "register", "--name", "Bob", "--email", "bob@example.com",
		"--password", "secret1", "--confirm-password", "secret2")
	require.Error(t, err)
	assert.Contains(t, stderr, "--confirm-password: Passwords do not match")
}

func TestCLI_Logout(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	out, _, err := env.run("", "logout")

	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, ok := env.token()
	assert.False(t, ok)
	assert.Zero(t, env.api.count())
}

func TestCLI_WhoamiWithoutSession(t *testing.T) {
	env := newCLIEnv(t)

	_, stderr, err := env.run("", "whoami")

	require.ErrorIs(t, err, api.ErrNoSession)
	assert.Contains(t, stderr, "You are not logged in")
	assert.Zero(t, env.api.count())
}

func TestCLI_Whoami(t *testing.T) {
	env := newCLIEnv(t)
	scriptDashboard(env.api)
	env.login()

	out, _, err := env.run("", "whoami")

	require.NoError(t, err)
	assert.Contains(t, out, "Ann <ann@example.com> (user 7)")
	assert.Equal(t, "Bearer 7", env.api.call("GET /me").Header.Get("Authorization"))
}

func TestCLI_EventsList(t *testing.T) {
	env := newCLIEnv(t)
	scriptDashboard(env.api)
	env.login()

	out, _, err := env.run("", "events", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "All (2)  Organized (1)  Invited (1)")
	assert.Contains(t, out, "Picnic")
	assert.Contains(t, out, "organizer")
	assert.Contains(t, out, "Jazz night")

	out, _, err = env.run("", "events", "list", "--tab", "organized", "--query", "PARK")
	require.NoError(t, err)
	assert.Contains(t, out, "Picnic")
	assert.NotContains(t, out, "Jazz night")
}

func TestCLI_EventsListJSON(t *testing.T) {
	env := newCLIEnv(t)
	scriptDashboard(env.api)
	env.login()

	out, _, err := env.run("", "--json", "events", "list", "--tab", "invited")
	require.NoError(t, err)

	var got struct {
		Tab    string      `json:"tab"`
		Events []api.Event `json:"events"`
		Counts struct {
			All       int
			Organized int
			Invited   int
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "invited", got.Tab)
	require.Len(t, got.Events, 1)
	assert.Equal(t, int64(2), got.Events[0].ID)
	assert.Equal(t, 2, got.Counts.All)
}

func TestCLI_ExpiredSessionIsCleared(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("GET /events/organized", http.StatusUnauthorized, `{"detail":"expired"}`)
	env.api.json("GET /events/invited", http.StatusUnauthorized, `{"detail":"expired"}`)
	env.login()

	_, stderr, err := env.run("", "events", "list")

	require.ErrorIs(t, err, api.ErrAuthExpired)
	assert.Contains(t, stderr, "Your session has expired")
	_, ok := env.token()
	assert.False(t, ok)
}

func TestCLI_EventsFind(t *testing.T) {
	env := newCLIEnv(t)
	scriptDashboard(env.api)
	env.login()

	out, _, err := env.run("pic\n\njazz\n", "events", "find")

	require.NoError(t, err)
	assert.Contains(t, out, "> (all)")
	assert.Contains(t, out, "> jazz")
	assert.NotContains(t, out, "> pic")
	assert.Contains(t, out[strings.Index(out, "> jazz"):], "Jazz night")
	assert.NotContains(t, out[strings.Index(out, "> jazz"):], "Picnic")
}

func TestCLI_EventsCreate(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("POST /events", http.StatusCreated, `{"id":42}`)
	env.login()

	_, stderr, err := env.run("", "events", "create", "--title", "Picnic")
	require.Error(t, err)
	assert.Contains(t, stderr, "--date")
	assert.Nil(t, env.api.call("POST /events"))

	out, _, err := env.run("", "events", "create",
		"--title", "Picnic", "--date", "2025-06-01", "--time", "12:00",
		"--location", "Park", "--description", "Bring food")
	require.NoError(t, err)
	assert.Contains(t, out, "Event created (id 42)")
	assert.Equal(t, "7", env.api.call("POST /events").URL.Query().Get("user_id"))
}

func TestCLI_EventsShow(t *testing.T) {
	env := newCLIEnv(t)
	scriptDashboard(env.api)
	env.api.json("GET /events/invitations/sent", http.StatusOK, `[{"user_id":5,"name":"Cleo","status":"interested"}]`)
	env.api.json("GET /events/2/attendees", http.StatusOK, `[]`)
	env.login()

	out, _, err := env.run("", "events", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Picnic")
	assert.Contains(t, out, "You organize this event")
	assert.Contains(t, out, "Cleo")
	assert.Contains(t, out, "Interested")

	out, _, err = env.run("", "events", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Jazz night")
	assert.Contains(t, out, "No attendees yet")

	_, _, err = env.run("", "events", "show", "99")
	assert.ErrorIs(t, err, errEventNotFound)

	_, _, err = env.run("", "events", "show", "abc")
	assert.Error(t, err)
}

func TestCLI_EventsInvite(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("POST /events/1/invite", http.StatusOK, `{"message":"ok"}`)
	env.login()

	out, _, err := env.run("", "events", "invite", "1", "6")

	require.NoError(t, err)
	assert.Contains(t, out, "User 6 has been invited!")
	assert.JSONEq(t, `{"userId":6}`, env.api.body("POST /events/1/invite"))
	assert.Equal(t, "7", env.api.call("POST /events/1/invite").URL.Query().Get("inviter_id"))
}

func TestCLI_EventsRespond(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("PUT /events/2/attendance", http.StatusOK, `{"updated":true}`)
	env.login()

	_, _, err := env.run("", "events", "respond", "2", "--status", "maybe")
	require.Error(t, err)
	assert.Nil(t, env.api.call("PUT /events/2/attendance"))

	out, _, err := env.run("", "events", "respond", "2", "--status", "not_going")
	require.NoError(t, err)
	assert.Contains(t, out, "Response saved: Not going")
	assert.JSONEq(t, `{"user_id":7,"status":"not_going"}`, env.api.body("PUT /events/2/attendance"))
}

func TestCLI_EventsDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.api.handle("DELETE /events/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	env.login()

	out, _, err := env.run("n\n", "events", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	assert.Nil(t, env.api.call("DELETE /events/1"))

	out, _, err = env.run("y\n", "events", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Event 1 deleted")
	require.NotNil(t, env.api.call("DELETE /events/1"))

	env.api.json("DELETE /events/1", http.StatusForbidden, `{"detail":"Not the organizer"}`)
	_, stderr, err := env.run("", "events", "delete", "1", "--force")
	require.Error(t, err)
	assert.Contains(t, stderr, "Failed to delete event. Not the organizer")
}

func TestCLI_EventsSearch(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("GET /events/search", http.StatusOK, `{"data":[{"id":9,"title":"Jazz brunch"}]}`)

	out, _, err := env.run("", "events", "search", "--query", "jazz", "--to", "2025-12-31", "--size", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "Jazz brunch")
	query := env.api.call("GET /events/search").URL.Query()
	assert.Equal(t, "jazz", query.Get("q"))
	assert.Equal(t, "2025-12-31", query.Get("to"))
	assert.Equal(t, "5", query.Get("size"))
	assert.Empty(t, query.Get("user_id"), "no session, no user filter")
}

func TestCLI_EventsSearch_LoggedInSendsUser(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("GET /events/search", http.StatusOK, `[]`)
	env.login()

	out, _, err := env.run("", "events", "search", "--query", " jazz ")

	require.NoError(t, err)
	assert.Contains(t, out, "No events found")
	query := env.api.call("GET /events/search").URL.Query()
	assert.Equal(t, "jazz", query.Get("q"))
	assert.Equal(t, "7", query.Get("user_id"))
}

func TestNewSearchParams(t *testing.T) {
	p := newSearchParams(7, " jazz ", "2025-01-01 ", "", " Park", 4, 2, 10)

	assert.Equal(t, api.SearchParams{Q: "jazz", From: "2025-01-01", Location: "Park", OrganizerID: 4, UserID: 7, Page: 2, Size: 10}, p)
	assert.True(t, p.HasCriteria())
	assert.False(t, newSearchParams(7, "  ", "", "", "", 0, 3, 20).HasCriteria(), "user and paging alone are no search")
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestFindEmitter_LogsWriteFailure(t *testing.T) {
	var logs bytes.Buffer
	emit := findEmitter(errWriter{}, []api.Event{{ID: 1, Title: "Picnic"}}, nil, slog.New(slog.NewTextHandler(&logs, nil)))

	emit("pic")

	assert.Contains(t, logs.String(), "print search results")
	assert.Contains(t, logs.String(), "query=pic")
	assert.Contains(t, logs.String(), "closed pipe")
}

func TestCLI_UsersList(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("GET /users", http.StatusOK, `[
		{"id":5,"name":"Cleo","email":"cleo@example.com"},
		{"id":6,"name":"Dan","email":"dan@example.com"}
	]`)
	env.login()

	out, _, err := env.run("", "users", "list", "--query", "  DAN ")

	require.NoError(t, err)
	assert.Contains(t, out, "dan@example.com")
	assert.NotContains(t, out, "Cleo")
}

func TestCLI_InvitationsSent(t *testing.T) {
	env := newCLIEnv(t)
	env.api.json("GET /events/invitations/sent", http.StatusOK, `[{"user_id":5,"email":"cleo@example.com"}]`)
	env.login()

	out, _, err := env.run("", "invitations", "sent", "--event", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Invitations for event 1")
	assert.Contains(t, out, "cleo@example.com")
	assert.Contains(t, out, "Invited")
	query := env.api.call("GET /events/invitations/sent").URL.Query()
	assert.Equal(t, "7", query.Get("user_id"))
	assert.Equal(t, "1", query.Get("event_id"))
}

func TestCLI_Unreachable(t *testing.T) {
	env := newCLIEnv(t)
	env.apiURL = "http://127.0.0.1:1"
	env.login()

	_, stderr, err := env.run("", "whoami")

	require.Error(t, err)
	assert.Contains(t, stderr, "Could not reach the events API")
}
