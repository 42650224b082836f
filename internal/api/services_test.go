package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"bare array", `[{"id":1},{"id":2}]`, []int64{1, 2}},
		{"envelope", `{"data":[{"id":3}],"message":"ok"}`, []int64{3}},
		{"envelope null data", `{"data":null}`, []int64{}},
		{"envelope missing data", `{"message":"ok"}`, []int64{}},
		{"empty array", `[]`, []int64{}},
		{"null", `null`, []int64{}},
		{"empty body", ``, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := UnwrapList[Event](json.RawMessage(tt.raw))
			require.NoError(t, err)
			require.NotNil(t, events)

			ids := make([]int64, 0, len(events))
			for _, e := range events {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUnwrapList_RejectsGarbage(t *testing.T) {
	_, err := UnwrapList[Event](json.RawMessage(`"nope"`))
	assert.Error(t, err)
}

func TestUnwrapOne(t *testing.T) {
	user, err := UnwrapOne[User](json.RawMessage(`{"id":1,"name":"Ann","email":"ann@example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	user, err = UnwrapOne[User](json.RawMessage(`{"data":{"id":2,"name":"Bob"}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)

	_, err = UnwrapOne[User](json.RawMessage(``))
	assert.Error(t, err)
}

func TestSearchParams_Values(t *testing.T) {
	assert.Empty(t, SearchParams{}.Values())

	v := SearchParams{Q: "jazz", From: "2025-01-01", OrganizerID: 4, Page: 2, Size: 20}.Values()
	assert.Equal(t, "from=2025-01-01&organizer_id=4&page=2&q=jazz&size=20", v.Encode())
	assert.NotContains(t, v, "to")
	assert.NotContains(t, v, "user_id")
}

func TestAuthService_LoginStoresUserID(t *testing.T) {
	_, client, store, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ann@example.com", req.Email)
		writeJSON(t, w, http.StatusOK, AuthResponse{UserID: 17, Name: "Ann", Email: req.Email, Message: "Login successful"})
	})

	resp, err := client.Auth.Login(context.Background(), LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(17), resp.UserID)

	token, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "17", token)

	id, err := client.Auth.CurrentUserID()
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
}

func TestAuthService_LoginWithoutUserID(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing", `{"message":"ok"}`},
		{"zero", `{"user_id":0}`},
		{"negative", `{"user_id":-4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client, store, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Auth.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "x"})
			require.Error(t, err)
			_, ok := store.Get()
			assert.False(t, ok)
		})
	}
}

func TestAuthService_LogoutMakesNoRequest(t *testing.T) {
	var calls int
	_, client, store, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	require.NoError(t, store.Save("5"))
	require.True(t, client.Auth.LoggedIn())

	require.NoError(t, client.Auth.Logout())

	assert.Zero(t, calls)
	assert.False(t, client.Auth.LoggedIn())
	_, err := client.Auth.CurrentUserID()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAuthService_CurrentUserIDRejectsNonNumericToken(t *testing.T) {
	_, client, store, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, store.Save("abc"))

	_, err := client.Auth.CurrentUserID()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoginThenLoadDashboardLists(t *testing.T) {
	seen := map[string]string{}
	_, client, _, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			writeJSON(t, w, http.StatusOK, AuthResponse{UserID: 8})
		case "/events/organized":
			seen["organized"] = r.URL.Query().Get("user_id") + " " + r.Header.Get("Authorization")
			writeJSON(t, w, http.StatusOK, []Event{{ID: 1}})
		case "/events/invited":
			seen["invited"] = r.URL.Query().Get("user_id") + " " + r.Header.Get("Authorization")
			writeJSON(t, w, http.StatusOK, map[string]interface{}{"data": []Event{{ID: 2}}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	resp, err := client.Auth.Login(ctx, LoginRequest{Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)

	organized, err := client.Events.Organized(ctx, resp.UserID)
	require.NoError(t, err)
	invited, err := client.Events.Invited(ctx, resp.UserID)
	require.NoError(t, err)

	assert.Len(t, organized, 1)
	assert.Len(t, invited, 1)
	assert.Equal(t, "8 Bearer 8", seen["organized"])
	assert.Equal(t, "8 Bearer 8", seen["invited"])
}

func TestEventsService_Paths(t *testing.T) {
	type call struct {
		method string
		uri    string
		body   string
	}
	var calls []call
	_, client, store, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, call{r.Method, r.URL.RequestURI(), string(body)})
		switch r.Method {
		case http.MethodPut:
			writeJSON(t, w, http.StatusOK, UpdateAttendanceResponse{Updated: true})
		case http.MethodPost:
			writeJSON(t, w, http.StatusOK, map[string]interface{}{"id": 5, "message": "ok"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(t, w, http.StatusOK, []interface{}{})
		}
	})
	require.NoError(t, store.Save("3"))
	ctx := context.Background()

	created, err := client.Events.Create(ctx, 3, CreateEventRequest{Title: "Picnic", Date: "2025-06-01", Time: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)

	_, err = client.Events.Attendees(ctx, 5, 0)
	require.NoError(t, err)
	_, err = client.Events.Attendees(ctx, 5, 3)
	require.NoError(t, err)

	invite, err := client.Events.Invite(ctx, 5, 9, 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", invite.Message)

	updated, err := client.Events.UpdateAttendance(ctx, 5, UpdateAttendanceRequest{UserID: 3, Status: StatusGoing})
	require.NoError(t, err)
	assert.True(t, updated.Updated)

	require.NoError(t, client.Events.Delete(ctx, 5, 0))
	require.NoError(t, client.Events.Delete(ctx, 5, 3))

	_, err = client.Events.Search(ctx, SearchParams{Q: "jazz", Location: "Cairo"})
	require.NoError(t, err)
	_, err = client.Events.SentInvitations(ctx, 3, 0)
	require.NoError(t, err)
	_, err = client.Events.SentInvitations(ctx, 3, 5)
	require.NoError(t, err)
	_, err = client.Users.List(ctx)
	require.NoError(t, err)

	require.Len(t, calls, 11)
	assert.Equal(t, "POST", calls[0].method)
	assert.Equal(t, "/events?user_id=3", calls[0].uri)
	assert.JSONEq(t, `{"title":"Picnic","date":"2025-06-01","time":"12:00"}`, calls[0].body)
	assert.Equal(t, "/events/5/attendees", calls[1].uri)
	assert.Equal(t, "/events/5/attendees?user_id=3", calls[2].uri)
	assert.Equal(t, "/events/5/invite?inviter_id=3", calls[3].uri)
	assert.JSONEq(t, `{"userId":9}`, calls[3].body)
	assert.Equal(t, "PUT", calls[4].method)
	assert.Equal(t, "/events/5/attendance", calls[4].uri)
	assert.JSONEq(t, `{"user_id":3,"status":"going"}`, calls[4].body)
	assert.Equal(t, call{"DELETE", "/events/5", ""}, calls[5])
	assert.Equal(t, call{"DELETE", "/events/5?user_id=3", ""}, calls[6])
	assert.Equal(t, "/events/search?location=Cairo&q=jazz", calls[7].uri)
	assert.Equal(t, "/events/invitations/sent?user_id=3", calls[8].uri)
	assert.Equal(t, "/events/invitations/sent?event_id=5&user_id=3", calls[9].uri)
	assert.Equal(t, "/users", calls[10].uri)
}

func TestUsersService_Me(t *testing.T) {
	_, client, _, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("user_id"))
		writeJSON(t, w, http.StatusOK, map[string]interface{}{"data": User{ID: 4, Name: "Dee", Email: "dee@example.com"}})
	})

	me, err := client.Users.Me(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Dee", me.Name)
}
