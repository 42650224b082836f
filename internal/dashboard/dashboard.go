// Package dashboard reconciles the organized and invited event lists of a user
// into the tabbed dashboard view.
package dashboard

import (
	"context"
	"sync"

	"eventplanner-web/internal/api"
)

// Tab selects one of the dashboard collections.
type Tab string

const (
	TabAll       Tab = "all"
	TabOrganized Tab = "organized"
	TabInvited   Tab = "invited"
)

// ParseTab maps a route segment to a tab; anything unknown is TabAll.
func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabOrganized:
		return TabOrganized
	case TabInvited:
		return TabInvited
	default:
		return TabAll
	}
}

// Source fetches the two collections. *api.EventsService satisfies it.
type Source interface {
	Organized(ctx context.Context, userID int64) ([]api.Event, error)
	Invited(ctx context.Context, userID int64) ([]api.Event, error)
}

// Counts are the tab badges. All is the raw sum of the two collections, so an
// event that is both organized and invited is counted twice there.
type Counts struct {
	All       int
	Organized int
	Invited   int
}

// Snapshot is the settled state of both fetches. A failed fetch leaves its
// collection empty and its error set.
type Snapshot struct {
	Organized    []api.Event
	Invited      []api.Event
	All          []api.Event
	OrganizedErr error
	InvitedErr   error
	Counts       Counts
}

// Load fetches both collections concurrently and waits for both to settle.
// Neither failure blocks the other.
func Load(ctx context.Context, src Source, userID int64) *Snapshot {
	var (
		wg                       sync.WaitGroup
		organized, invited       []api.Event
		organizedErr, invitedErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		organized, organizedErr = src.Organized(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		invited, invitedErr = src.Invited(ctx, userID)
	}()
	wg.Wait()

	return NewSnapshot(orEmpty(organized, organizedErr), orEmpty(invited, invitedErr), organizedErr, invitedErr)
}

// NewSnapshot builds a snapshot from already fetched collections.
func NewSnapshot(organized, invited []api.Event, organizedErr, invitedErr error) *Snapshot {
	organized = orEmpty(organized, nil)
	invited = orEmpty(invited, nil)
	return &Snapshot{
		Organized:    organized,
		Invited:      invited,
		All:          Merge(organized, invited),
		OrganizedErr: organizedErr,
		InvitedErr:   invitedErr,
		Counts:       CountsOf(organized, invited),
	}
}

func orEmpty(events []api.Event, err error) []api.Event {
	if err != nil || events == nil {
		return []api.Event{}
	}
	return events
}

// Failed reports whether either fetch failed.
func (s *Snapshot) Failed() bool {
	return s.OrganizedErr != nil || s.InvitedErr != nil
}

// View returns the collection shown on tab.
func (s *Snapshot) View(tab Tab) []api.Event {
	switch tab {
	case TabOrganized:
		return s.Organized
	case TabInvited:
		return s.Invited
	default:
		return s.All
	}
}

// Find looks an event up in the merged collection.
func (s *Snapshot) Find(id int64) (api.Event, bool) {
	return Lookup(s.All, id)
}

// IsOrganizer reports whether id is one of the organized events.
func (s *Snapshot) IsOrganizer(id int64) bool {
	_, ok := Lookup(s.Organized, id)
	return ok
}

// Merge returns the union of organized and invited keyed by event id. An event
// keeps the position where it first appeared and the data of the last
// collection that carried it.
func Merge(organized, invited []api.Event) []api.Event {
	index := make(map[int64]int, len(organized)+len(invited))
	merged := make([]api.Event, 0, len(organized)+len(invited))

	for _, list := range [][]api.Event{organized, invited} {
		for _, e := range list {
			if i, ok := index[e.ID]; ok {
				merged[i] = e
				continue
			}
			index[e.ID] = len(merged)
			merged = append(merged, e)
		}
	}
	return merged
}

// CountsOf computes the tab badges.
func CountsOf(organized, invited []api.Event) Counts {
	return Counts{
		All:       len(organized) + len(invited),
		Organized: len(organized),
		Invited:   len(invited),
	}
}

// Lookup finds the event with id in events.
func Lookup(events []api.Event, id int64) (api.Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return api.Event{}, false
}
