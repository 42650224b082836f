package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"eventplanner-web/internal/api"
	"eventplanner-web/internal/forms"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printTableHeader(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

// printError explains err on w in terms a user can act on.
func printError(w io.Writer, err error) {
	if ve, ok := forms.AsValidationError(err); ok {
		for _, name := range sortedKeys(ve.Fields) {
			fmt.Fprintf(w, "  --%s: %s\n", strings.ReplaceAll(name, "_", "-"), ve.Fields[name])
		}
		return
	}

	switch {
	case errors.Is(err, api.ErrAuthExpired):
		fmt.Fprintln(w, "Your session has expired. Run 'eventplanner login' to log in again.")
	case errors.Is(err, api.ErrNoSession):
		fmt.Fprintln(w, "You are not logged in. Run 'eventplanner login' first.")
	case api.StatusCode(err) == 0:
		var netErr *api.NetworkError
		if errors.As(err, &netErr) {
			fmt.Fprintf(w, "Could not reach the events API: %v\n", netErr.Err)
			return
		}
		fmt.Fprintf(w, "Error: %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %s (HTTP %d)\n", api.Message(err, "request failed"), api.StatusCode(err))
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
