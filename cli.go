package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"eventplanner-web/internal/api"
	"eventplanner-web/internal/dashboard"
	"eventplanner-web/internal/forms"
	"eventplanner-web/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	Long: `Log in to the events API. The session is kept in the session file
(see --session-file) until you log out or the API rejects it.

The password is read from standard input when --password is not given.`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Browse registered users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, optionally filtered by name or email",
	RunE:  runUsersList,
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (read from stdin when empty)")

	registerCmd.Flags().String("name", "", "display name")
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "password (read from stdin when empty)")
	registerCmd.Flags().String("confirm-password", "", "password confirmation (defaults to --password)")

	usersListCmd.Flags().StringP("query", "q", "", "filter by name or email")

	usersCmd.AddCommand(usersListCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(usersCmd)
}

// getClient returns a client whose session lives in the CLI session file.
func getClient() (*api.Client, error) {
	path := cfg.Session.File
	if path == "" {
		p, err := session.DefaultFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithNavigator(api.NavigatorFunc(func(route string) {
			logger.Debug("session cleared by the API", slog.String("route", route))
		})),
	}
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}
	return api.NewClient(cfg.API.BaseURL, session.NewFileStore(path), opts...), nil
}

// fail reports err on the command's stderr and returns it.
func fail(cmd *cobra.Command, err error) error {
	printError(cmd.ErrOrStderr(), err)
	return err
}

// readLine prompts on stderr and reads one line from the command's stdin.
func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(prompt), ":"), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		if password, err = readLine(cmd, "Password: "); err != nil {
			return err
		}
	}

	form := forms.LoginForm{Email: email, Password: password}
	if err := forms.Validate(form); err != nil {
		return fail(cmd, err)
	}

	resp, err := client.Auth.Login(cmd.Context(), form.Request())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), api.Message(err, msgLoginFailed))
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	name := resp.Name
	if name == "" {
		name = resp.Email
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (user %d)\n", name, resp.UserID)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	confirm, _ := cmd.Flags().GetString("confirm-password")
	if confirm == "" {
		confirm = password
	}
	if password == "" {
		if password, err = readLine(cmd, "Password: "); err != nil {
			return err
		}
		if confirm, err = readLine(cmd, "Confirm password: "); err != nil {
			return err
		}
	}

	form := forms.RegisterForm{Name: name, Email: email, Password: password, ConfirmPassword: confirm}
	if err := forms.Validate(form); err != nil {
		return fail(cmd, err)
	}

	resp, err := client.Auth.Register(cmd.Context(), form.Request())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), api.Message(err, msgRegisterFailed))
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msgRegistered)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	if err := client.Auth.Logout(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	userID, err := client.Auth.CurrentUserID()
	if err != nil {
		return fail(cmd, err)
	}

	me, err := client.Users.Me(cmd.Context(), userID)
	if err != nil {
		return fail(cmd, err)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), me)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (user %d)\n", me.Name, me.Email, me.ID)
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	users, err := client.Users.List(cmd.Context())
	if err != nil {
		return fail(cmd, err)
	}
	query, _ := cmd.Flags().GetString("query")
	users = dashboard.FilterUsers(users, query)

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"users": users,
			"count": len(users),
		})
	}

	if len(users) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No users found")
		return nil
	}

	w := newTable(cmd.OutOrStdout())
	printTableHeader(w, "ID", "NAME", "EMAIL")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	return w.Flush()
}
