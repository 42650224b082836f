package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventplanner-web/internal/api"
	"eventplanner-web/internal/forms"
)

const (
	msgLoginFailed    = "Login failed. Please check your credentials."
	msgRegisterFailed = "Registration failed. Please try again."
	msgRegistered     = "Account created successfully. You can now log in."
)

func (a *App) newPage(c *gin.Context, title string) page {
	_, loggedIn := a.sessionFor(c).Get()
	return page{
		Title:    title,
		LoggedIn: loggedIn,
		Flashes:  a.popFlashes(c),
	}
}

func (a *App) renderAuth(c *gin.Context, status int, mode string, form interface{}, errs map[string]string, msg string) {
	title := "Log in"
	if mode == "register" {
		title = "Create account"
	}
	c.HTML(status, "auth.tmpl", authPage{
		page:   a.newPage(c, title),
		Mode:   mode,
		Form:   form,
		Errors: errs,
		Error:  msg,
	})
}

// ShowAuth renders /auth/login or /auth/register.
func (a *App) ShowAuth(c *gin.Context) {
	switch mode := c.Param("mode"); mode {
	case "login":
		a.renderAuth(c, http.StatusOK, mode, forms.LoginForm{}, nil, "")
	case "register":
		a.renderAuth(c, http.StatusOK, mode, forms.RegisterForm{}, nil, "")
	default:
		c.Redirect(http.StatusSeeOther, api.LoginRoute)
	}
}

// Login authenticates and sends the browser to the dashboard.
func (a *App) Login(c *gin.Context) {
	var form forms.LoginForm
	a.bindForm(c, &form)

	if err := forms.Validate(form); err != nil {
		ve, _ := forms.AsValidationError(err)
		a.renderAuth(c, http.StatusUnprocessableEntity, "login", form, fieldsOf(ve), "")
		return
	}

	resp, err := a.clientFor(c).Auth.Login(c.Request.Context(), form.Request())
	if err != nil {
		a.logger.Info("login rejected", slog.String("email", form.Email), slog.String("error", err.Error()))
		a.renderAuth(c, failureStatus(err), "login", forms.LoginForm{Email: form.Email}, nil, api.Message(err, msgLoginFailed))
		return
	}

	a.logger.Info("user logged in", slog.Int64("user_id", resp.UserID))
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Register creates an account and sends the browser to the login page.
func (a *App) Register(c *gin.Context) {
	var form forms.RegisterForm
	a.bindForm(c, &form)

	if err := forms.Validate(form); err != nil {
		ve, _ := forms.AsValidationError(err)
		form.Password, form.ConfirmPassword = "", ""
		a.renderAuth(c, http.StatusUnprocessableEntity, "register", form, fieldsOf(ve), "")
		return
	}

	if _, err := a.clientFor(c).Auth.Register(c.Request.Context(), form.Request()); err != nil {
		form.Password, form.ConfirmPassword = "", ""
		a.renderAuth(c, failureStatus(err), "register", form, nil, api.Message(err, msgRegisterFailed))
		return
	}

	a.addFlash(c, flashSuccess, msgRegistered)
	c.Redirect(http.StatusSeeOther, api.LoginRoute)
}

// Logout clears the session. No API call is made.
func (a *App) Logout(c *gin.Context) {
	if err := a.clientFor(c).Auth.Logout(); err != nil {
		a.logger.Warn("clear session", slog.String("error", err.Error()))
	}
	c.Redirect(http.StatusSeeOther, api.LoginRoute)
}

func fieldsOf(ve *forms.ValidationError) map[string]string {
	if ve == nil {
		return nil
	}
	return ve.Fields
}

// failureStatus picks the status of a page re-rendered after a failed API call.
func failureStatus(err error) int {
	switch code := api.StatusCode(err); {
	case code == 0:
		return http.StatusBadGateway
	case code >= 500:
		return http.StatusBadGateway
	default:
		return code
	}
}
