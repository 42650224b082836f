// Package forms validates user input before anything is sent to the API.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"eventplanner-web/internal/api"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidationError holds one message per invalid field, keyed by form field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Field returns the message for one field, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// Validate checks v against its validate tags. A failure is *ValidationError.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = message(fe)
		}
	}
	return out
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

func message(fe validator.FieldError) string {
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "datetime":
		if fe.Param() == timeLayout {
			return "Time must be HH:MM"
		}
		return "Date must be YYYY-MM-DD"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return label + " is invalid"
	}
}

var labels = map[string]string{
	"name":             "Name",
	"email":            "Email",
	"password":         "Password",
	"confirm_password": "Confirm password",
	"title":            "Title",
	"date":             "Date",
	"time":             "Time",
	"location":         "Location",
	"description":      "Description",
	"status":           "Status",
	"user_id":          "User",
}

const timeLayout = "15:04"

// LoginForm is the login page input.
type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

func (f LoginForm) Request() api.LoginRequest {
	return api.LoginRequest{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

// RegisterForm is the registration page input.
type RegisterForm struct {
	Name            string `form:"name" json:"name" validate:"required,min=2"`
	Email           string `form:"email" json:"email" validate:"required,email"`
	Password        string `form:"password" json:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" validate:"required,eqfield=Password"`
}

func (f RegisterForm) Request() api.RegisterRequest {
	return api.RegisterRequest{
		Name:            strings.TrimSpace(f.Name),
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}
}

// EventForm is the create-event page input.
type EventForm struct {
	Title       string `form:"title" json:"title" validate:"required"`
	Date        string `form:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `form:"time" json:"time" validate:"required,datetime=15:04"`
	Location    string `form:"location" json:"location" validate:"required"`
	Description string `form:"description" json:"description" validate:"required"`
}

func (f EventForm) Request() api.CreateEventRequest {
	return api.CreateEventRequest{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Location:    strings.TrimSpace(f.Location),
		Date:        f.Date,
		Time:        f.Time,
	}
}

// AttendanceForm is a response to an invitation.
type AttendanceForm struct {
	Status string `form:"status" json:"status" validate:"required,oneof=going interested not_going"`
}

func (f AttendanceForm) Request(userID int64) api.UpdateAttendanceRequest {
	return api.UpdateAttendanceRequest{UserID: userID, Status: api.AttendanceStatus(f.Status)}
}

// InviteForm picks the user to invite.
type InviteForm struct {
	UserID int64 `form:"user_id" json:"user_id" validate:"required,gt=0"`
}
