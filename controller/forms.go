package controller

import (
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pkg/errors"
)

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

// messages flattens validation errors into flash messages, ordered by field.
func messages(err error) []string {
	verrs, ok := err.(validation.Errors)
	if !ok {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for f := range verrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, verrs[f].Error())
	}
	return msgs
}

func equals(other string, msg string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if s, _ := value.(string); s != other {
			return errors.New(msg)
		}
		return nil
	})
}

type signinForm struct {
	Email    string
	Password string
}

func (f signinForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email,
			validation.Required.Error("Email is not valid"),
			is.Email.Error("Email is not valid")),
		validation.Field(&f.Password,
			validation.Required.Error("Password cannot be blank")),
	)
}

type signupForm struct {
	Email    string
	Username string
	Password string
}

func (f signupForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email,
			validation.Required.Error("valid email required"),
			is.Email.Error("valid email required")),
		validation.Field(&f.Password,
			validation.Required.Error("Your password is too short"),
			validation.RuneLength(8, 0).Error("Your password is too short")),
		validation.Field(&f.Username,
			validation.Required.Error("Your username must be between 5 and 20 characters"),
			validation.RuneLength(5, 20).Error("Your username must be between 5 and 20 characters")),
	)
}

type passwordForm struct {
	Password        string
	ConfirmPassword string
}

func (f passwordForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Password,
			validation.Required.Error("Password must be at least 4 characters long"),
			validation.RuneLength(4, 0).Error("Password must be at least 4 characters long")),
		validation.Field(&f.ConfirmPassword,
			equals(f.Password, "Passwords do not match")),
	)
}

type forgotForm struct {
	Email string
}

func (f forgotForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email,
			validation.Required.Error("Please enter a valid email address."),
			is.Email.Error("Please enter a valid email address.")),
	)
}

type profileForm struct {
	Email    string
	Username string
}

func (f profileForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email,
			validation.Required.Error("Email is not valid"),
			is.Email.Error("Email is not valid")),
		validation.Field(&f.Username,
			validation.Required.Error("Your username must be between 5 and 20 characters"),
			validation.RuneLength(5, 20).Error("Your username must be between 5 and 20 characters")),
	)
}
