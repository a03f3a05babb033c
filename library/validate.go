package library

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their json name when they have one.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// BookInput is a book as typed at the console, before parsing.
type BookInput struct {
	Title     string
	Author    string
	ISBN      string
	Publisher string
	Year      string
	Category  string
	Copies    string
}

// ParseBookInput trims and parses a BookInput. Title and author are required;
// year must be an integer and copies a non-negative integer.
func ParseBookInput(in BookInput) (*Book, error) {
	var problems []string

	b := &Book{
		Title:     strings.TrimSpace(in.Title),
		Author:    strings.TrimSpace(in.Author),
		ISBN:      strings.TrimSpace(in.ISBN),
		Publisher: strings.TrimSpace(in.Publisher),
		Category:  strings.TrimSpace(in.Category),
	}

	year, err := strconv.Atoi(strings.TrimSpace(in.Year))
	if err != nil {
		problems = append(problems, "year must be a whole number")
	}
	b.Year = year

	copies, err := strconv.Atoi(strings.TrimSpace(in.Copies))
	if err != nil {
		problems = append(problems, "copies must be a whole number")
	}
	b.AvailableCount = copies

	problems = append(problems, structProblems(b)...)
	if len(problems) > 0 {
		return nil, validationError(problems...)
	}
	return b, nil
}

// MemberInput is a member registration form.
type MemberInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required,min=4"`
	Confirm  string `validate:"eqfield=Password"`
	Phone    string
	Address  string
}

// AdministratorInput is an administrator registration form. Every field is
// required.
type AdministratorInput struct {
	Username string `validate:"required"`
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required,min=4"`
	Confirm  string `validate:"eqfield=Password"`
}

func (in *MemberInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
}

func (in *AdministratorInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

func validateInput(v any) error {
	if problems := structProblems(v); len(problems) > 0 {
		return validationError(problems...)
	}
	return nil
}

func structProblems(v any) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return msgs
}

// fieldError converts a single FieldError into a message fit for the console.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	if field == "available_count" {
		field = "copies"
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "eqfield":
		return "passwords do not match"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
