package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookInput(t *testing.T) {
	b, err := ParseBookInput(BookInput{
		Title:     "  The Hobbit ",
		Author:    "Tolkien",
		ISBN:      "978-0261103344",
		Publisher: "Allen & Unwin",
		Year:      " 1937",
		Category:  "Fantasy",
		Copies:    "3 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", b.Title)
	assert.Equal(t, 1937, b.Year)
	assert.Equal(t, 3, b.AvailableCount)
}

func TestParseBookInputProblems(t *testing.T) {
	tests := []struct {
		name string
		in   BookInput
		want []string
	}{
		{
			name: "missing title and author",
			in:   BookInput{Year: "2000", Copies: "1"},
			want: []string{"title is required", "author is required"},
		},
		{
			name: "non-numeric year",
			in:   BookInput{Title: "T", Author: "A", Year: "nineteen", Copies: "1"},
			want: []string{"year must be a whole number"},
		},
		{
			name: "negative copies",
			in:   BookInput{Title: "T", Author: "A", Year: "2000", Copies: "-1"},
			want: []string{"copies must not be negative"},
		},
		{
			name: "empty copies",
			in:   BookInput{Title: "T", Author: "A", Year: "2000"},
			want: []string{"copies must be a whole number"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBookInput(tt.in)
			require.ErrorIs(t, err, ErrValidation)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.want, ve.Problems)
		})
	}
}

func TestMemberInputValidation(t *testing.T) {
	valid := MemberInput{Name: "Ann", Email: "ann@example.com", Password: "abcd", Confirm: "abcd"}
	in := valid
	in.normalize()
	assert.NoError(t, validateInput(in))

	tests := []struct {
		name   string
		mutate func(*MemberInput)
		want   string
	}{
		{"short password", func(m *MemberInput) { m.Password, m.Confirm = "abc", "abc" }, "password must be at least 4 characters"},
		{"mismatched confirmation", func(m *MemberInput) { m.Confirm = "abce" }, "passwords do not match"},
		{"blank name", func(m *MemberInput) { m.Name = "   " }, "name is required"},
		{"missing email", func(m *MemberInput) { m.Email = "" }, "email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			in.normalize()
			err := validateInput(in)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAdministratorInputValidation(t *testing.T) {
	in := AdministratorInput{Username: "boss", Name: "Boss", Password: "abcd", Confirm: "abcd"}
	in.normalize()
	err := validateInput(in)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email is required")
}
