// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

// UserNameMaxLength is the longest user name the users table accepts.
const UserNameMaxLength = 30

var userNameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.\-]+( [\p{L}\p{N}_.\-]+)*$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// UserName validates letters, digits, "_", "." and "-" words separated by single spaces.
var UserName = validation.NewStringRuleWithError(
	func(s string) bool {
		return userNameRegex.MatchString(s)
	},
	validation.NewError("validation_user_name", "must contain only letters, digits, '_', '.', '-' and single spaces"),
)

// UUID validates the canonical textual form of a UUID.
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil && len(s) == 36
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// NameRules returns the rules applied to user names everywhere they enter the system.
func NameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("name is required"),
		NotBlank,
		NoWhitespace,
		validation.RuneLength(1, UserNameMaxLength).Error("name must be between 1 and 30 characters"),
		UserName,
	}
}
