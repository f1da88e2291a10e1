// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/NotSilaev/MrStone/internal/user/usecase"
	appValidation "github.com/NotSilaev/MrStone/internal/validation"
)

// CreateUserRequest represents the API request for user creation
type CreateUserRequest struct {
	Name string `json:"name"`
}

// Validate validates the CreateUserRequest using the jellydator/validation library
func (r *CreateUserRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, appValidation.NameRules()...),
	)
	return appValidation.WrapValidationError(err)
}

// ToCreateUserInput converts the request to the use case input
func (r *CreateUserRequest) ToCreateUserInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{Name: r.Name}
}
