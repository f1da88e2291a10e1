// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/NotSilaev/MrStone/internal/clock"
	"github.com/NotSilaev/MrStone/internal/user/domain"
	appValidation "github.com/NotSilaev/MrStone/internal/validation"
)

// CreateUserInput contains the input data for user creation
type CreateUserInput struct {
	Name string `json:"name"`
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	userRepo UserRepository
	clock    clock.Clock
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(userRepo UserRepository, clk clock.Clock) UseCase {
	return &UserUseCase{
		userRepo: userRepo,
		clock:    clk,
	}
}

func (uc *UserUseCase) validateCreateUserInput(input CreateUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name, appValidation.NameRules()...),
	)
	return appValidation.WrapValidationError(err)
}

// Create validates the name and stores a new user. Names are unique.
func (uc *UserUseCase) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := uc.validateCreateUserInput(input); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      input.Name,
		CreatedAt: uc.clock.Now(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByName retrieves a user by name
func (uc *UserUseCase) GetByName(ctx context.Context, name string) (*domain.User, error) {
	return uc.userRepo.GetByName(ctx, name)
}

// GetByID retrieves a user by ID
func (uc *UserUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
