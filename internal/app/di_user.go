package app

import (
	"fmt"

	"github.com/NotSilaev/MrStone/internal/database"
	userHTTP "github.com/NotSilaev/MrStone/internal/user/http"
	userRepository "github.com/NotSilaev/MrStone/internal/user/repository"
	userUseCase "github.com/NotSilaev/MrStone/internal/user/usecase"
)

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (userUseCase.UserRepository, error) {
	return c.userRepository.get(func() (userUseCase.UserRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for user repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverMySQL:
			return userRepository.NewMySQLUserRepository(db), nil
		case database.DriverPostgres:
			return userRepository.NewPostgreSQLUserRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// UserUseCase returns the user use case.
func (c *Container) UserUseCase() (userUseCase.UseCase, error) {
	return c.userUseCase.get(func() (userUseCase.UseCase, error) {
		userRepo, err := c.UserRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
		}
		return userUseCase.NewUserUseCase(userRepo, c.Clock()), nil
	})
}

// UserHandler returns the HTTP handler for user operations.
func (c *Container) UserHandler() (*userHTTP.UserHandler, error) {
	return c.userHandler.get(func() (*userHTTP.UserHandler, error) {
		useCase, err := c.UserUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
		}
		return userHTTP.NewUserHandler(useCase, c.Logger()), nil
	})
}
