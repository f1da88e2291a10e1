package app

import (
	"fmt"

	authHTTP "github.com/NotSilaev/MrStone/internal/auth/http"
	authRepository "github.com/NotSilaev/MrStone/internal/auth/repository"
	authMySQL "github.com/NotSilaev/MrStone/internal/auth/repository/mysql"
	authService "github.com/NotSilaev/MrStone/internal/auth/service"
	authUseCase "github.com/NotSilaev/MrStone/internal/auth/usecase"
	"github.com/NotSilaev/MrStone/internal/database"
)

// TokenService returns the token hashing service.
func (c *Container) TokenService() authService.TokenService {
	service, _ := c.tokenService.get(func() (authService.TokenService, error) {
		return authService.NewTokenService(), nil
	})
	return service
}

// TokenRepository returns the token repository based on database driver.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	return c.tokenRepository.get(func() (authUseCase.TokenRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for token repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverMySQL:
			return authMySQL.NewMySQLTokenRepository(db), nil
		case database.DriverPostgres:
			return authRepository.NewPostgreSQLTokenRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// TokenUseCase returns the token use case, wrapped with metrics when they are enabled.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	return c.tokenUseCase.get(c.initTokenUseCase)
}

// TokenHandler returns the HTTP handler for token operations.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	return c.tokenHandler.get(func() (*authHTTP.TokenHandler, error) {
		tokenUseCase, err := c.TokenUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
		}
		return authHTTP.NewTokenHandler(tokenUseCase, c.Logger()), nil
	})
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for token use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	useCase := authUseCase.NewTokenUseCase(
		txManager,
		userRepo,
		tokenRepo,
		c.TokenService(),
		c.Clock(),
		c.config.AuthTokenExpiration,
		c.Logger(),
	)

	if !c.config.MetricsEnabled {
		return useCase, nil
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}
	return authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
}
