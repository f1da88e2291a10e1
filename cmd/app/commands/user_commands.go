package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	userUseCase "github.com/NotSilaev/MrStone/internal/user/usecase"
)

// RunCreateUser creates a user that bearer tokens can be issued to.
func RunCreateUser(
	ctx context.Context,
	useCase userUseCase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	user, err := useCase.Create(ctx, userUseCase.CreateUserInput{Name: name})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()), slog.String("name", user.Name))

	if format == FormatJSON {
		return writeJSON(writer, map[string]any{
			"id":         user.ID.String(),
			"name":       user.Name,
			"created_at": user.CreatedAt,
		})
	}

	_, _ = fmt.Fprintf(writer, "User created successfully\nID: %s\nName: %s\n", user.ID, user.Name)
	return nil
}
