package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"eventmanagement/internal/domain"
	"eventmanagement/internal/repository/postgres"
	"eventmanagement/internal/services"
)

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users that can register for events",
	}

	var req domain.NewUserRequest
	create := &cobra.Command{
		Use:     "create",
		Short:   "Create a user",
		Example: `  server users create --email ann@example.com --name "Ann Lee"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := postgres.Open(cmd.Context(), cfg.DBUrl)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			svc := services.NewUserService(postgres.NewUserRepository(db), logger, cfg.ContextTimeout)
			user, err := svc.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}
	create.Flags().StringVar(&req.Email, "email", "", "user email (required)")
	create.Flags().StringVar(&req.Name, "name", "", "user display name (required)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}
