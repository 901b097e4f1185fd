package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/validation"
	"github.com/spf13/cobra"
)

var (
	userUsername string
	userEmail    string
	userPassword string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a local account",
	Long: `Creates a local account. The password is taken from --password or,
when that flag is omitted, from the YATUBE_PASSWORD environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := userPassword
		if password == "" {
			password = os.Getenv("YATUBE_PASSWORD")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		user, err := service.NewUserService(store, logger).Register(cmd.Context(), service.RegisterRequest{
			Username: userUsername,
			Email:    userEmail,
			Password: password,
		})
		if err != nil {
			var verrs validation.ValidationErrors
			if errors.As(err, &verrs) {
				for _, ve := range verrs {
					cmd.PrintErrf("%s: %s\n", ve.Field, ve.Message)
				}
			}
			return fmt.Errorf("create user: %w", err)
		}
		cmd.Printf("created user %s (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&userUsername, "username", "", "username (required)")
	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (default $YATUBE_PASSWORD)")
	_ = usersCreateCmd.MarkFlagRequired("username")
	usersCmd.AddCommand(usersCreateCmd)
}
