package main

import (
	"errors"
	"fmt"

	"github.com/blogicum/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	newUsername string
	newPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		user, err := service.NewUserService(gdb).Register(cmd.Context(), newUsername, newPassword)
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			return fmt.Errorf("user %q already exists", newUsername)
		case errors.Is(err, service.ErrPasswordInvalid):
			return fmt.Errorf("password must be at least %d characters", service.MinPasswordLength)
		case err != nil:
			return err
		}

		log.Info("user created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVarP(&newUsername, "username", "u", "", "username of the new account")
	createUserCmd.Flags().StringVarP(&newPassword, "password", "p", "", "password of the new account")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")
}
