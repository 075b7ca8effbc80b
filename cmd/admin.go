package main

import (
	"fmt"
	"os"

	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/pkg/postgres"
	"github.com/spf13/cobra"
)

// adminCmd управляет правами администратора; через API их выдать нельзя
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant <email>",
	Short: "Give an existing user admin rights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd, args[0], true)
	},
}

var adminRevokeCmd = &cobra.Command{
	Use:   "revoke <email>",
	Short: "Take admin rights away from a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAdmin(cmd, args[0], false)
	},
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new user and make it an admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		username, _ := flags.GetString("username")
		email, _ := flags.GetString("email")
		password, _ := flags.GetString("password")
		phone, _ := flags.GetString("phone")

		cfg, log, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}
		db, err := postgres.NewPostgresDB(cmd.Context(), cfg.DatabaseURL, 1)
		if err != nil {
			return err
		}
		defer db.Close()

		users, _, _ := newUserStack(cfg, db, log)

		input := models.RegisterInput{Username: username, Email: email, Password: password}
		if phone != "" {
			input.Phone = &phone
		}
		user, err := users.Register(cmd.Context(), input)
		if err != nil {
			return err
		}
		if err := users.SetAdmin(cmd.Context(), user.Email, true); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s <%s> created with id %s\n", user.Username, user.Email, user.ID)
		return nil
	},
}

func setAdmin(cmd *cobra.Command, email string, isAdmin bool) error {
	cfg, log, err := loadConfig(os.Stderr)
	if err != nil {
		return err
	}
	db, err := postgres.NewPostgresDB(cmd.Context(), cfg.DatabaseURL, 1)
	if err != nil {
		return err
	}
	defer db.Close()

	users, _, _ := newUserStack(cfg, db, log)
	if err := users.SetAdmin(cmd.Context(), email, isAdmin); err != nil {
		return err
	}

	action := "granted to"
	if !isAdmin {
		action = "revoked from"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin rights %s %s\n", action, email)
	return nil
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminGrantCmd, adminRevokeCmd, adminCreateCmd)

	flags := adminCreateCmd.Flags()
	flags.String("username", "", "username of the new admin")
	flags.String("email", "", "email of the new admin")
	flags.String("password", "", "password of the new admin")
	flags.String("phone", "", "optional phone number for SMS notifications")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")
}
