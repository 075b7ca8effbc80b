package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd - корневая команда; без подкоманды запускает HTTP сервер
var rootCmd = &cobra.Command{
	Use:   "ajali",
	Short: "Incident reporting API",
	Long: `Ajali accepts incident reports with photos and videos, lets admins move
them through their lifecycle and notifies reporters by email and SMS.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// @title Ajali Incident Reporting API
// @version 1.0
// @description Incident reporting API: users report incidents with attachments, admins change their status.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
