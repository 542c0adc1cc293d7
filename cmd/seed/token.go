package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"qualiobra/internal/config"
	"qualiobra/internal/service"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a user token for local runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		email, _ := cmd.Flags().GetString("email")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		token, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer).IssueUserToken(userID, email, ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "User id placed in the sub claim")
	tokenCmd.Flags().String("email", "", "User email")
	tokenCmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("user")
}
