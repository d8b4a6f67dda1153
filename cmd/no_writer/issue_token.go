package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Mint an access token for the metrics endpoints",
	Long:  `Mint a signed bearer token granting read access to /metrics. Requires JWT_SECRET.`,
	RunE:  runIssueToken,
}

var tokenSubject string

func init() {
	issueTokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Who the token is for, e.g. a dashboard name")
	_ = issueTokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(issueTokenCmd)
}

func runIssueToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	service, err := metricsAuth(cfg)
	if err != nil {
		return err
	}
	if service == nil {
		return errors.New("JWT_SECRET is not set; metrics endpoints are unauthenticated")
	}

	token, err := service.GenerateToken(tokenSubject)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
