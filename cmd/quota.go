package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/copylab/adlens/internal/analyzer"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Print the API key's current rate allowance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		quota, err := analyzer.FetchQuota(cmd.Context(), client)
		if err != nil {
			return eris.Wrap(err, "quota")
		}

		fmt.Printf("max requests: %d\ninterval:     %s\n", quota.MaxRequests, quota.Interval)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}
