// File: cmd/strata/check_cmd.go
package main

import (
	"fmt"
	"strings"

	"strata/internal/flags"
	"strata/internal/provider/registry"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var bucket string

	checkCmd := &cobra.Command{
		Use:   "check [provider...]",
		Short: "Report whether providers have everything needed to connect",
		Long: `Validates the configured arguments and resolves the endpoint for each provider
(all supported providers when none are named). Problems are reported, not returned as errors;
no network requests are made.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			providers := args
			if len(providers) == 0 {
				providers = registry.GetSupportedProviders()
			}

			out := cmd.OutOrStdout()
			for i, p := range providers {
				if i > 0 {
					fmt.Fprintln(out)
				}
				c := app.StorageService.Check(strings.ToLower(p), bucket)
				fmt.Fprintln(out, app.StorageFormatter.FormatConfirmation(c))
			}
			return nil
		},
	}
	checkCmd.Flags().StringVarP(&bucket, flags.Bucket, flags.BucketShort, "", "Bucket to check instead of <provider>.bucket")

	return checkCmd
}
