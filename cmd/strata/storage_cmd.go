// File: cmd/strata/storage_cmd.go
package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"strata/internal/flags"
	"strata/internal/provider/factory"
	"strata/internal/provider/registry"

	"github.com/spf13/cobra"
)

type storageFlags struct {
	providersList []string
	provider      string
	location      string
	bucket        string
	prefix        string
	output        string
	file          string
	contentType   string
	force         bool
}

func newStorageCmd() *cobra.Command {
	cmdFlags := storageFlags{}

	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage buckets and objects",
		Long:  `The storage command lists, describes, creates and deletes buckets, and manages the objects inside them.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List storage buckets",
		Long: `Lists all storage buckets. If no flags are provided, it queries all configured providers.
Use the --providers flag to specify which providers to query (e.g., --providers linode,aws).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			providersToQuery, err := resolveProvidersForList(cmdFlags.providersList, app.ProviderFactory)
			if err != nil {
				return err
			}

			allBuckets, err := app.StorageService.ListAllBuckets(cmd.Context(), providersToQuery)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case len(allBuckets) > 0:
				fmt.Fprintln(out, app.StorageFormatter.FormatBucketList(allBuckets))
			case len(providersToQuery) == 0:
				fmt.Fprintf(out, "No providers configured. Use 'strata config set'. Supported providers: %s\n", strings.Join(registry.GetSupportedProviders(), ", "))
			default:
				fmt.Fprintln(out, "No buckets found.")
			}
			return nil
		},
	}
	listCmd.Flags().StringSliceVarP(&cmdFlags.providersList, flags.Providers, flags.ProvidersShort, []string{}, "Specify providers to query (comma-separated). Defaults to all configured providers.")

	describeCmd := &cobra.Command{
		Use:   "describe [bucket-name]",
		Short: "Describe a specific storage bucket",
		Long: `Provides detailed information about a bucket. Without a name, the provider's configured
default bucket is described. For gcp with gcp.project set, labels, lifecycle rules and usage come
from the native GCS and Cloud Monitoring APIs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			bucketName := firstArg(args)
			bucketDetails, err := app.StorageService.DescribeBucket(cmd.Context(), bucketName, cmdFlags.provider)
			if err != nil {
				return fmt.Errorf("error describing bucket '%s' on %s: %w", bucketName, cmdFlags.provider, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), app.StorageFormatter.FormatBucketDetails(bucketDetails))
			return nil
		},
	}
	requireProviderFlag(describeCmd, &cmdFlags.provider, "The provider where the bucket resides (required)")

	createCmd := &cobra.Command{
		Use:   "create [bucket-name]",
		Short: "Create a new storage bucket",
		Long:  `Creates a new bucket on the specified provider. --location defaults to the provider's configured region.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			bucketName := args[0]
			if err := app.StorageService.CreateBucket(cmd.Context(), bucketName, cmdFlags.provider, cmdFlags.location); err != nil {
				return fmt.Errorf("error creating bucket '%s' on %s: %w", bucketName, cmdFlags.provider, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bucket '%s' created successfully on provider %s.\n", bucketName, cmdFlags.provider)
			return nil
		},
	}
	requireProviderFlag(createCmd, &cmdFlags.provider, "The provider to create the bucket on (required)")
	createCmd.Flags().StringVarP(&cmdFlags.location, flags.Location, flags.LocationShort, "", "The location/region to create the bucket in")

	deleteCmd := &cobra.Command{
		Use:   "delete [bucket-name]",
		Short: "Delete a storage bucket",
		Long:  `Deletes an empty bucket on the specified provider. You are asked to type the bucket name unless --force is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			bucketName := args[0]
			ok, err := confirmDestructive(app, cmdFlags.force, fmt.Sprintf("This will permanently delete bucket '%s' on %s.", bucketName, cmdFlags.provider), bucketName)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
				return nil
			}

			if err := app.StorageService.DeleteBucket(cmd.Context(), bucketName, cmdFlags.provider); err != nil {
				return fmt.Errorf("error deleting bucket '%s' on %s: %w", bucketName, cmdFlags.provider, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bucket '%s' deleted successfully from provider %s.\n", bucketName, cmdFlags.provider)
			return nil
		},
	}
	requireProviderFlag(deleteCmd, &cmdFlags.provider, "The provider where the bucket resides (required)")
	deleteCmd.Flags().BoolVarP(&cmdFlags.force, flags.Force, flags.ForceShort, false, "Skip the confirmation prompt")

	storageCmd.AddCommand(listCmd, describeCmd, createCmd, deleteCmd, newObjectCmd(&cmdFlags))
	return storageCmd
}

func newObjectCmd(cmdFlags *storageFlags) *cobra.Command {
	objectCmd := &cobra.Command{
		Use:   "object",
		Short: "Manage objects in a bucket",
		Long:  `List, describe, download, upload and delete objects. --bucket defaults to the provider's configured bucket.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List one level of objects under a prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			list, err := app.StorageService.ListObjects(cmd.Context(), cmdFlags.bucket, cmdFlags.provider, cmdFlags.prefix)
			if err != nil {
				return fmt.Errorf("error listing objects on %s: %w", cmdFlags.provider, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.StorageFormatter.FormatObjectList(list))
			return nil
		},
	}
	listCmd.Flags().StringVar(&cmdFlags.prefix, flags.Prefix, "", "Only list keys under this prefix")

	describeCmd := &cobra.Command{
		Use:   "describe [key]",
		Short: "Show an object's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			obj, err := app.StorageService.DescribeObject(cmd.Context(), cmdFlags.bucket, args[0], cmdFlags.provider)
			if err != nil {
				return fmt.Errorf("error describing object '%s' on %s: %w", args[0], cmdFlags.provider, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), app.StorageFormatter.FormatObjectDetails(obj))
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Download an object",
		Long:  `Downloads an object to --output, or to stdout when --output is omitted or "-".`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			body, err := app.StorageService.GetObject(cmd.Context(), cmdFlags.bucket, args[0], cmdFlags.provider)
			if err != nil {
				return fmt.Errorf("error getting object '%s' on %s: %w", args[0], cmdFlags.provider, err)
			}
			defer body.Close()

			out, err := openOutput(cmdFlags.output, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("error opening output: %w", err)
			}
			n, err := io.Copy(out, body)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("error downloading object '%s': %w", args[0], err)
			}
			app.Logger.Debug("Downloaded object", "key", args[0], "bytes", n)
			return nil
		},
	}
	getCmd.Flags().StringVarP(&cmdFlags.output, flags.Output, flags.OutputShort, "", "Destination file (default stdout)")

	putCmd := &cobra.Command{
		Use:   "put [key]",
		Short: "Upload a local file as an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			contentType := cmdFlags.contentType
			if cmdFlags.file != "" && cmdFlags.file != "-" {
				f, err := os.Open(cmdFlags.file)
				if err != nil {
					return fmt.Errorf("error opening file: %w", err)
				}
				defer f.Close()
				in = f
				if contentType == "" {
					contentType = mime.TypeByExtension(filepath.Ext(cmdFlags.file))
				}
			}

			if err := app.StorageService.PutObject(cmd.Context(), cmdFlags.bucket, args[0], cmdFlags.provider, in, contentType); err != nil {
				return fmt.Errorf("error uploading object '%s' on %s: %w", args[0], cmdFlags.provider, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Object '%s' uploaded successfully.\n", args[0])
			return nil
		},
	}
	putCmd.Flags().StringVar(&cmdFlags.file, flags.File, "", "Local file to upload (default stdin)")
	putCmd.Flags().StringVar(&cmdFlags.contentType, flags.ContentType, "", "Content-Type of the object (guessed from the file extension when omitted)")

	deleteCmd := &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			key := args[0]
			ok, err := confirmDestructive(app, cmdFlags.force, fmt.Sprintf("This will permanently delete object '%s'.", key), key)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
				return nil
			}

			if err := app.StorageService.DeleteObject(cmd.Context(), cmdFlags.bucket, key, cmdFlags.provider); err != nil {
				return fmt.Errorf("error deleting object '%s' on %s: %w", key, cmdFlags.provider, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Object '%s' deleted successfully.\n", key)
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&cmdFlags.force, flags.Force, flags.ForceShort, false, "Skip the confirmation prompt")

	for _, c := range []*cobra.Command{listCmd, describeCmd, getCmd, putCmd, deleteCmd} {
		requireProviderFlag(c, &cmdFlags.provider, "The provider where the bucket resides (required)")
		c.Flags().StringVarP(&cmdFlags.bucket, flags.Bucket, flags.BucketShort, "", "Bucket name (defaults to <provider>.bucket)")
	}

	objectCmd.AddCommand(listCmd, describeCmd, getCmd, putCmd, deleteCmd)
	return objectCmd
}

func requireProviderFlag(cmd *cobra.Command, target *string, usage string) {
	cmd.Flags().StringVarP(target, flags.Provider, flags.ProviderShort, "", usage)
	_ = cmd.MarkFlagRequired(flags.Provider)
}

func confirmDestructive(app *appContainer, force bool, message, expected string) (bool, error) {
	if force {
		return true, nil
	}
	return app.Prompter.Confirm(message, expected)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func resolveProvidersForList(requestedProviders []string, providerFactory *factory.Factory) ([]string, error) {
	if len(requestedProviders) == 0 {
		return providerFactory.GetConfiguredProviders(), nil
	}

	var validatedProviders []string
	var invalidProviders []string
	seen := make(map[string]bool)

	for _, p := range requestedProviders {
		p = strings.ToLower(strings.TrimSpace(p))

		if seen[p] {
			continue
		}
		seen[p] = true

		if !registry.IsSupported(p) {
			invalidProviders = append(invalidProviders, p)
			continue
		}
		if !providerFactory.IsConfigured(p) {
			return nil, fmt.Errorf("provider '%s' was requested but is not configured. Use 'strata config set %s.<key> <value>'", p, p)
		}
		validatedProviders = append(validatedProviders, p)
	}

	if len(invalidProviders) > 0 {
		return nil, fmt.Errorf("unsupported providers requested: %v. Supported providers are: %v", invalidProviders, registry.GetSupportedProviders())
	}

	return validatedProviders, nil
}
