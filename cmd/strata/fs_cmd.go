// File: cmd/strata/fs_cmd.go
package main

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"strata/internal/flags"
	"strata/pkg/formatter"
	"strata/pkg/storage"
	"strata/pkg/storage/fsview"

	"github.com/spf13/cobra"
)

type fsFlags struct {
	provider string
	bucket   string
}

func newFsCmd() *cobra.Command {
	cmdFlags := fsFlags{}

	fsCmd := &cobra.Command{
		Use:   "fs",
		Short: "Browse a bucket as a read-only filesystem",
		Long: `Treats "/" in object keys as directory separators. Paths are relative to the
bucket root; a leading "<bucket>/" is accepted and stripped.`,
	}

	openView := func(cmd *cobra.Command) (*fsview.BucketFS, string, error) {
		app, err := appFromContext(cmd.Context())
		if err != nil {
			return nil, "", err
		}
		view, err := app.StorageService.OpenFilesystem(cmdFlags.provider, cmdFlags.bucket)
		if err != nil {
			return nil, "", err
		}
		return view.FS.WithContext(cmd.Context()), view.RootPath, nil
	}

	lsCmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, root, err := openView(cmd)
			if err != nil {
				return err
			}

			dir := fsPath(root, firstArg(args))
			entries, err := fs.ReadDir(fsys, dir)
			if err != nil {
				return err
			}

			table := formatter.NewTable([]string{"NAME", "SIZE", "MODIFIED"})
			for _, e := range entries {
				info, err := e.Info()
				if err != nil {
					return err
				}
				name, size, modified := e.Name(), storage.FormatBytes(info.Size()), ""
				if e.IsDir() {
					name, size = name+"/", "-"
				} else {
					modified = info.ModTime().Format("2006-01-02 15:04:05")
				}
				table.AddRow([]string{name, size, modified})
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.String())
			return nil
		},
	}

	statCmd := &cobra.Command{
		Use:   "stat [path]",
		Short: "Show a file or directory's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, root, err := openView(cmd)
			if err != nil {
				return err
			}

			name := fsPath(root, args[0])
			info, err := fs.Stat(fsys, name)
			if err != nil {
				return err
			}

			table := formatter.NewTable([]string{"Parameter", "Value"})
			table.AddRow([]string{"Path", root + strings.TrimPrefix(name, ".")})
			table.AddRow([]string{"Mode", info.Mode().String()})
			if !info.IsDir() {
				table.AddRow([]string{"Size", storage.FormatBytes(info.Size())})
				table.AddRow([]string{"Modified", info.ModTime().Format("2006-01-02 15:04:05")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.String())
			return nil
		},
	}

	catCmd := &cobra.Command{
		Use:   "cat [path]",
		Short: "Print a file's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, root, err := openView(cmd)
			if err != nil {
				return err
			}

			f, err := fsys.Open(fsPath(root, args[0]))
			if err != nil {
				return err
			}
			defer f.Close()

			_, err = io.Copy(cmd.OutOrStdout(), f)
			return err
		},
	}

	duCmd := &cobra.Command{
		Use:   "du [path]",
		Short: "Summarize the bytes stored under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys, root, err := openView(cmd)
			if err != nil {
				return err
			}

			dir := fsPath(root, firstArg(args))
			total, err := fsview.DiskUsage(fsys, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", storage.FormatBytes(total), root+strings.TrimPrefix(dir, "."))
			return nil
		},
	}

	for _, c := range []*cobra.Command{lsCmd, statCmd, catCmd, duCmd} {
		requireProviderFlag(c, &cmdFlags.provider, "The provider where the bucket resides (required)")
		c.Flags().StringVarP(&cmdFlags.bucket, flags.Bucket, flags.BucketShort, "", "Bucket name (defaults to <provider>.bucket)")
	}

	fsCmd.AddCommand(lsCmd, statCmd, catCmd, duCmd)
	return fsCmd
}

// Converts a user path into an fs.FS name relative to the bucket root
func fsPath(root, p string) string {
	p = strings.TrimPrefix(strings.TrimPrefix(p, "/"), root)
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}
	return p
}
