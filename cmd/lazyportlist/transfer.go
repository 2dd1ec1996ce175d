//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"lazyportlist/internal/backup"
	"lazyportlist/internal/editor"
	"lazyportlist/internal/gmp"
	"lazyportlist/internal/logger"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <port-list-id>",
	Short: "Export a port list as XML",
	Long: `Export a port list in the manager's export format.

The file is written to portlist-<id>.xml in the current directory unless
--output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a port list from an XML export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var backupsCmd = &cobra.Command{
	Use:   "backups <port-list-id>",
	Short: "List local backups of a port list",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackups,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	defer logger.Close()
	if err != nil {
		return err
	}
	client, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer client.Logout()

	ctrl := editor.New(client, editor.Callbacks{})
	res := ctrl.Download(cmd.Context(), args[0])
	if !res.OK() {
		return fmt.Errorf("export %s: %w", args[0], res.Err)
	}

	path := exportOutput
	if path == "" {
		path = res.Download.Filename
	}
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "[DRY-RUN] would write %d bytes to %s\n", len(res.Download.Data), path)
		return nil
	}
	if err := os.WriteFile(path, res.Download.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", args[0], path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	defer logger.Close()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	pl, err := gmp.ParsePortListXML(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "[DRY-RUN] would import %q with %d ranges\n", pl.Name, len(pl.PortRanges))
		return nil
	}

	client, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer client.Logout()

	ctrl := editor.New(client, editor.Callbacks{})
	if err := ctrl.OpenImportDialog(); err != nil {
		return err
	}
	res := ctrl.Import(cmd.Context(), gmp.ImportData{Filename: filepath.Base(args[0]), XML: data})
	if !res.OK() {
		return fmt.Errorf("import %s: %w", args[0], res.Err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s\n", pl.Name, res.EntityID)
	return nil
}

func runBackups(cmd *cobra.Command, args []string) error {
	_, err := setup()
	defer logger.Close()
	if err != nil {
		return err
	}

	items, err := backup.ListBackups(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintf(out, "No backups for %s\n", args[0])
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSIZE\tDESCRIPTION\tPATH")
	for _, b := range items {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", b.Time.Format("2006-01-02 15:04:05"), b.Size, b.Description, b.Path)
	}
	return w.Flush()
}
