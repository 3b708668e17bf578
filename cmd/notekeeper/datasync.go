package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/bootstrap"
	"github.com/at-ishikawa/notekeeper/internal/database"
	"github.com/at-ishikawa/notekeeper/internal/datasync"
	"github.com/at-ishikawa/notekeeper/schemas"
)

func withStores(cmd *cobra.Command, fn func(ctx context.Context, stores *bootstrap.Stores) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, stores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			cliLogger.Warn("failed to close the database", zap.Error(err))
		}
	}()
	return fn(ctx, stores)
}

func newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all categories, folders and records as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, func(ctx context.Context, stores *bootstrap.Stores) error {
				return runExport(ctx, stores, output, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (stdout when empty)")
	return cmd
}

func runExport(ctx context.Context, stores *bootstrap.Stores, output string, stdout io.Writer) error {
	exporter := datasync.NewExporter(stores.Records, stores.Folders, stores.Categories)
	if output == "" {
		return exporter.Export(ctx, stdout)
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", output, err)
	}
	if err := exporter.Export(ctx, file); err != nil {
		_ = file.Close()
		return fmt.Errorf("exporter.Export() > %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("file.Close() > %w", err)
	}
	cliLogger.Info("exported a snapshot", zap.String("path", output))
	return nil
}

func newImportCommand() *cobra.Command {
	var file string
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a YAML snapshot into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			return withStores(cmd, func(ctx context.Context, stores *bootstrap.Stores) error {
				return runImport(ctx, stores, file, datasync.ImportOptions{
					DryRun:         dryRun,
					UpdateExisting: updateExisting,
				}, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Snapshot file to import")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the database")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update existing folders and records with new data")
	return cmd
}

func runImport(ctx context.Context, stores *bootstrap.Stores, file string, opts datasync.ImportOptions, stdout io.Writer) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("os.Open(%s) > %w", file, err)
	}
	defer func() {
		_ = f.Close()
	}()

	importer := datasync.NewImporter(stores.Records, stores.Folders, stores.Categories, stdout)
	result, err := importer.Import(ctx, f, opts)
	if err != nil {
		return fmt.Errorf("importer.Import() > %w", err)
	}

	fmt.Fprintln(stdout, "\nImport Summary:")
	if opts.DryRun {
		fmt.Fprintln(stdout, "  (dry-run mode, no changes made)")
	}
	fmt.Fprintf(stdout, "  Categories: %d new, %d skipped\n", result.CategoriesNew, result.CategoriesSkipped)
	fmt.Fprintf(stdout, "  Folders:    %d new, %d skipped, %d updated\n", result.FoldersNew, result.FoldersSkipped, result.FoldersUpdated)
	fmt.Fprintf(stdout, "  Records:    %d new, %d skipped, %d updated\n", result.RecordsNew, result.RecordsSkipped, result.RecordsUpdated)
	fmt.Fprintf(stdout, "  Links:      %d new, %d skipped\n", result.LinksNew, result.LinksSkipped)
	fmt.Fprintf(stdout, "  Warnings:   %d\n", result.Warnings)
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the MySQL schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, func(_ context.Context, stores *bootstrap.Stores) error {
				return runMigrate(stores, cmd.OutOrStdout())
			})
		},
	}
}

func runMigrate(stores *bootstrap.Stores, stdout io.Writer) error {
	if stores.SQL == nil {
		fmt.Fprintln(stdout, "Nothing to migrate: indexes of the mongo driver are created on connect")
		return nil
	}
	migrator, err := database.NewMySQLMigrator(stores.SQL.DB, schemas.Migrations, cliLogger)
	if err != nil {
		return fmt.Errorf("database.NewMySQLMigrator() > %w", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			cliLogger.Warn("failed to close the migrator", zap.Error(err))
		}
	}()
	return applyMigrations(migrator, stdout)
}

func applyMigrations(migrator *database.Migrator, stdout io.Writer) error {
	from, to, err := migrator.Up()
	if err != nil {
		return fmt.Errorf("migrator.Up() > %w", err)
	}
	if from == to {
		fmt.Fprintf(stdout, "Schema is up to date (version %d)\n", to)
		return nil
	}
	fmt.Fprintf(stdout, "  [APPLIED] version %d -> %d\n", from, to)
	return nil
}
