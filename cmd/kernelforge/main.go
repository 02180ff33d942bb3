// Command kernelforge compiles host sources annotated with the embedded
// collection/operation DSL into RenderScript and C++ runtime back-ends,
// rewriting each input file in place to delegate to the generated wrapper.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oxhq/kernelforge/internal/catalog"
	"github.com/oxhq/kernelforge/internal/ledger"
	"github.com/oxhq/kernelforge/internal/orchestrator"
	"github.com/oxhq/kernelforge/internal/scanner"
)

// envCatalogAccessorClasses lists the built-in catalog classes a
// --catalog override file is allowed to extend with extra accessor
// names, via a KERNELFORGE_CATALOG_ACCESSORS_<CLASS> variable holding a
// comma-separated list (e.g. KERNELFORGE_CATALOG_ACCESSORS_BITMAPIMAGE=channels).
var envCatalogAccessorClasses = []string{"BitmapImage", "HDRImage", "Array", "Pixel"}

// envOutDir is the destination-directory override variable a --catalog
// file may set, honored only when --out itself was left empty.
const envOutDir = "KERNELFORGE_OUT_DIR"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kernelforge",
		Short:         "Compile the embedded collection/operation DSL into parallel back-ends",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCompileCmd())
	return root
}

func newCompileCmd() *cobra.Command {
	var (
		outDir      string
		catalogPath string
		historyRun  string
		ledgerDSN   string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "compile [flags] <source-file-or-glob>...",
		Short: "Compile one or more host-source targets",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyRun != "" {
				return printHistory(ledgerDSN, historyRun)
			}
			return runCompile(cmd.Context(), args, outDir, catalogPath, ledgerDSN, verbose)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "destination directory for generated artifacts (required)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "optional path to a .env-style catalog override file")
	cmd.Flags().StringVar(&historyRun, "history", "", "print the ledger entry for a past run ID and exit")
	cmd.Flags().StringVar(&ledgerDSN, "ledger", "kernelforge.db", "sqlite path for the compilation ledger")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	return cmd
}

func runCompile(ctx context.Context, targets []string, outDir, catalogPath, ledgerDSN string, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	if outDir == "" {
		outDir = os.Getenv(envOutDir)
	}
	if outDir == "" {
		return fmt.Errorf("--out is required (or set %s in the --catalog override file)", envOutDir)
	}

	db, err := ledger.Connect(ledgerDSN, verbose)
	if err != nil {
		return fmt.Errorf("connecting ledger: %w", err)
	}
	run, err := ledger.BeginRun(db)
	if err != nil {
		return fmt.Errorf("starting run: %w", err)
	}

	files, err := scanner.New(scanner.Config{}).ScanTargets(ctx, targets)
	if err != nil {
		_ = ledger.FinishRun(db, run.ID, "failed")
		return fmt.Errorf("scanning targets: %w", err)
	}
	if len(files) == 0 {
		_ = ledger.FinishRun(db, run.ID, "failed")
		return fmt.Errorf("no host-source files found among %v", targets)
	}

	o := orchestrator.New(orchestrator.Config{
		OutDir:  outDir,
		Catalog: cat,
		Logger:  logger,
		DB:      db,
		RunID:   run.ID,
	})

	summary, err := o.CompileFiles(ctx, files)
	status := "completed"
	failed := 0
	for _, r := range summary.Files {
		if r.Status == "failed" {
			failed++
		}
	}
	if err != nil || failed > 0 {
		status = "failed"
	}
	if finishErr := ledger.FinishRun(db, run.ID, status); finishErr != nil {
		logger.Error("finishing run failed", "err", finishErr)
	}
	if err != nil {
		return fmt.Errorf("compiling: %w", err)
	}

	for _, r := range summary.Files {
		logger.Info("compiled file", "file", r.Path, "status", r.Status, "classes", r.ClassesFound, "artifacts", r.ArtifactsWritten)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to compile (run %s)", failed, len(summary.Files), run.PublicULID)
	}
	return nil
}

// loadCatalog returns the built-in collection/operation catalog, extended
// by a .env-style override file if one was given via --catalog. The
// override mechanism is deliberately narrow: godotenv loads the file's
// KEY=VALUE pairs into the process environment, and only the
// KERNELFORGE_CATALOG_ACCESSORS_<CLASS> variables (see
// envCatalogAccessorClasses) and envOutDir are consulted, since the
// catalog itself has no serialization format of its own.
func loadCatalog(path string) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if path == "" {
		return cat, nil
	}
	if err := godotenv.Load(path); err != nil {
		return nil, err
	}

	for _, className := range envCatalogAccessorClasses {
		key := "KERNELFORGE_CATALOG_ACCESSORS_" + strings.ToUpper(className)
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		cat = cat.WithExtraAccessors(className, strings.Split(val, ","))
	}

	return cat, nil
}

func printHistory(dsn, runID string) error {
	db, err := ledger.Connect(dsn, false)
	if err != nil {
		return fmt.Errorf("connecting ledger: %w", err)
	}
	run, err := ledger.RunDetail(db, runID)
	if err != nil {
		return fmt.Errorf("loading run %s: %w", runID, err)
	}
	fmt.Printf("run %s (%s): %s, started %s\n", run.PublicULID, run.ID, run.Status, run.StartedAt.Format("2006-01-02 15:04:05"))
	for _, f := range run.Files {
		fmt.Printf("  %s: %s (%d classes, %d artifacts)\n", f.Path, f.Status, f.ClassesFound, f.ArtifactsWritten)
	}
	for _, d := range run.Diagnostics {
		fmt.Printf("  [%s] %s:%d %s\n", d.Severity, d.File, d.Line, d.Message)
	}
	return nil
}
