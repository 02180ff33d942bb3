// Package orchestrator drives one compilation run end to end: for every
// input file it parses the host source, runs the symbol-table pass and
// the extraction/classification passes over every class found, dispatches
// each operation to both back-end translators, rewrites the original
// source to delegate through a generated wrapper, and writes every
// resulting artifact to the destination directory. It is the one package
// that calls internal/collector, internal/extractor, internal/classifier,
// internal/backend, and internal/rewriter together; every other package
// in the tree is a pure, independently testable collaborator this one
// wires up.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/oxhq/kernelforge/internal/backend"
	"github.com/oxhq/kernelforge/internal/backend/cppruntime"
	"github.com/oxhq/kernelforge/internal/backend/renderscript"
	"github.com/oxhq/kernelforge/internal/catalog"
	"github.com/oxhq/kernelforge/internal/classifier"
	"github.com/oxhq/kernelforge/internal/collector"
	"github.com/oxhq/kernelforge/internal/extractor"
	"github.com/oxhq/kernelforge/internal/genio"
	"github.com/oxhq/kernelforge/internal/hostparse"
	"github.com/oxhq/kernelforge/internal/kerrors"
	"github.com/oxhq/kernelforge/internal/ledger"
	"github.com/oxhq/kernelforge/internal/rewriter"
	"github.com/oxhq/kernelforge/internal/util"
)

// Config configures one Orchestrator. Catalog, Translator, and the two
// back-end Dispatch tables all have working defaults; zero-value Config
// is ready to use except for OutDir.
type Config struct {
	OutDir     string
	Catalog    *catalog.Catalog
	Translator hostparse.ExprTranslator
	Preferred  backend.Target // back-end instantiated first at runtime
	Secondary  backend.Target // fallback when Preferred reports unavailable
	RS         *backend.Dispatch
	CPP        *backend.Dispatch
	Logger     *slog.Logger

	// DB and RunID wire the run into the persistent ledger
	// (internal/ledger); both may be left zero to run without one, which
	// every orchestrator test does.
	DB    *gorm.DB
	RunID string
}

func (c Config) recordFile(path, status string, classesFound, artifactsWritten int, hashBefore, hashAfter string) {
	if c.DB == nil {
		return
	}
	if _, err := ledger.RecordFile(c.DB, c.RunID, path, status, classesFound, artifactsWritten, hashBefore, hashAfter); err != nil {
		c.Logger.Error("ledger record file failed", "file", path, "err", err)
	}
}

func (c Config) recordDiagnostic(d kerrors.Diagnostic) {
	if c.DB == nil {
		return
	}
	if err := ledger.RecordDiagnostic(c.DB, c.RunID, d); err != nil {
		c.Logger.Error("ledger record diagnostic failed", "err", err)
	}
}

func (c Config) recordFailure(cerr *kerrors.CompilationError) {
	if c.DB == nil {
		return
	}
	if err := ledger.RecordFailure(c.DB, c.RunID, cerr); err != nil {
		c.Logger.Error("ledger record failure failed", "err", err)
	}
}

// Orchestrator compiles a set of host-source files against one
// configuration. It holds no per-run mutable state itself; every field is
// read-only after New returns, matching the single process-wide
// read-only catalog every Orchestrator shares.
type Orchestrator struct {
	cfg Config
}

// New returns an Orchestrator, filling unset Config fields with their
// defaults (the built-in catalog, the conservative expression translator,
// both back-end dispatch tables, RenderScript preferred over the C++
// runtime, and a warn-level stderr logger).
func New(cfg Config) *Orchestrator {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Translator == nil {
		cfg.Translator = hostparse.DefaultExprTranslator
	}
	if cfg.RS == nil {
		cfg.RS = renderscript.Dispatch
	}
	if cfg.CPP == nil {
		cfg.CPP = cppruntime.Dispatch
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	if cfg.Preferred == cfg.Secondary {
		cfg.Preferred, cfg.Secondary = backend.RenderScript, backend.CPPRuntime
	}
	return &Orchestrator{cfg: cfg}
}

// FileResult summarizes one compiled file for the caller and the ledger.
type FileResult struct {
	Path             string
	Status           string // "compiled", "no_dsl", "failed"
	ClassesFound     int
	ArtifactsWritten int
	Diagnostics      []kerrors.Diagnostic
	Err              *kerrors.CompilationError
}

// Summary aggregates the results of one CompileFiles call.
type Summary struct {
	Files []FileResult
}

// CompileFiles compiles every path in order. A fatal failure in one file
// is recorded in its FileResult and does not prevent the remaining files
// from compiling: a fatal error is isolated to its own file. ctx is checked
// between files for cooperative cancellation only — compilation of a
// single file is not itself interruptible mid-phase. Once every file has
// been compiled, the build-script and shared-runtime-export artifacts that
// span the whole run (one Android.mk, one exports file per back-end) are
// written to cfg.OutDir.
func (o *Orchestrator) CompileFiles(ctx context.Context, paths []string) (Summary, error) {
	var summary Summary
	var cppUnits []string
	packages := map[string]bool{}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, units, pkg := o.compileFile(ctx, path)
		summary.Files = append(summary.Files, result)
		cppUnits = append(cppUnits, units...)
		if result.Status == "compiled" {
			packages[pkg] = true
		}
	}

	if len(cppUnits) == 0 {
		return summary, nil
	}

	pkgList := make([]string, 0, len(packages))
	for pkg := range packages {
		pkgList = append(pkgList, pkg)
	}
	if err := genio.WriteFile(filepath.Join(o.cfg.OutDir, "Android.mk"), []byte(androidMkContent(cppUnits))); err != nil {
		o.cfg.Logger.Error("write Android.mk failed", "err", err)
	}
	for _, target := range []backend.Target{backend.RenderScript, backend.CPPRuntime} {
		dest := filepath.Join(o.cfg.OutDir, target.String()+"_exports.txt")
		if err := genio.WriteFile(dest, []byte(sharedRuntimeExports(target.String(), pkgList))); err != nil {
			o.cfg.Logger.Error("write shared runtime exports failed", "target", target, "err", err)
		}
	}
	return summary, nil
}

// compileFile runs every phase against one file and, if it compiled
// cleanly, returns the relative paths of the C++ translation units it
// wrote (for the run-level Android.mk) alongside its host package name.
func (o *Orchestrator) compileFile(ctx context.Context, path string) (FileResult, []string, string) {
	log := o.cfg.Logger.With("file", path)

	source, err := os.ReadFile(path)
	if err != nil {
		cerr := kerrors.New(kerrors.KindGenerationIO, path, 0, kerrors.ErrGenerationIO, fmt.Sprintf("read source: %v", err))
		log.Error("read source failed", "err", err)
		result := FileResult{Path: path, Status: "failed", Err: cerr}
		o.cfg.recordFile(path, result.Status, 0, 0, "", "")
		o.cfg.recordFailure(cerr)
		return result, nil, ""
	}
	hashBefore := util.SHA1Hex(source)

	tree, err := hostparse.Parse(ctx, source)
	if err != nil {
		cerr := kerrors.New(kerrors.KindGenerationIO, path, 0, kerrors.ErrGenerationIO, fmt.Sprintf("parse: %v", err))
		log.Error("parse failed", "err", err)
		result := FileResult{Path: path, Status: "failed", Err: cerr}
		o.cfg.recordFile(path, result.Status, 0, 0, hashBefore, "")
		o.cfg.recordFailure(cerr)
		return result, nil, ""
	}
	defer tree.Close()

	_, units, err := collector.New().Collect(tree)
	if err != nil {
		cerr := asCompilationError(path, err)
		log.Error("first pass failed", "err", err)
		result := FileResult{Path: path, Status: "failed", Err: cerr}
		o.cfg.recordFile(path, result.Status, 0, 0, hashBefore, "")
		o.cfg.recordFailure(cerr)
		return result, nil, ""
	}
	if len(units) == 0 {
		result := FileResult{Path: path, Status: "no_dsl"}
		o.cfg.recordFile(path, result.Status, 0, 0, hashBefore, hashBefore)
		return result, nil, ""
	}

	pkg := packageName(tree)
	rw := rewriter.New()
	result := FileResult{Path: path, Status: "compiled", ClassesFound: len(units)}
	var cppUnits []string

	anyBind := false
	for _, unit := range units {
		compiled, cppUnit, diags, cerr := o.compileClass(path, tree, unit, pkg, rw)
		result.Diagnostics = append(result.Diagnostics, diags...)
		for _, d := range diags {
			log.Warn(d.Message, "line", d.Line, "kind", d.Kind)
			o.cfg.recordDiagnostic(d)
		}
		if cerr != nil {
			log.Error("class compilation failed", "class", unit.Scope.Name, "err", cerr)
			result.Status = "failed"
			result.Err = cerr
			o.cfg.recordFile(path, result.Status, result.ClassesFound, result.ArtifactsWritten, hashBefore, "")
			o.cfg.recordFailure(cerr)
			return result, nil, pkg
		}
		if compiled {
			anyBind = true
			result.ArtifactsWritten += artifactsPerClass
			cppUnits = append(cppUnits, cppUnit)
		}
	}

	if !anyBind {
		result.Status = "no_dsl"
		o.cfg.recordFile(path, result.Status, result.ClassesFound, 0, hashBefore, hashBefore)
		return result, nil, pkg
	}

	rewritten, err := rw.Apply(source)
	if err != nil {
		result.Status = "failed"
		result.Err = kerrors.New(kerrors.KindGenerationIO, path, 0, kerrors.ErrGenerationIO, err.Error())
		o.cfg.recordFile(path, result.Status, result.ClassesFound, result.ArtifactsWritten, hashBefore, "")
		o.cfg.recordFailure(result.Err)
		return result, nil, pkg
	}
	if err := genio.WriteFile(path, rewritten); err != nil {
		result.Status = "failed"
		result.Err = err.(*kerrors.CompilationError)
		o.cfg.recordFile(path, result.Status, result.ClassesFound, result.ArtifactsWritten, hashBefore, "")
		o.cfg.recordFailure(result.Err)
		return result, nil, pkg
	}
	result.ArtifactsWritten++
	hashAfter := util.SHA1Hex(rewritten)
	o.cfg.recordFile(path, result.Status, result.ClassesFound, result.ArtifactsWritten, hashBefore, hashAfter)
	return result, cppUnits, pkg
}

// compileClass runs the extraction, classification, artifact-generation,
// artifact-writing, and rewrite-edit phases for one class. It reports
// compiled=false (with no error) for a class the extractor found no
// binds, operations, or calls in, leaving the host source it belongs to
// untouched by this class.
func (o *Orchestrator) compileClass(path string, tree *hostparse.Tree, unit collector.ClassUnit, pkg string, rw *rewriter.Rewriter) (compiled bool, cppUnitPath string, diagnostics []kerrors.Diagnostic, cerr *kerrors.CompilationError) {
	binds, calls, err := extractor.New().ExtractClass(tree, unit, o.cfg.Catalog)
	if err != nil {
		return false, "", nil, asCompilationError(path, err)
	}
	if len(binds.InputBinds) == 0 && len(binds.Operations) == 0 && len(binds.OutputBinds) == 0 && len(calls) == 0 {
		return false, "", nil, nil
	}

	diagnostics = classifier.Classify(path, binds)

	art, cerr := buildClassArtifacts(path, unit.Scope.Name, o.cfg.Catalog, o.cfg.Translator, o.cfg.RS, o.cfg.CPP, o.cfg.Preferred, o.cfg.Secondary, binds, calls)
	if cerr != nil {
		return false, "", diagnostics, cerr
	}

	cppUnitPath, _, werr := writeClassArtifacts(o.cfg.OutDir, pkg, unit.Scope.Name, art)
	if werr != nil {
		return false, "", diagnostics, asCompilationError(path, werr)
	}

	appendClassEdits(rw, unit, art, binds, calls)
	return true, cppUnitPath, diagnostics, nil
}

// artifactsPerClass counts the fixed set of generated files one DSL-using
// class produces, independent of how many binds/operations it contains:
// the wrapper interface, two wrapper implementations, one kernel file, and
// one C++ translation unit.
const artifactsPerClass = 5

func asCompilationError(path string, err error) *kerrors.CompilationError {
	if cerr, ok := err.(*kerrors.CompilationError); ok {
		return cerr
	}
	return kerrors.New(kerrors.KindDuplicateInScope, path, 0, err, "")
}

func packageName(tree *hostparse.Tree) string {
	root := tree.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "package_declaration" {
			return tree.Text(child.NamedChild(0))
		}
	}
	return ""
}
