package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kernelforge/internal/kerrors"
	"github.com/oxhq/kernelforge/internal/util"
)

const parallelFixture = `package com.example.app;

public class Processor {
    public void run() {
        final int scale = 2;
        BitmapImage img = new BitmapImage(100, 100);
        img.foreach((Pixel p) -> { p.scale(scale); });
        int w = img.width();
        Bitmap out = img.toHost();
    }
}
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileFilesRewritesHostSourceAndWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	srcPath := writeFixture(t, dir, "Processor.java", parallelFixture)
	outDir := filepath.Join(dir, "gen")

	o := New(Config{OutDir: outDir})
	summary, err := o.CompileFiles(context.Background(), []string{srcPath})
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)

	result := summary.Files[0]
	require.Nil(t, result.Err)
	assert.Equal(t, "compiled", result.Status)
	assert.Equal(t, 1, result.ClassesFound)

	rewritten, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	got := string(rewritten)

	assert.Contains(t, got, "processorWrapper.$imgIn(100, 100);",
		util.UnifiedDiff(parallelFixture, got, "Processor.java", 3, false))
	assert.Contains(t, got, "processorWrapper.imgForeach1(scale);")
	assert.Contains(t, got, "int w = processorWrapper.imgWidth();")
	assert.Contains(t, got, "Bitmap out = processorWrapper.$imgOut();")
	assert.NotContains(t, got, "new BitmapImage(")
	assert.Contains(t, got, "import ProcessorWrapperRS;")
	assert.Contains(t, got, "import ProcessorWrapperPM;")
	assert.Contains(t, got, "ProcessorWrapper processorWrapper = renderscript.isAvailable()")

	classDir := filepath.Join(outDir, "com", "example", "app")
	for _, name := range []string{
		"ProcessorWrapper.java",
		"ProcessorWrapperRS.java",
		"ProcessorWrapperPM.java",
		"Processor.rs",
		"Processor.cpp",
	} {
		_, statErr := os.Stat(filepath.Join(classDir, name))
		assert.NoError(t, statErr, "expected generated artifact %s", name)
	}

	rsKernel, err := os.ReadFile(filepath.Join(classDir, "Processor.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(rsKernel), "#pragma version(1)")
	assert.Contains(t, string(rsKernel), "#pragma rs java_package_name(com.example.app)")

	_, err = os.Stat(filepath.Join(outDir, "Android.mk"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "renderscript_exports.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "cppruntime_exports.txt"))
	assert.NoError(t, err)
}

func TestCompileFilesLeavesSourceWithoutDSLUntouched(t *testing.T) {
	dir := t.TempDir()
	const plain = `package com.example.app;

public class Plain {
    public int add(int a, int b) {
        return a + b;
    }
}
`
	srcPath := writeFixture(t, dir, "Plain.java", plain)
	outDir := filepath.Join(dir, "gen")

	o := New(Config{OutDir: outDir})
	summary, err := o.CompileFiles(context.Background(), []string{srcPath})
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	assert.Equal(t, "no_dsl", summary.Files[0].Status)

	after, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	assert.Equal(t, plain, string(after),
		util.UnifiedDiff(plain, string(after), "Plain.java", 3, false))

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "no_dsl run should write no output directory")
}

func TestCompileFilesIsDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	srcA := writeFixture(t, dirA, "Processor.java", parallelFixture)
	srcB := writeFixture(t, dirB, "Processor.java", parallelFixture)
	outA, outB := filepath.Join(dirA, "gen"), filepath.Join(dirB, "gen")

	_, err := New(Config{OutDir: outA}).CompileFiles(context.Background(), []string{srcA})
	require.NoError(t, err)
	_, err = New(Config{OutDir: outB}).CompileFiles(context.Background(), []string{srcB})
	require.NoError(t, err)

	rewrittenA, err := os.ReadFile(srcA)
	require.NoError(t, err)
	rewrittenB, err := os.ReadFile(srcB)
	require.NoError(t, err)
	assert.Equal(t, string(rewrittenA), string(rewrittenB),
		util.UnifiedDiff(string(rewrittenA), string(rewrittenB), "Processor.java", 3, false))

	classDir := "com/example/app"
	rsA, err := os.ReadFile(filepath.Join(outA, classDir, "Processor.rs"))
	require.NoError(t, err)
	rsB, err := os.ReadFile(filepath.Join(outB, classDir, "Processor.rs"))
	require.NoError(t, err)
	assert.Equal(t, string(rsA), string(rsB))
}

func TestCompileFilesDowngradesNonFinalCaptureToSequentialAndWrapsArray(t *testing.T) {
	dir := t.TempDir()
	const fixture = `package com.example.app;

public class Accumulator {
    public void run() {
        int total = 0;
        BitmapImage img = new BitmapImage(10, 10);
        img.foreach((Pixel p) -> { total += p.x(); });
    }
}
`
	srcPath := writeFixture(t, dir, "Accumulator.java", fixture)
	outDir := filepath.Join(dir, "gen")

	o := New(Config{OutDir: outDir})
	summary, err := o.CompileFiles(context.Background(), []string{srcPath})
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	result := summary.Files[0]
	require.Nil(t, result.Err)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, kerrors.KindNonFinalCapture, result.Diagnostics[0].Kind)

	rewritten, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	got := string(rewritten)
	assert.Contains(t, got, "int[] imgForeach1BoxTotal = new int[]{total};")
	assert.Contains(t, got, "accumulatorWrapper.imgForeach1(imgForeach1BoxTotal);")
	assert.Contains(t, got, "total = imgForeach1BoxTotal[0];")
}

func TestCompileFilesRecordsFatalFailurePerFileAndContinues(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, "Processor.java", parallelFixture)
	missing := filepath.Join(dir, "DoesNotExist.java")
	outDir := filepath.Join(dir, "gen")

	o := New(Config{OutDir: outDir})
	summary, err := o.CompileFiles(context.Background(), []string{missing, good})
	require.NoError(t, err)
	require.Len(t, summary.Files, 2)

	assert.Equal(t, "failed", summary.Files[0].Status)
	require.NotNil(t, summary.Files[0].Err)
	assert.Equal(t, kerrors.KindGenerationIO, summary.Files[0].Err.Kind)

	assert.Equal(t, "compiled", summary.Files[1].Status)
	assert.Nil(t, summary.Files[1].Err)
}
