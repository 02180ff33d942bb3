package orchestrator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oxhq/kernelforge/internal/genio"
)

// destDir resolves the per-package output directory under outDir, mapping
// a dotted package name ("com.example.app") onto nested directories the
// way the host toolchain's own source layout would.
func destDir(outDir, pkg string) string {
	if pkg == "" {
		return outDir
	}
	return filepath.Join(outDir, filepath.Join(strings.Split(pkg, ".")...))
}

// renderRSKernelFile wraps a class's concatenated kernel bodies with the
// two pragmas every generated RenderScript kernel file needs.
func renderRSKernelFile(pkg, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#pragma version(1)\n")
	fmt.Fprintf(&b, "#pragma rs java_package_name(%s)\n\n", pkg)
	b.WriteString(body)
	return b.String()
}

// renderCPPUnit wraps a class's concatenated native kernel/bind bodies as
// one translation unit for the custom C++ runtime back-end.
func renderCPPUnit(className, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Generated custom-runtime translation unit for %s.\n", className)
	fmt.Fprintf(&b, "#include <cstdint>\n#include <cstring>\n\n")
	b.WriteString(body)
	return b.String()
}

// writeClassArtifacts writes every generated file for one class and
// returns the relative path of its C++ translation unit (for the
// once-per-compilation Android.mk) and the count of files written.
func writeClassArtifacts(outDir, pkg, className string, art *classArtifacts) (cppUnitRelPath string, written int, err error) {
	dir := destDir(outDir, pkg)

	files := map[string]string{
		className + "Wrapper.java":   art.InterfaceSource,
		className + "WrapperRS.java": art.RSImplSource,
		className + "WrapperPM.java": art.CPPImplSource,
		className + ".rs":            renderRSKernelFile(pkg, art.RSKernelSource),
	}
	cppUnitName := className + ".cpp"
	files[cppUnitName] = renderCPPUnit(className, art.CPPUnitSource)

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := genio.WriteFile(path, []byte(content)); err != nil {
			return "", written, err
		}
		written++
	}
	return filepath.Join(destDir("", pkg), cppUnitName), written, nil
}

// androidMkContent renders the single build-script file enumerating every
// generated C++ translation unit across the whole compilation run.
func androidMkContent(units []string) string {
	var b strings.Builder
	b.WriteString("LOCAL_PATH := $(call my-dir)\n")
	b.WriteString("include $(CLEAR_VARS)\n")
	b.WriteString("LOCAL_MODULE := kernelforge_runtime\n")
	b.WriteString("LOCAL_SRC_FILES := \\\n")
	for i, u := range units {
		sep := " \\\n"
		if i == len(units)-1 {
			sep = "\n"
		}
		fmt.Fprintf(&b, "  %s%s", u, sep)
	}
	b.WriteString("include $(BUILD_SHARED_LIBRARY)\n")
	return b.String()
}

// sharedRuntimeExports renders the once-per-back-end-per-destination
// runtime helper file, exported via
// export_internal_library(package, dest) for every package the run
// touched.
func sharedRuntimeExports(target string, packages []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Shared %s runtime helpers, exported per package.\n", target)
	for _, pkg := range packages {
		fmt.Fprintf(&b, "export_internal_library(%q, %q);\n", pkg, target)
	}
	return b.String()
}
