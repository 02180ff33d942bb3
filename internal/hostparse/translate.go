package hostparse

import "strings"

// ExprTranslator lowers a host-language expression fragment to the kernel
// C dialect. It is a pure external collaborator
// (`translate_c`); back-end translators receive one as a dependency rather
// than calling a package-level function, so tests can substitute a stub.
type ExprTranslator func(hostExpr string) (string, error)

// DefaultExprTranslator is a conservative standalone implementation of the
// host-to-C expression lowering. The host language's arithmetic,
// comparison, and assignment expression syntax already coincides with C's
// for the subset user functions are restricted to (the sole
// per-element parameter of a user function must be a primitive, a boxed
// primitive, Pixel, or one of Int16|Int32|Float32) so lowering degenerates
// to normalizing the handful of literal/keyword spellings that differ.
func DefaultExprTranslator(hostExpr string) (string, error) {
	out := hostExpr
	// Host float literal suffixes (1.0f) are valid C float literals too;
	// nothing to rewrite there. The null keyword differs:
	out = strings.ReplaceAll(out, "null", "NULL")
	return out, nil
}
