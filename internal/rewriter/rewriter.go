// Package rewriter implements an append-only, token-range source editor:
// every host-source change the orchestrator makes — deleting a superseded
// declaration, replacing a bind creation with a delegation call, inserting
// back-end imports — is recorded as one Edit rather than applied
// immediately, then the whole batch is applied in one pass.
//
// Modeled on two independent precedents for this kind of edit-application
// strategy: sort-and-splice batched edits, and a single-rule rewrite pass
// scoped to one match at a time. This package generalizes both into one
// editor that also tolerates a strictly-contained edit coexisting with
// its container.
package rewriter

import (
	"fmt"
	"sort"

	"github.com/oxhq/kernelforge/internal/ir"
)

// Kind names one of the four edit operations a Rewriter supports.
type Kind int

const (
	InsertBefore Kind = iota
	InsertAfter
	Replace
	Delete
)

// Edit is one recorded source change against a ir.TokenAddress range.
type Edit struct {
	Kind  Kind
	Range ir.TokenAddress
	Text  string
	seq   int
}

// span returns the byte range this edit actually occupies in the original
// source: InsertBefore/InsertAfter target a zero-width point so they never
// conflict with edits elsewhere, Replace/Delete occupy Range as given.
func (e Edit) span() ir.TokenAddress {
	switch e.Kind {
	case InsertBefore:
		return ir.TokenAddress{Start: e.Range.Start, Stop: e.Range.Start}
	case InsertAfter:
		return ir.TokenAddress{Start: e.Range.Stop, Stop: e.Range.Stop}
	default:
		return e.Range
	}
}

// Rewriter accumulates edits against one file's source and applies them
// together. It is append-only: once added, an edit is never mutated or
// withdrawn.
type Rewriter struct {
	edits []Edit
	next  int
}

// New returns an empty Rewriter.
func New() *Rewriter { return &Rewriter{} }

func (r *Rewriter) add(e Edit) {
	e.seq = r.next
	r.next++
	r.edits = append(r.edits, e)
}

// InsertBefore records text to be inserted immediately before addr.
func (r *Rewriter) InsertBefore(addr ir.TokenAddress, text string) {
	r.add(Edit{Kind: InsertBefore, Range: addr, Text: text})
}

// InsertAfter records text to be inserted immediately after addr.
func (r *Rewriter) InsertAfter(addr ir.TokenAddress, text string) {
	r.add(Edit{Kind: InsertAfter, Range: addr, Text: text})
}

// Replace records addr's tokens being replaced by text.
func (r *Rewriter) Replace(addr ir.TokenAddress, text string) {
	r.add(Edit{Kind: Replace, Range: addr, Text: text})
}

// Delete records addr's tokens being removed entirely.
func (r *Rewriter) Delete(addr ir.TokenAddress) {
	r.add(Edit{Kind: Delete, Range: addr, Text: ""})
}

// Edits returns the edits recorded so far, in the order they were added.
func (r *Rewriter) Edits() []Edit { return append([]Edit(nil), r.edits...) }

// Overlaps reports every pair of recorded edits whose spans intersect
// without one strictly containing the other — the one arrangement the
// data-model invariant forbids.
func (r *Rewriter) Overlaps() []string {
	sorted := make([]Edit, len(r.edits))
	copy(sorted, r.edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].span().Start < sorted[j].span().Start })

	var bad []string
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i].span(), sorted[j].span()
			if a.Overlaps(b) {
				bad = append(bad, fmt.Sprintf("overlap between edits at %s and %s", a, b))
			}
		}
	}
	return bad
}

// Apply replays every recorded edit against source and returns the
// rewritten bytes. It walks the edits once in ascending offset order,
// copying untouched source between them and splicing in each edit's text,
// all measured against the original byte offsets rather than a
// progressively resized buffer. That single forward pass is what lets a
// strictly-contained edit coexist with the edit that contains it: once the
// containing edit's span is consumed the cursor has already jumped past
// the contained one, so it is silently subsumed instead of corrupting the
// splice the way replaying edits against a shifting buffer would.
// Edits sharing one offset apply in their recording order.
func (r *Rewriter) Apply(source []byte) ([]byte, error) {
	if bad := r.Overlaps(); len(bad) > 0 {
		return nil, fmt.Errorf("rewriter: %d overlapping edit(s): %v", len(bad), bad)
	}

	sorted := make([]Edit, len(r.edits))
	copy(sorted, r.edits)
	sort.Slice(sorted, func(i, j int) bool {
		si, sj := sorted[i].span(), sorted[j].span()
		if si.Start == sj.Start {
			return sorted[i].seq < sorted[j].seq
		}
		return si.Start < sj.Start
	})

	var result []byte
	cursor := 0
	for _, e := range sorted {
		span := e.span()
		if span.Start < 0 || span.Stop > len(source) || span.Start > span.Stop {
			return nil, fmt.Errorf("rewriter: edit out of bounds %s", span)
		}
		if span.Start < cursor {
			// Subsumed by an earlier, containing edit.
			continue
		}
		result = append(result, source[cursor:span.Start]...)
		result = append(result, []byte(e.Text)...)
		if span.Stop > cursor {
			cursor = span.Stop
		}
	}
	result = append(result, source[cursor:]...)
	return result, nil
}
