/*
Copyright 2026 The quartzfs Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package vfname implements path-component names that carry both a
// display form (exact user input, used for rendering and sorting) and a
// canonical form (used for equality and hashing), normalized according to
// a configurable Unicode form and case fold -- the pack's NFC/NFD and
// ASCII/Unicode case-folding option set, applied with
// golang.org/x/text/unicode/norm and golang.org/x/text/cases the way
// perkeep pulls in golang.org/x/text as a supporting dependency rather
// than hand-rolling Unicode normalization tables.
package vfname

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalForm selects a Unicode normalization form, or none.
type NormalForm int

const (
	NormNone NormalForm = iota
	NormNFC
	NormNFD
)

// CaseFold selects a case-folding strategy, or none.
type CaseFold int

const (
	FoldNone CaseFold = iota
	FoldASCII
	FoldUnicode
)

// Normalization bundles a Unicode normal form with a case fold. It is
// applied independently to produce a name's display form and its
// separately-configurable canonical form.
type Normalization struct {
	Form NormalForm
	Fold CaseFold
}

var unicodeFolder = cases.Fold()

func asciiFold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Apply normalizes s according to n's form and fold.
func (n Normalization) Apply(s string) string {
	switch n.Form {
	case NormNFC:
		s = norm.NFC.String(s)
	case NormNFD:
		s = norm.NFD.String(s)
	}
	switch n.Fold {
	case FoldASCII:
		s = asciiFold(s)
	case FoldUnicode:
		s = unicodeFolder.String(s)
	}
	return s
}

// Reserved directory-entry names.
const (
	Self   = "."
	Parent = ".."
)

// Name is a path component: the exact text the user supplied (Display)
// and the normalized text used for comparisons (Canonical).
type Name struct {
	Display   string
	Canonical string
}

// New builds a Name from raw user input, applying dispNorm to produce the
// display form and canonNorm to produce the canonical form.
func New(raw string, canonNorm, dispNorm Normalization) Name {
	return Name{
		Display:   dispNorm.Apply(raw),
		Canonical: canonNorm.Apply(raw),
	}
}

// IsSelf reports whether the name denotes ".".
func (n Name) IsSelf() bool { return n.Canonical == Self }

// IsParent reports whether the name denotes "..".
func (n Name) IsParent() bool { return n.Canonical == Parent }

// IsReserved reports whether the name is "." or "..", which may never be
// linked or unlinked as ordinary directory entries.
func (n Name) IsReserved() bool { return n.IsSelf() || n.IsParent() }

// Equal reports whether a and b are the same name under canonical-form
// comparison.
func Equal(a, b Name) bool { return a.Canonical == b.Canonical }
