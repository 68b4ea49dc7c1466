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

package vfname

import "testing"

// TestCaseFoldCollision verifies that Windows-style ASCII case folding
// makes "FOO" and "foo" the same canonical name.
func TestCaseFoldCollision(t *testing.T) {
	canon := Normalization{Fold: FoldASCII}
	disp := Normalization{}
	a := New("foo", canon, disp)
	b := New("FOO", canon, disp)
	if !Equal(a, b) {
		t.Fatalf("Equal(%+v, %+v) = false; want true", a, b)
	}
	if a.Display != "foo" || b.Display != "FOO" {
		t.Errorf("display forms altered: %q, %q", a.Display, b.Display)
	}
}

// TestNFDCanonicalNFCDisplay verifies that composed and decomposed
// forms of the same character compare equal under NFD canonicalization,
// while the display form stays NFC.
func TestNFDCanonicalNFCDisplay(t *testing.T) {
	canon := Normalization{Form: NormNFD, Fold: FoldASCII}
	disp := Normalization{Form: NormNFC}

	composed := "Amélie"        // é as one rune
	decomposed := "Amélie"     // e + combining acute

	a := New(composed, canon, disp)
	b := New(decomposed, canon, disp)
	if !Equal(a, b) {
		t.Fatalf("Equal(%+v, %+v) = false; want true", a, b)
	}
	if a.Display != "Amélie" {
		t.Errorf("display form = %q; want composed form", a.Display)
	}
}

func TestReservedNames(t *testing.T) {
	n := Name{Canonical: "."}
	if !n.IsSelf() || !n.IsReserved() {
		t.Errorf(". should be self and reserved")
	}
	n = Name{Canonical: ".."}
	if !n.IsParent() || !n.IsReserved() {
		t.Errorf(".. should be parent and reserved")
	}
	n = Name{Canonical: "regular"}
	if n.IsReserved() {
		t.Errorf("regular name reported reserved")
	}
}
