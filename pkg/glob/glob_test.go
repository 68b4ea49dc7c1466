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

package glob

import "testing"

var sep = []rune{'/'}

func TestStarDoesNotCrossSeparator(t *testing.T) {
	m, err := Compile("*.txt", sep)
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchString("foo.txt") {
		t.Errorf("expected foo.txt to match *.txt")
	}
	if m.MatchString("a/b.txt") {
		t.Errorf("expected a/b.txt not to match *.txt")
	}
}

func TestDoubleStarCrossesSeparator(t *testing.T) {
	m, err := Compile("a/**/z", sep)
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchString("a/b/c/z") {
		t.Errorf("expected a/b/c/z to match a/**/z")
	}
}

func TestQuestionMark(t *testing.T) {
	m, err := Compile("fil?.txt", sep)
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchString("file.txt") || m.MatchString("fil.txt") || m.MatchString("filed.txt") {
		t.Errorf("? did not match exactly one non-separator char")
	}
}

func TestBraceAlternation(t *testing.T) {
	m, err := Compile("*.{go,txt}", sep)
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchString("x.go") || !m.MatchString("x.txt") || m.MatchString("x.md") {
		t.Errorf("brace alternation did not behave as expected")
	}
}

func TestCharacterClassWithNegationAndRange(t *testing.T) {
	m, err := Compile("[!a-c]bc", sep)
	if err != nil {
		t.Fatal(err)
	}
	if m.MatchString("abc") || !m.MatchString("dbc") {
		t.Errorf("negated class did not exclude a-c")
	}
}

func TestNestedBraceIsSyntaxError(t *testing.T) {
	if _, err := Translate("{a,{b,c}}", sep); err == nil {
		t.Errorf("nested brace accepted; want pattern-syntax error")
	}
}

func TestUnterminatedClassIsSyntaxError(t *testing.T) {
	if _, err := Translate("[abc", sep); err == nil {
		t.Errorf("unterminated class accepted; want pattern-syntax error")
	}
}

func TestMetacharactersAreEscaped(t *testing.T) {
	m, err := Compile("a.b+c", sep)
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchString("a.b+c") || m.MatchString("aXb+c") {
		t.Errorf("literal metacharacters were not escaped properly")
	}
}
