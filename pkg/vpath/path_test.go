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

package vpath

import (
	"testing"

	"github.com/quartzfs/quartzfs/pkg/vfname"
)

func posixService() *Service {
	return NewService(POSIX, vfname.Normalization{}, vfname.Normalization{}, true)
}

func windowsService(equalCanon bool) *Service {
	return NewService(Windows, vfname.Normalization{Fold: vfname.FoldASCII}, vfname.Normalization{}, equalCanon)
}

// TestParseRenderRoundTrip verifies that Parse(String(p)) yields a Path
// equal to p.
func TestParseRenderRoundTrip(t *testing.T) {
	svc := posixService()
	for _, raw := range []string{"/", "/a", "/a/b/c", "rel", "rel/sub"} {
		p, err := svc.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		rendered := svc.String(p)
		p2, err := svc.Parse(rendered)
		if err != nil {
			t.Fatalf("re-Parse(%q): %v", rendered, err)
		}
		if !Equal(p, p2) {
			t.Errorf("round trip %q -> %q not equal", raw, rendered)
		}
	}
}

// TestURIRoundTrip verifies that FromURI(ToURI(p)) yields a Path equal
// to p, for absolute paths.
func TestURIRoundTrip(t *testing.T) {
	svc := posixService()
	p, err := svc.Parse("/a/b c/d")
	if err != nil {
		t.Fatal(err)
	}
	uri, err := svc.ToURI("quartzfs", "myfs", p, false)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := svc.FromURI(uri)
	if err != nil {
		t.Fatalf("FromURI(%q): %v", uri, err)
	}
	if !Equal(p, p2) {
		t.Errorf("URI round trip: %+v != %+v (uri=%s)", p, p2, uri)
	}
}

func TestURIRoundTripWindowsDrive(t *testing.T) {
	svc := windowsService(true)
	p, err := svc.Parse(`C:\foo\bar`)
	if err != nil {
		t.Fatal(err)
	}
	uri, err := svc.ToURI("quartzfs", "myfs", p, true)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := svc.FromURI(uri)
	if err != nil {
		t.Fatalf("FromURI(%q): %v", uri, err)
	}
	if !Equal(p, p2) {
		t.Errorf("URI round trip: %+v != %+v (uri=%s)", p, p2, uri)
	}
}

// TestWindowsCaseInsensitiveCollision verifies that a case-insensitive
// Windows flavor treats "C:\" and "c:\" as the same path.
func TestWindowsCaseInsensitiveCollision(t *testing.T) {
	svc := windowsService(true)
	a, err := svc.Parse(`C:\`)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Parse(`c:\`)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(a, b) {
		t.Errorf(`Equal("C:\\", "c:\\") = false; want true`)
	}
}

func TestWindowsRejectsDriveRelativeAndCurrentDriveAbsolute(t *testing.T) {
	svc := windowsService(true)
	if _, err := svc.Parse(`C:foo`); err == nil {
		t.Errorf("Parse(C:foo) succeeded; want error")
	}
	if _, err := svc.Parse(`\foo`); err == nil {
		t.Errorf(`Parse(\foo) succeeded; want error`)
	}
}

func TestWindowsUNCRoot(t *testing.T) {
	svc := windowsService(true)
	p, err := svc.Parse(`\\host\share\dir\file`)
	if err != nil {
		t.Fatal(err)
	}
	if p.Root() != `\\host\share\` {
		t.Errorf("Root = %q; want %q", p.Root(), `\\host\share\`)
	}
	if got, want := p.Names(), []string{"dir", "file"}; !equalSlices(got, want) {
		t.Errorf("Names = %v; want %v", got, want)
	}
}

func TestWindowsInvalidNameChars(t *testing.T) {
	svc := windowsService(true)
	if _, err := svc.Parse(`C:\foo<bar`); err == nil {
		t.Errorf("Parse with invalid char succeeded; want error")
	}
}

func TestParentAtRoot(t *testing.T) {
	svc := posixService()
	p, _ := svc.Parse("/")
	if _, ok := p.Parent(); ok {
		t.Errorf("Parent of root reported ok; want false")
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
