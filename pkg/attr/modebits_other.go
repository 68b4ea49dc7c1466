//go:build !unix

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

package attr

// Mode bit values matching their POSIX meaning, for platforms where
// golang.org/x/sys/unix does not build. The virtual filesystem's mode
// bits are synthetic regardless of host OS; these keep the numeric
// values identical to the unix-tagged file's so tests behave the same
// on every build platform.
const (
	modeIRUSR = 0o400
	modeIWUSR = 0o200
	modeIXUSR = 0o100
	modeIRGRP = 0o040
	modeIWGRP = 0o020
	modeIXGRP = 0o010
	modeIROTH = 0o004
	modeIWOTH = 0o002
	modeIXOTH = 0o001

	modeIFREG = 0o100000
	modeIFDIR = 0o040000
	modeIFLNK = 0o120000
)
