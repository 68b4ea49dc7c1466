//go:build unix

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

import "golang.org/x/sys/unix"

// Mode bits sourced from golang.org/x/sys/unix so the "unix" and
// "posix" views synthesize the same S_IF*/S_I*USR constants a real
// POSIX stat(2) would report.
const (
	modeIRUSR = unix.S_IRUSR
	modeIWUSR = unix.S_IWUSR
	modeIXUSR = unix.S_IXUSR
	modeIRGRP = unix.S_IRGRP
	modeIWGRP = unix.S_IWGRP
	modeIXGRP = unix.S_IXGRP
	modeIROTH = unix.S_IROTH
	modeIWOTH = unix.S_IWOTH
	modeIXOTH = unix.S_IXOTH

	modeIFREG = unix.S_IFREG
	modeIFDIR = unix.S_IFDIR
	modeIFLNK = unix.S_IFLNK
)
