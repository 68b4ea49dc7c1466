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

// Package attr implements per-file metadata grouped by view (basic,
// owner, posix, unix, dos, acl, user), composed from a set of Providers
// the way perkeep's pkg/schema composes a file's unix/posix attributes
// (UnixPermission, UnixOwnerId, ...) from a flat JSON attribute map, but
// generalized to arbitrary, pluggable attribute views instead of one
// fixed schema.
package attr

import "sync"

// Store holds one file's attribute values, keyed by "view:attr".
type Store struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]interface{})}
}

// Get returns the raw stored value for key, if any. Computed
// (non-stored) attributes are not visible here -- callers go through
// Service.ReadAttributes for those.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key from the store.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// CopyTo replaces target's values with a copy of s's, for the attribute
// half of a file copy that leaves content untouched.
func (s *Store) CopyTo(target *Store) {
	s.mu.RLock()
	values := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	s.mu.RUnlock()
	target.mu.Lock()
	target.values = values
	target.mu.Unlock()
}

// Keys returns every stored key with the given view prefix ("view:").
func (s *Store) Keys(viewPrefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.values {
		if len(k) > len(viewPrefix) && k[:len(viewPrefix)] == viewPrefix {
			keys = append(keys, k)
		}
	}
	return keys
}
