package reflectcatalog

import (
	"fmt"
	"reflect"
	"sync"
)

type attachedKey struct {
	target any
	owner  *Type
	name   string
}

// attachedStore keeps attached property values outside their targets.
// Targets must be comparable, which pointers to registered structs are.
type attachedStore struct {
	values map[attachedKey]any
	mu     sync.RWMutex
}

func newAttachedStore() *attachedStore {
	return &attachedStore{values: make(map[attachedKey]any)}
}

func (s *attachedStore) set(target any, owner *Type, name string, value any) error {
	if target == nil || !reflect.TypeOf(target).Comparable() {
		return fmt.Errorf("attached %s.%s: target %T cannot hold attached values", owner.name, name, target)
	}
	s.mu.Lock()
	s.values[attachedKey{target: target, owner: owner, name: name}] = value
	s.mu.Unlock()
	return nil
}

func (s *attachedStore) get(target any, owner *Type, name string) (any, bool) {
	if target == nil || !reflect.TypeOf(target).Comparable() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[attachedKey{target: target, owner: owner, name: name}]
	return v, ok
}
