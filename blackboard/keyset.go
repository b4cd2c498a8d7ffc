package blackboard

import "sort"

// KeySet owns the keys declared by one configuration asset. Looking up the
// same name twice returns the same key; two sets never share keys.
type KeySet struct {
	keys map[string]*Key
}

func NewKeySet(names ...string) *KeySet {
	s := &KeySet{keys: make(map[string]*Key, len(names))}
	for _, n := range names {
		s.Declare(n)
	}
	return s
}

// Declare returns the key for name, creating it on first use.
func (s *KeySet) Declare(name string) *Key {
	if k, ok := s.keys[name]; ok {
		return k
	}
	k := NewKey(name)
	s.keys[name] = k
	return k
}

// Lookup returns the key declared under name.
func (s *KeySet) Lookup(name string) (*Key, bool) {
	if s == nil {
		return nil, false
	}
	k, ok := s.keys[name]
	return k, ok
}

// Names returns the declared names in sorted order.
func (s *KeySet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.keys))
	for n := range s.keys {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
