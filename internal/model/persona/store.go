package persona

// Store is the read-only persona catalogue. Sessions are bound to a persona
// by id when created; the persona handler lists the same catalogue.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore keeps the built-in assistant personas in registration order,
// with an id index for session creation.
type MemoryStore struct {
	items []Persona
	byID  map[string]int
}

// NewMemoryStore copies items. A later persona with a duplicate id replaces
// the earlier one in place.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]int, len(items))}
	for _, item := range items {
		if i, ok := s.byID[item.ID]; ok {
			s.items[i] = item
			continue
		}
		s.byID[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

// List returns the personas in registration order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Persona{}, false
	}
	return s.items[i], true
}
