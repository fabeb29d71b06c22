package store

// MockAliasStore is an in-memory AliasLoader for tests.
type MockAliasStore struct {
	Mappings  map[string][]string
	LoadError error
}

// LoadAliases returns aliases built from Mappings, or LoadError.
func (m *MockAliasStore) LoadAliases() (*Aliases, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return NewAliases(m.Mappings), nil
}
