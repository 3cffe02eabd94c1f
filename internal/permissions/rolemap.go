package permissions

// RoleMap maps role names to created role IDs in creation order.
// Setting an existing name keeps its position and replaces the ID.
type RoleMap struct {
	order []string
	ids   map[string]string
}

func NewRoleMap() *RoleMap {
	return &RoleMap{ids: make(map[string]string)}
}

// Set records name -> id. The last write for a name wins.
func (m *RoleMap) Set(name, id string) {
	if m.ids == nil {
		m.ids = make(map[string]string)
	}
	if _, ok := m.ids[name]; !ok {
		m.order = append(m.order, name)
	}
	m.ids[name] = id
}

func (m *RoleMap) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	id, ok := m.ids[name]
	return id, ok
}

func (m *RoleMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Each visits entries in creation order.
func (m *RoleMap) Each(fn func(name, id string)) {
	if m == nil {
		return
	}
	for _, name := range m.order {
		fn(name, m.ids[name])
	}
}

// Names returns role names in creation order.
func (m *RoleMap) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.order...)
}

// ToMap copies the entries into a plain map.
func (m *RoleMap) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	m.Each(func(name, id string) { out[name] = id })
	return out
}
