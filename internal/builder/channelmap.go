package builder

// ChannelMap maps blueprint channel names to created channel IDs in
// creation order. A repeated name keeps its slot and takes the newer ID.
type ChannelMap struct {
	order []string
	ids   map[string]string
}

func NewChannelMap() *ChannelMap {
	return &ChannelMap{ids: make(map[string]string)}
}

func (m *ChannelMap) Set(name, id string) {
	if _, ok := m.ids[name]; !ok {
		m.order = append(m.order, name)
	}
	m.ids[name] = id
}

func (m *ChannelMap) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	id, ok := m.ids[name]
	return id, ok
}

func (m *ChannelMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

func (m *ChannelMap) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.order...)
}
