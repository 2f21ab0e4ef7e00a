package clip

import "sync"

// Memory is an in-process clipboard for tests and simulations. Other
// applications never see its contents, so it cannot back a real paste.
type Memory struct {
	mu   sync.Mutex
	text string
	ok   bool
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Name() string { return "in-memory" }

func (m *Memory) ReadText() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.ok, nil
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	m.text, m.ok = text, true
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.text, m.ok = "", false
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() {}
