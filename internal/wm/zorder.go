package wm

// bringToFrontLocked makes w the active window and, unless it already holds
// the most recently issued z-index, gives it a fresh one.
func (m *Manager) bringToFrontLocked(w *Window) {
	if w.ZIndex != m.nextZ-1 {
		w.ZIndex = m.nextZ
		m.nextZ++
	}
	m.setActiveLocked(w)
}

func (m *Manager) issueZLocked() int {
	z := m.nextZ
	m.nextZ++
	return z
}

// setActiveLocked flags w (or nothing, when nil) as the only active window.
func (m *Manager) setActiveLocked(w *Window) {
	m.activeID = ""
	for _, other := range m.windows {
		other.Active = false
	}
	if w != nil {
		w.Active = true
		m.activeID = w.ID
	}
}

// topmostLocked returns the visible window with the highest z-index, skipping
// exclude.
func (m *Manager) topmostLocked(exclude string) *Window {
	var top *Window
	for _, w := range m.windows {
		if w.ID == exclude || w.Minimized {
			continue
		}
		if top == nil || w.ZIndex > top.ZIndex {
			top = w
		}
	}
	return top
}

// promoteLocked activates the top visible window after the active one went
// away. Its z-index is already the highest visible one, so none is issued.
func (m *Manager) promoteLocked(exclude string) {
	m.setActiveLocked(m.topmostLocked(exclude))
}
