package wm

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/deskwm/internal/apps"
	"github.com/1broseidon/deskwm/internal/geom"
	"github.com/google/uuid"
)

// ErrUnknownApp is returned by Open for keys missing from the catalog.
var ErrUnknownApp = errors.New("unknown app")

// Catalog resolves app keys to definitions.
type Catalog interface {
	Lookup(key string) (apps.Definition, bool)
}

// Options tune placement and numbering. Zero fields take the defaults.
type Options struct {
	InitialZIndex  int
	CascadeStep    int
	CascadeCycle   int
	CenterLift     int
	DefaultSize    geom.Size
	DefaultMinSize geom.Size
	// NewID generates window ids; it is retried on collision.
	NewID  func(appKey string) string
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.InitialZIndex == 0 {
		o.InitialZIndex = 10
	}
	if o.CascadeStep == 0 {
		o.CascadeStep = 20
	}
	if o.CascadeCycle <= 0 {
		o.CascadeCycle = 5
	}
	if o.CenterLift == 0 {
		o.CenterLift = 50
	}
	if o.DefaultSize.Width <= 0 {
		o.DefaultSize.Width = 600
	}
	if o.DefaultSize.Height <= 0 {
		o.DefaultSize.Height = 400
	}
	if o.DefaultMinSize.Width <= 0 {
		o.DefaultMinSize.Width = 300
	}
	if o.DefaultMinSize.Height <= 0 {
		o.DefaultMinSize.Height = 200
	}
	if o.NewID == nil {
		o.NewID = defaultID
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func defaultID(appKey string) string {
	return fmt.Sprintf("%s-%s", appKey, uuid.NewString()[:8])
}

// Overrides adjust a newly created window. Nil fields use registry values.
type Overrides struct {
	X              *int  `json:"x,omitempty"`
	Y              *int  `json:"y,omitempty"`
	Width          *int  `json:"width,omitempty"`
	Height         *int  `json:"height,omitempty"`
	MinWidth       *int  `json:"min_width,omitempty"`
	MinHeight      *int  `json:"min_height,omitempty"`
	FocusedOnMount *bool `json:"focused_on_mount,omitempty"`
}

// OpenResult says what Open did.
type OpenResult string

const (
	OpenCreated  OpenResult = "created"
	OpenFocused  OpenResult = "focused"
	OpenRestored OpenResult = "restored"
)

// Manager is the single writer of window state. All methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	catalog  Catalog
	opts     Options
	logger   *slog.Logger
	viewport geom.Viewport

	windows  []*Window // creation order
	activeID string
	nextZ    int
	seq      uint64

	subs      []subscriber
	nextSubID int
	pending   []Event
	draining  bool
}

// NewManager returns an empty desktop on viewport v.
func NewManager(catalog Catalog, v geom.Viewport, opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		catalog:  catalog,
		opts:     opts,
		logger:   opts.Logger,
		viewport: normalizeViewport(v),
		nextZ:    opts.InitialZIndex,
	}
}

func normalizeViewport(v geom.Viewport) geom.Viewport {
	if v.Width < 0 {
		v.Width = 0
	}
	if v.Height < 0 {
		v.Height = 0
	}
	if v.TaskbarHeight < 0 {
		v.TaskbarHeight = 0
	}
	return v
}

// SetCatalog swaps the app catalog used by future Open calls.
func (m *Manager) SetCatalog(c Catalog) {
	m.mu.Lock()
	m.catalog = c
	m.mu.Unlock()
}

// Open focuses, restores, or creates the window for appKey. The content
// factory runs without the manager lock held, so it may call back into m.
func (m *Manager) Open(appKey string, ov Overrides) (Window, OpenResult, error) {
	for {
		m.mu.Lock()
		if w, res, ok := m.openExistingLocked(appKey); ok {
			m.unlock()
			return w, res, nil
		}
		var def apps.Definition
		ok := false
		if m.catalog != nil {
			def, ok = m.catalog.Lookup(appKey)
		}
		if !ok {
			m.unlock()
			return Window{}, "", fmt.Errorf("%w: %q", ErrUnknownApp, appKey)
		}
		id := m.opts.NewID(def.Key)
		for m.findLocked(id) != nil {
			id = defaultID(def.Key)
		}
		m.unlock()

		content := def.NewContent(id)

		m.mu.Lock()
		// Another Open may have won the race while the factory ran.
		if w, res, ok := m.openExistingLocked(appKey); ok {
			m.unlock()
			return w, res, nil
		}
		if m.findLocked(id) != nil {
			m.unlock()
			continue
		}
		w := m.newWindowLocked(def, ov, id, content)
		m.windows = append(m.windows, w)
		m.setActiveLocked(w)
		m.emitLocked(EventOpened, w.ID)
		m.logger.Debug("window opened", "app", appKey, "id", w.ID, "x", w.Bounds.X, "y", w.Bounds.Y, "z", w.ZIndex)
		out := *w
		m.unlock()
		return out, OpenCreated, nil
	}
}

// openExistingLocked focuses the open window for appKey, or restores its
// minimized one.
func (m *Manager) openExistingLocked(appKey string) (Window, OpenResult, bool) {
	if w := m.findAppLocked(appKey, false); w != nil {
		m.bringToFrontLocked(w)
		m.emitLocked(EventFocused, w.ID)
		m.logger.Debug("open focused existing window", "app", appKey, "id", w.ID)
		return *w, OpenFocused, true
	}
	if w := m.findAppLocked(appKey, true); w != nil {
		w.Minimized = false
		m.bringToFrontLocked(w)
		m.emitLocked(EventRestored, w.ID)
		m.logger.Debug("open restored minimized window", "app", appKey, "id", w.ID)
		return *w, OpenRestored, true
	}
	return Window{}, "", false
}

func (m *Manager) newWindowLocked(def apps.Definition, ov Overrides, id string, content apps.Content) *Window {
	size := def.DefaultSize
	if size.Width <= 0 {
		size.Width = m.opts.DefaultSize.Width
	}
	if size.Height <= 0 {
		size.Height = m.opts.DefaultSize.Height
	}
	minSize := def.MinSize
	if minSize.Width <= 0 {
		minSize.Width = m.opts.DefaultMinSize.Width
	}
	if minSize.Height <= 0 {
		minSize.Height = m.opts.DefaultMinSize.Height
	}
	if ov.MinWidth != nil && *ov.MinWidth > 0 {
		minSize.Width = *ov.MinWidth
	}
	if ov.MinHeight != nil && *ov.MinHeight > 0 {
		minSize.Height = *ov.MinHeight
	}

	// Placement uses the registry size, as the overrides only apply afterwards.
	offset := (len(m.windows) % m.opts.CascadeCycle) * m.opts.CascadeStep
	x := max(0, m.viewport.Width/2-size.Width/2+offset)
	y := max(0, m.viewport.Height/2-size.Height/2-m.opts.CenterLift+offset)

	if ov.Width != nil {
		size.Width = *ov.Width
	}
	if ov.Height != nil {
		size.Height = *ov.Height
	}
	if ov.X != nil {
		x = *ov.X
	}
	if ov.Y != nil {
		y = *ov.Y
	}
	size.Width = max(size.Width, minSize.Width)
	size.Height = max(size.Height, minSize.Height)

	focusOnMount := true
	if ov.FocusedOnMount != nil {
		focusOnMount = *ov.FocusedOnMount
	}

	return &Window{
		ID:             id,
		AppKey:         def.Key,
		Title:          def.Name,
		Icon:           def.Icon,
		Content:        content,
		Bounds:         geom.Rect{X: x, Y: y, Width: size.Width, Height: size.Height},
		MinSize:        minSize,
		Resizable:      def.Resizable,
		ZIndex:         m.issueZLocked(),
		FocusedOnMount: focusOnMount,
	}
}

// Close removes a window. Closing the active window activates the top
// remaining visible one.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.unlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return false
	}
	wasActive := m.activeID == id
	m.windows = append(m.windows[:idx], m.windows[idx+1:]...)
	if wasActive {
		m.promoteLocked("")
	}
	m.emitLocked(EventClosed, id)
	m.logger.Debug("window closed", "id", id, "active", m.activeID)
	return true
}

// Minimize hides a window and hands focus to the next visible one.
func (m *Manager) Minimize(id string) bool {
	m.mu.Lock()
	defer m.unlock()

	w := m.findLocked(id)
	if w == nil {
		return false
	}
	if w.Minimized {
		return true
	}
	wasActive := w.Active
	w.Minimized = true
	w.Active = false
	w.Dragging = false
	w.Resizing = false
	if wasActive {
		m.promoteLocked(id)
	}
	m.emitLocked(EventMinimized, id)
	return true
}

// ToggleMaximize flips the maximized flag, restores the window if minimized,
// and brings it to front.
func (m *Manager) ToggleMaximize(id string) bool {
	m.mu.Lock()
	defer m.unlock()

	w := m.findLocked(id)
	if w == nil {
		return false
	}
	w.Maximized = !w.Maximized
	w.Minimized = false
	w.Dragging = false
	w.Resizing = false
	m.bringToFrontLocked(w)
	if w.Maximized {
		m.emitLocked(EventMaximized, id)
	} else {
		m.emitLocked(EventUnmaximized, id)
	}
	return true
}

// Focus restores a minimized window and makes it the active, front-most one.
func (m *Manager) Focus(id string) bool {
	m.mu.Lock()
	defer m.unlock()

	w := m.findLocked(id)
	if w == nil {
		return false
	}
	if w.Minimized {
		w.Minimized = false
		m.bringToFrontLocked(w)
		m.emitLocked(EventRestored, id)
		return true
	}
	if w.Active && w.ZIndex == m.nextZ-1 {
		return true
	}
	m.bringToFrontLocked(w)
	m.emitLocked(EventFocused, id)
	return true
}

// Move sets the stored origin. No clamping is applied.
func (m *Manager) Move(id string, x, y int) bool {
	m.mu.Lock()
	defer m.unlock()

	w := m.findLocked(id)
	if w == nil {
		return false
	}
	if w.Bounds.X == x && w.Bounds.Y == y {
		return true
	}
	w.Bounds.X = x
	w.Bounds.Y = y
	m.emitLocked(EventMoved, id)
	return true
}

// Resize sets the stored size. Dimensions below the window minimum are
// raised to it; no viewport clamping is applied.
func (m *Manager) Resize(id string, width, height int) bool {
	m.mu.Lock()
	defer m.unlock()

	w := m.findLocked(id)
	if w == nil {
		return false
	}
	width = max(width, w.MinSize.Width)
	height = max(height, w.MinSize.Height)
	if w.Bounds.Width == width && w.Bounds.Height == height {
		return true
	}
	w.Bounds.Width = width
	w.Bounds.Height = height
	m.emitLocked(EventResized, id)
	return true
}

// SetBounds moves and resizes in one commit, with the same minimum-size floor
// as Resize.
func (m *Manager) SetBounds(id string, r geom.Rect) bool {
	m.mu.Lock()
	defer m.unlock()

	w := m.findLocked(id)
	if w == nil {
		return false
	}
	r.Width = max(r.Width, w.MinSize.Width)
	r.Height = max(r.Height, w.MinSize.Height)
	if w.Bounds == r {
		return true
	}
	sized := w.Bounds.Size() != r.Size()
	w.Bounds = r
	if sized {
		m.emitLocked(EventResized, id)
	} else {
		m.emitLocked(EventMoved, id)
	}
	return true
}

// SetDragging toggles the drag flag. Turning it on fails while any window,
// this one included, is in another gesture.
func (m *Manager) SetDragging(id string, on bool) bool {
	return m.setGesture(id, on, false)
}

// SetResizing toggles the resize flag with the same exclusivity as
// SetDragging.
func (m *Manager) SetResizing(id string, on bool) bool {
	return m.setGesture(id, on, true)
}

func (m *Manager) setGesture(id string, on bool, resize bool) bool {
	m.mu.Lock()
	defer m.unlock()

	w := m.findLocked(id)
	if w == nil {
		return false
	}
	flag := &w.Dragging
	if resize {
		flag = &w.Resizing
	}
	if *flag == on {
		return true
	}
	if on {
		for _, other := range m.windows {
			if other.InGesture() {
				return false
			}
		}
	}
	*flag = on
	m.emitLocked(EventGesture, id)
	return true
}

// MarkMounted consumes the focus-on-mount flag, focusing the window when it
// was set.
func (m *Manager) MarkMounted(id string) bool {
	m.mu.Lock()
	defer m.unlock()

	w := m.findLocked(id)
	if w == nil {
		return false
	}
	if !w.FocusedOnMount {
		return true
	}
	w.FocusedOnMount = false
	if !w.Minimized {
		m.bringToFrontLocked(w)
	}
	m.emitLocked(EventMounted, id)
	return true
}

// SetViewport records a new host size. Stored bounds are left alone; the next
// gesture clamps against the new size.
func (m *Manager) SetViewport(v geom.Viewport) bool {
	m.mu.Lock()
	defer m.unlock()

	v = normalizeViewport(v)
	if v == m.viewport {
		return false
	}
	m.viewport = v
	m.emitLocked(EventViewport, "")
	m.logger.Debug("viewport changed", "width", v.Width, "height", v.Height)
	return true
}

// Viewport returns the current host size.
func (m *Manager) Viewport() geom.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// Window returns a copy of the window with id.
func (m *Manager) Window(id string) (Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.findLocked(id)
	if w == nil {
		return Window{}, false
	}
	return *w, true
}

// Windows returns copies of all windows in creation order.
func (m *Manager) Windows() []Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyWindowsLocked()
}

// ActiveID returns the active window id, or "" when none is active.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Snapshot returns a consistent copy of the whole desktop.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Seq:        m.seq,
		Windows:    m.copyWindowsLocked(),
		ActiveID:   m.activeID,
		Viewport:   m.viewport,
		NextZIndex: m.nextZ,
	}
}

func (m *Manager) copyWindowsLocked() []Window {
	out := make([]Window, len(m.windows))
	for i, w := range m.windows {
		out[i] = *w
	}
	return out
}

func (m *Manager) indexLocked(id string) int {
	for i, w := range m.windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) findLocked(id string) *Window {
	if i := m.indexLocked(id); i >= 0 {
		return m.windows[i]
	}
	return nil
}

func (m *Manager) findAppLocked(appKey string, minimized bool) *Window {
	for _, w := range m.windows {
		if w.AppKey == appKey && w.Minimized == minimized {
			return w
		}
	}
	return nil
}
