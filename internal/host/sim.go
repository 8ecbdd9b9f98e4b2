package host

import (
	"bufio"
	"io"
	"sync"
)

// SimDocument is an in-memory Document used by guestd and tests.
// Setters model the host page and browser mutating globals and layout.
type SimDocument struct {
	mu         sync.RWMutex
	url        string
	readyState ReadyState
	scroll     Size
	offset     Size
	visible    bool
	rootStyles map[string]string
	planTier   int
	planSet    bool
	pageStatus string
}

func NewSimDocument(url string) *SimDocument {
	return &SimDocument{
		url:        url,
		readyState: ReadyLoading,
		rootStyles: make(map[string]string),
		pageStatus: "200",
	}
}

func (d *SimDocument) URL() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.url
}

func (d *SimDocument) ReadyState() ReadyState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.readyState
}

func (d *SimDocument) ScrollSize() Size {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scroll
}

func (d *SimDocument) OffsetSize() Size {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.offset
}

func (d *SimDocument) SetVisible(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = visible
}

func (d *SimDocument) ApplyRootStyle(attr, value string) {
	if attr == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rootStyles[attr] = value
}

func (d *SimDocument) PlanTier() (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.planTier, d.planSet
}

func (d *SimDocument) PageStatus() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pageStatus
}

// SetURL models in-page navigation.
func (d *SimDocument) SetURL(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
}

func (d *SimDocument) SetReadyState(state ReadyState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readyState = state
}

// SetSizes updates both measurements; layout changes usually move them
// together.
func (d *SimDocument) SetSizes(scroll, offset Size) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scroll = scroll
	d.offset = offset
}

// SetPlanTier models the host page publishing its plan global.
func (d *SimDocument) SetPlanTier(tier int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.planTier = tier
	d.planSet = true
}

func (d *SimDocument) SetPageStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pageStatus = status
}

func (d *SimDocument) Visible() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.visible
}

// RootStyle reads back one directly-applied root style attribute.
func (d *SimDocument) RootStyle(attr string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rootStyles[attr]
}

// CapturePort records posted payloads for inspection.
type CapturePort struct {
	mu       sync.Mutex
	payloads [][]byte
}

func NewCapturePort() *CapturePort {
	return &CapturePort{}
}

func (p *CapturePort) Post(payload []byte) {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, buf)
}

// Payloads returns a copy of everything posted so far.
func (p *CapturePort) Payloads() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.payloads))
	copy(out, p.payloads)
	return out
}

// WriterPort posts payloads as newline-delimited JSON to w. Write
// failures are swallowed: the port contract is fire-and-forget.
type WriterPort struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func NewWriterPort(w io.Writer) *WriterPort {
	return &WriterPort{w: bufio.NewWriter(w)}
}

func (p *WriterPort) Post(payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.w.Write(payload); err != nil {
		return
	}
	if err := p.w.WriteByte('\n'); err != nil {
		return
	}
	_ = p.w.Flush()
}
