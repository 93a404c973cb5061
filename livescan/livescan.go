// Package livescan runs the rule checks against a live page in a real
// browser. It implements the same Document/Node contract as the static
// DOM adapter, so every check is written once and reused verbatim; only
// location mapping differs (findings carry the page URL, never a source
// line).
package livescan

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/viewcheck/viewcheck/checks"
	"github.com/viewcheck/viewcheck/engine"
)

// Config configures the browser session.
type Config struct {
	// RemoteURL is the WebSocket URL of an external browser instance.
	// Empty launches a local headless browser.
	RemoteURL string

	// PageTimeout bounds page load and evaluation. Default: 30s.
	PageTimeout time.Duration

	// Logger for session diagnostics.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.PageTimeout <= 0 {
		c.PageTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session owns one browser instance.
type Session struct {
	cfg      Config
	browser  *rod.Browser
	launched *launcher.Launcher
}

// NewSession launches (or connects to) a browser.
func NewSession(cfg Config) (*Session, error) {
	cfg.defaults()
	s := &Session{cfg: cfg}

	controlURL := cfg.RemoteURL
	if controlURL == "" {
		s.launched = launcher.New().Headless(true)
		u, err := s.launched.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return s, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.cfg.Logger.Debug("closing browser", "error", err)
		}
	}
	if s.launched != nil {
		s.launched.Cleanup()
	}
}

// Scan loads the URL and runs every enabled check against the live DOM.
// Findings carry the URL in the File field.
func (s *Session) Scan(url string, cfg *engine.Config) ([]checks.Finding, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open page %s: %w", url, err)
	}
	defer page.Close()

	page = page.Timeout(s.cfg.PageTimeout)
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("load page %s: %w", url, err)
	}

	doc := &liveDocument{
		page:  page,
		cache: make(map[proto.RuntimeRemoteObjectID]*liveNode),
	}
	eng := engine.New(cfg, checks.All(), s.cfg.Logger)
	return eng.Check(doc, &checks.Context{File: url}), nil
}

// liveDocument adapts a rod page to the checks document contract.
// Node wrappers are cached by remote object id so identity comparisons
// in parent walks behave like the static adapter.
type liveDocument struct {
	page  *rod.Page
	cache map[proto.RuntimeRemoteObjectID]*liveNode
}

func (d *liveDocument) Query(selector string) []checks.Node {
	els, err := d.page.Elements(selector)
	if err != nil {
		// Contract: a selector matching nothing returns an empty list,
		// never an error.
		return nil
	}
	out := make([]checks.Node, 0, len(els))
	for _, el := range els {
		out = append(out, d.wrap(el))
	}
	return out
}

func (d *liveDocument) wrap(el *rod.Element) *liveNode {
	id := el.Object.ObjectID
	if n, ok := d.cache[id]; ok {
		return n
	}
	n := &liveNode{doc: d, el: el}
	d.cache[id] = n
	return n
}

// liveNode adapts a rod element to the checks node contract.
type liveNode struct {
	doc *liveDocument
	el  *rod.Element
}

func (n *liveNode) TagName() string {
	res, err := n.el.Eval(`() => this.tagName`)
	if err != nil {
		return ""
	}
	return strings.ToLower(res.Value.Str())
}

func (n *liveNode) Attr(name string) (string, bool) {
	v, err := n.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (n *liveNode) Text() string {
	txt, err := n.el.Text()
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(txt), " ")
}

func (n *liveNode) Parent() checks.Node {
	parent, err := n.el.Parent()
	if err != nil {
		return nil
	}
	if parent.Object.Subtype != proto.RuntimeRemoteObjectSubtypeNode || isDocumentObject(parent) {
		return nil
	}
	return n.doc.wrap(parent)
}

// isDocumentObject filters the #document node rod returns as the parent
// of <html>.
func isDocumentObject(el *rod.Element) bool {
	return strings.Contains(strings.ToLower(el.Object.ClassName), "document")
}
