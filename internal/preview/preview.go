// Package preview turns image links in an HTML document into an in-page
// lightbox. It keeps a single modal element per document and mirrors the
// click and keyboard handling a browser would run for it.
package preview

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jt-lab-com/docs/internal/log"
)

const (
	ModalID = "image-preview-modal"

	// DefaultCaption is shown when the clicked image has no alt text.
	DefaultCaption = "Image"

	classShow    = "show"
	classOverlay = "modal-overlay"
	classContent = "modal-content"
	classClose   = "modal-close"
	classImage   = "modal-image"
	classCaption = "modal-caption"
)

var ErrNoBody = errors.New("document has no body element")

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp"}

// IsImageURL reports whether href looks like a direct link to an image file
// rather than a page.
func IsImageURL(href string) bool {
	lower := strings.ToLower(href)
	if strings.HasSuffix(lower, "/") || strings.Contains(lower, ".html") {
		return false
	}
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

// Tracer receives one entry per decision point. *log.Logger satisfies it.
type Tracer interface {
	Debug(msg string, fields ...log.Fields)
}

type Option func(*Interceptor)

// WithTracer turns on diagnostic tracing.
func WithTracer(t Tracer) Option {
	return func(in *Interceptor) { in.tracer = t }
}

// ModalState is a snapshot of the modal.
type ModalState struct {
	Visible     bool   `json:"visible"`
	ImageSource string `json:"imageSource,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

// Event is a dispatched user interaction.
type Event struct {
	Type   string
	Target *html.Node
	Key    string

	prevented int
}

func (e *Event) PreventDefault() {
	e.prevented++
}

// DefaultPrevented reports whether the browser's default action was suppressed.
func (e *Event) DefaultPrevented() bool {
	return e.prevented > 0
}

type Interceptor struct {
	doc     *html.Node
	body    *html.Node
	modal   *html.Node
	image   *html.Node
	caption *html.Node
	tracer  Tracer
}

// Parse reads an HTML document and attaches an interceptor to it.
func Parse(r io.Reader, opts ...Option) (*Interceptor, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return Attach(doc, opts...)
}

// Attach installs the modal into doc, reusing one that is already there.
func Attach(doc *html.Node, opts ...Option) (*Interceptor, error) {
	in := &Interceptor{doc: doc}
	for _, opt := range opts {
		opt(in)
	}

	in.body = find(doc, byTag(atom.Body))
	if in.body == nil {
		return nil, ErrNoBody
	}

	in.addStyles()

	modal := find(doc, byID(ModalID))
	if modal != nil {
		in.modal = modal
		in.image = find(modal, byClass(classImage))
		in.caption = find(modal, byClass(classCaption))
		if in.image != nil && in.caption != nil {
			in.trace("Reusing existing modal")
			return in, nil
		}
		// Incomplete markup from elsewhere; replace it.
		modal.Parent.RemoveChild(modal)
	}

	in.modal, in.image, in.caption = buildModal()
	in.body.AppendChild(in.modal)
	in.trace("Modal created")

	return in, nil
}

func buildModal() (modal, image, caption *html.Node) {
	modal = element(atom.Div, html.Attribute{Key: "id", Val: ModalID})
	overlay := element(atom.Div, html.Attribute{Key: "class", Val: classOverlay})
	content := element(atom.Div, html.Attribute{Key: "class", Val: classContent})
	closer := element(atom.Span, html.Attribute{Key: "class", Val: classClose})
	closer.AppendChild(&html.Node{Type: html.TextNode, Data: "×"})
	image = element(atom.Img,
		html.Attribute{Key: "class", Val: classImage},
		html.Attribute{Key: "src", Val: ""},
		html.Attribute{Key: "alt", Val: ""},
	)
	caption = element(atom.Div, html.Attribute{Key: "class", Val: classCaption})

	content.AppendChild(closer)
	content.AppendChild(image)
	content.AppendChild(caption)
	overlay.AppendChild(content)
	modal.AppendChild(overlay)
	return modal, image, caption
}

func (in *Interceptor) addStyles() {
	if find(in.doc, byID(styleID)) != nil {
		return
	}
	head := find(in.doc, byTag(atom.Head))
	if head == nil {
		return
	}
	style := element(atom.Style, html.Attribute{Key: "id", Val: styleID})
	style.AppendChild(&html.Node{Type: html.TextNode, Data: stylesheet})
	head.AppendChild(style)
	in.trace("Styles added")
}

// Click dispatches a click on target. Listeners run in bubbling order, so
// the modal's own listener sees the event before the document's.
func (in *Interceptor) Click(target *html.Node) *Event {
	e := &Event{Type: "click", Target: target}
	if in.contains(in.modal, target) {
		in.onModalClick(e)
	}
	in.onDocumentClick(e)
	return e
}

// KeyDown dispatches a keydown on the document.
func (in *Interceptor) KeyDown(key string) *Event {
	e := &Event{Type: "keydown", Target: in.body, Key: key}
	if key == "Escape" {
		in.Hide()
	}
	return e
}

func (in *Interceptor) onModalClick(e *Event) {
	if e.Target == in.modal || hasClass(e.Target, classClose) {
		in.Hide()
	}
}

func (in *Interceptor) onDocumentClick(e *Event) {
	in.trace("Click registered", log.Fields{"target": describe(e.Target)})

	link := closest(e.Target, atom.A)
	if link == nil {
		in.trace("No link found")
		return
	}

	img := find(link, byTag(atom.Img))
	if img == nil {
		in.trace("Link has no image")
		return
	}

	href := getAttr(link, "href")
	if href == "" || !IsImageURL(href) {
		in.trace("Not an image link", log.Fields{"href": href})
		return
	}

	target := getAttr(link, "target")
	if target != "_blank" {
		in.trace("Link target is not _blank, leaving navigation alone", log.Fields{"target": target})
		return
	}

	e.PreventDefault()
	in.Show(href, getAttr(img, "alt"))
}

// Show opens the modal on src. An empty alt falls back to DefaultCaption.
func (in *Interceptor) Show(src, alt string) {
	in.trace("Showing modal", log.Fields{"imageSrc": src, "imageAlt": alt})

	setAttr(in.image, "src", src)
	setAttr(in.image, "alt", alt)
	caption := alt
	if caption == "" {
		caption = DefaultCaption
	}
	setText(in.caption, caption)

	addClass(in.modal, classShow)
	setStyleProperty(in.body, "overflow", "hidden")
}

// Hide closes the modal. Hiding a hidden modal changes nothing.
func (in *Interceptor) Hide() {
	in.trace("Hiding modal")
	removeClass(in.modal, classShow)
	setStyleProperty(in.body, "overflow", "")
}

func (in *Interceptor) Visible() bool {
	return hasClass(in.modal, classShow)
}

func (in *Interceptor) State() ModalState {
	if !in.Visible() {
		return ModalState{}
	}
	return ModalState{
		Visible:     true,
		ImageSource: getAttr(in.image, "src"),
		Caption:     textContent(in.caption),
	}
}

// Anchor returns the first link in the document pointing at href.
func (in *Interceptor) Anchor(href string) *html.Node {
	return find(in.doc, func(n *html.Node) bool {
		return n.DataAtom == atom.A && getAttr(n, "href") == href
	})
}

// Modal returns the modal root element.
func (in *Interceptor) Modal() *html.Node {
	return in.modal
}

// Render writes the document, modal included.
func (in *Interceptor) Render(w io.Writer) error {
	return html.Render(w, in.doc)
}

func (in *Interceptor) contains(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

func (in *Interceptor) trace(msg string, fields ...log.Fields) {
	if in.tracer != nil {
		in.tracer.Debug("Image preview: "+msg, fields...)
	}
}

func describe(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type != html.ElementNode {
		return "#text"
	}
	if id := getAttr(n, "id"); id != "" {
		return n.Data + "#" + id
	}
	return n.Data
}
