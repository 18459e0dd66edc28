package noticehtml

import (
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	responsiveImgClass   = "responsive-img"
	responsiveMediaClass = "responsive-media"
	pdfEmbedClass        = "pdf-embed"
	pdfCaptionClass      = "pdf-caption"
	pdfFrameTitle        = "PDF 미리보기"

	badgeClass     = "kogl-badge"
	badgeIconClass = "kogl-icon"
	badgeTextClass = "kogl-text"
	badgeIconAlt   = "공공누리 제4유형"

	// BadgeText is the attribution license notice appended to every notice.
	BadgeText = "공공누리 제4유형: 출처표시 + 상업적 이용금지 + 변경금지"
	// DefaultBadgeIconURL is the icon served by the kiosk front end.
	DefaultBadgeIconURL = "/assets/img_opentype04.png"
)

func tagMedia(root *html.Node) {
	for _, img := range elements(root, isAtom(atom.Img)) {
		setAttr(img, "loading", "lazy")
		addClass(img, responsiveImgClass)
	}
	for _, el := range elements(root, isAtom(atom.Iframe, atom.Video, atom.Object, atom.Embed)) {
		addClass(el, responsiveMediaClass)
	}
}

// embedPDFLinks replaces anchors pointing at PDF files with an inline
// preview frame and caption.
func embedPDFLinks(root *html.Node) {
	inEmbed := func(n *html.Node) bool { return hasClass(n, pdfEmbedClass) }
	links := elements(root, func(n *html.Node) bool {
		return n.DataAtom == atom.A && isPDFHref(getAttr(n, "href")) && !closest(n, inEmbed)
	})
	for _, a := range links {
		href := getAttr(a, "href")

		wrap := newElement(atom.Div, attr("class", pdfEmbedClass))
		wrap.AppendChild(newElement(atom.Iframe,
			attr("src", href),
			attr("title", pdfFrameTitle),
			attr("loading", "lazy"),
		))
		caption := newElement(atom.Div, attr("class", pdfCaptionClass))
		caption.AppendChild(newText(pdfCaption(a, href)))
		wrap.AppendChild(caption)

		replaceNode(a, wrap)
	}
}

func isPDFHref(href string) bool {
	if href == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(stripQuery(href)), ".pdf")
}

func stripQuery(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		return href[:i]
	}
	return href
}

func pdfCaption(a *html.Node, href string) string {
	if t := textContent(a); t != "" {
		return t
	}
	if base := path.Base(stripQuery(href)); base != "." && base != "/" && base != "" {
		return base
	}
	return "PDF"
}

// linkHandlerAttrs are removed from disabled links along with href.
var linkHandlerAttrs = []string{"href", "target", "rel", "onclick", "onmousedown", "onmouseup"}

// disableLinks makes anchors and role="link" elements inert: the target
// and handlers are dropped and the element leaves the tab order.
func disableLinks(root *html.Node) {
	links := elements(root, func(n *html.Node) bool {
		return n.DataAtom == atom.A || getAttr(n, "role") == "link"
	})
	for _, a := range links {
		removeAttrs(a, linkHandlerAttrs...)
		setAttr(a, "aria-disabled", "true")
		setAttr(a, "tabindex", "-1")
	}
}

// appendBadge adds the attribution badge unless root already has one.
func appendBadge(root *html.Node, iconURL string) {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, badgeClass) {
			return
		}
	}
	badge := newElement(atom.Div, attr("class", badgeClass))
	badge.AppendChild(newElement(atom.Img,
		attr("src", iconURL),
		attr("alt", badgeIconAlt),
		attr("class", badgeIconClass),
	))
	text := newElement(atom.Span, attr("class", badgeTextClass))
	text.AppendChild(newText(BadgeText))
	badge.AppendChild(text)
	root.AppendChild(badge)
}
