// Package sanitize turns attacker-controlled email HTML into a document
// that is safe to hand to a rendering surface: no script execution, no
// automatic remote resource loads, no navigation hijacking. It can
// additionally force a baseline stylesheet for hostile or unreadable
// markup.
package sanitize

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sanitize rewrites input into safe, well-formed HTML. It is a pure
// function and idempotent for a fixed forceCSS value, so re-rendering on a
// toggle change never compounds transformations.
//
// With forceCSS false the original styling is preserved as closely as is
// safe; with forceCSS true embedded and inline styles are stripped and a
// baseline stylesheet is injected instead.
func Sanitize(input string, forceCSS bool) string {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		// html.Parse is tag-soup tolerant; an error here means the input
		// is unreadable, not merely malformed.
		return ""
	}

	clean(doc, forceCSS)
	if forceCSS {
		injectBaseStyle(doc)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return ""
	}
	return buf.String()
}

// droppedElements are removed wholesale: script execution vectors, frame
// and plugin containers, remote stylesheet loaders and base-URL rewrites.
var droppedElements = map[string]bool{
	"script":   true,
	"iframe":   true,
	"frame":    true,
	"frameset": true,
	"object":   true,
	"embed":    true,
	"applet":   true,
	"base":     true,
	"form":     true,
	"link":     true,
}

// clean walks the tree depth-first, removing unsafe nodes and rewriting
// the attributes of the rest.
func clean(n *html.Node, forceCSS bool) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if removeNode(c, forceCSS) {
			n.RemoveChild(c)
			continue
		}
		clean(c, forceCSS)
	}

	if n.Type == html.ElementNode {
		cleanAttrs(n, forceCSS)
		if !forceCSS && n.DataAtom == atom.Style {
			scrubStyleText(n)
		}
	}
}

// removeNode reports whether a node must be dropped entirely.
func removeNode(n *html.Node, forceCSS bool) bool {
	if n.Type != html.ElementNode {
		return false
	}
	name := nodeName(n)
	if droppedElements[name] {
		return true
	}
	if forceCSS && n.DataAtom == atom.Style {
		return true
	}
	// http-equiv covers refresh redirects and CSP overrides.
	if n.DataAtom == atom.Meta && hasAttr(n, "http-equiv") {
		return true
	}
	return false
}

// cleanAttrs drops event handlers and unsafe URLs, and under forceCSS the
// presentational attributes as well.
func cleanAttrs(n *html.Node, forceCSS bool) {
	kept := make([]html.Attribute, 0, len(n.Attr))
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		switch {
		case strings.HasPrefix(key, "on"):
			// Event handler: always dropped.
		case key == "srcset":
			// Alternate image sources bypass the src rewrite.
		case forceCSS && presentationalAttrs[key]:
		case key == "style":
			a.Val = scrubCSS(a.Val)
			kept = append(kept, a)
		case urlAttrs[key]:
			if v, ok := safeURL(n, key, a.Val); ok {
				a.Val = v
				kept = append(kept, a)
			}
		default:
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// presentationalAttrs control layout and fonts; forceCSS removes them in
// favor of the baseline stylesheet.
var presentationalAttrs = map[string]bool{
	"style":   true,
	"width":   true,
	"height":  true,
	"bgcolor": true,
	"color":   true,
	"face":    true,
	"size":    true,
	"align":   true,
	"border":  true,
}

// urlAttrs accept URLs and therefore need scheme vetting.
var urlAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"poster":     true,
	"background": true,
	"xlink:href": true,
}

// resourceAttrs trigger automatic loads when they point at a remote host.
var resourceAttrs = map[string]bool{
	"src":        true,
	"poster":     true,
	"background": true,
}

// safeURL vets one URL-valued attribute. It returns the value to keep and
// whether to keep the attribute at all.
func safeURL(n *html.Node, key, val string) (string, bool) {
	probe := strings.ToLower(stripURLControls(val))
	switch {
	case strings.HasPrefix(probe, "javascript:"), strings.HasPrefix(probe, "vbscript:"):
		return "", false
	case strings.HasPrefix(probe, "data:"):
		// Inline images are fine; any other data: payload (notably
		// data:text/html) is an execution vector.
		if key == "src" && strings.HasPrefix(probe, "data:image/") {
			return val, true
		}
		return "", false
	}

	if isRemote(probe) {
		if resourceAttrs[key] {
			// Neutralize automatic loads without disturbing layout.
			return "about:blank", true
		}
		if key == "href" && (n.DataAtom == atom.A || n.DataAtom == atom.Area) {
			// Plain links do not load anything by themselves; the
			// rendering surface decides how to follow them.
			return val, true
		}
		return "", false
	}

	// cid:, mailto:, fragments and relative references stay as-is.
	return val, true
}

func isRemote(probe string) bool {
	return strings.HasPrefix(probe, "http:") ||
		strings.HasPrefix(probe, "https:") ||
		strings.HasPrefix(probe, "ftp:") ||
		strings.HasPrefix(probe, "//")
}

// stripURLControls removes whitespace and control bytes so scheme checks
// cannot be defeated by "java\tscript:" style obfuscation.
func stripURLControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, s)
}

// scrubStyleText scrubs the CSS text children of a kept <style> element.
func scrubStyleText(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			c.Data = scrubCSS(c.Data)
		}
	}
}

func nodeName(n *html.Node) string {
	if n.DataAtom != 0 {
		return n.DataAtom.String()
	}
	return strings.ToLower(n.Data)
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

// injectBaseStyle appends the baseline stylesheet to <head>. clean has
// already removed every other style element under forceCSS, so repeated
// sanitization keeps exactly one copy.
func injectBaseStyle(doc *html.Node) {
	head := findElement(doc, atom.Head)
	if head == nil {
		return
	}
	style := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
	}
	style.AppendChild(&html.Node{
		Type: html.TextNode,
		Data: baseStyle,
	})
	head.AppendChild(style)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
