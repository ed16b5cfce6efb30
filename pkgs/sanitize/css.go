package sanitize

import "regexp"

// baseStyle is the stylesheet injected under forceCSS: readable defaults
// plus hard caps on widths so hostile markup cannot force horizontal
// scrolling.
const baseStyle = `
body {
  font-family: sans-serif;
  font-size: 14px;
  line-height: 1.4;
  color: #222222;
  background: #ffffff;
  margin: 8px;
  max-width: 100%;
}
img { max-width: 100%; height: auto; }
table { max-width: 100%; border-collapse: collapse; }
td, th { padding: 2px 4px; }
pre, code { white-space: pre-wrap; word-break: break-word; }
blockquote { margin: 0 0 0 8px; padding-left: 8px; border-left: 2px solid #cccccc; }
`

var (
	// cssImportRe removes @import rules; they pull remote stylesheets.
	cssImportRe = regexp.MustCompile(`(?i)@import[^;}]*;?`)

	// cssRemoteURLRe matches url(...) references to remote hosts,
	// including protocol-relative ones.
	cssRemoteURLRe = regexp.MustCompile(`(?i)url\(\s*["']?\s*(?:https?:|ftp:)?//[^)]*\)`)

	// cssExprRe defuses legacy expression() script evaluation.
	cssExprRe = regexp.MustCompile(`(?i)expression\s*\(`)
)

// scrubCSS neutralizes remote loads and script evaluation inside CSS text
// while leaving the remaining rules intact. Replacements map to themselves
// on a second pass, keeping Sanitize idempotent.
func scrubCSS(css string) string {
	css = cssImportRe.ReplaceAllString(css, "")
	css = cssRemoteURLRe.ReplaceAllString(css, "url(about:blank)")
	css = cssExprRe.ReplaceAllString(css, "(")
	return css
}
