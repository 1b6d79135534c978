package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
)

const pageCSS = `body{font-family:Georgia,'Times New Roman',serif;max-width:720px;margin:40px auto;color:#1f1a17;line-height:1.55}
h1{font-size:28px;margin-bottom:4px}
h2{font-size:18px;border-bottom:1px solid #c8b99a;padding-bottom:4px;margin-top:28px}
blockquote{border-left:3px solid %s;margin-left:0;padding-left:14px;font-style:italic}
pre{white-space:pre-wrap;background:#f6f1e7;padding:14px;border:1px solid #c8b99a}
img.spell{display:block;max-width:100%%;margin:20px auto}
.guide{color:%s}`

// HTML renders the full page as a standalone document for PDF export.
// Historical context is always expanded and steps carry no checkboxes.
// extraHead is inserted verbatim into <head>, for print scripts.
func HTML(p Page, extraHead string) (string, error) {
	var md string
	if p.Degraded() {
		md = RawMarkdown(p.Spell.Raw)
	} else {
		md = FullMarkdown(p, FullOptions{ShowHistory: true})
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("render.HTML: %w", err)
	}

	primary, accent := "#5b4636", "#8b2f4a"
	if p.Guide != nil {
		primary, accent = p.Guide.ColorScheme.Primary, p.Guide.ColorScheme.Accent
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(p.Spell.Title()))
	fmt.Fprintf(&b, "<style>\n%s\n</style>\n", fmt.Sprintf(pageCSS, accent, primary))
	b.WriteString(extraHead)
	b.WriteString("</head>\n<body>\n<div id=\"grimoire-page\">\n")
	if p.ImageBase64 != "" {
		fmt.Fprintf(&b, "<img class=\"spell\" alt=\"\" src=\"data:image/png;base64,%s\">\n", html.EscapeString(p.ImageBase64))
	}
	b.Write(body.Bytes())
	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String(), nil
}
