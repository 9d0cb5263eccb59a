// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in answers is omitted from the output; WithUnsafe is never set.
var answerEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// RenderAnswer converts an oracle answer written in Markdown to HTML. If
// conversion fails the escaped text is returned.
func RenderAnswer(markdown string) string {
	text := strings.TrimSpace(markdown)
	if text == "" {
		return ""
	}
	var out bytes.Buffer
	if err := answerEngine.Convert([]byte(text), &out); err != nil {
		return template.HTMLEscapeString(text)
	}
	return out.String()
}
