// Package markdown turns listing description HTML into the Markdown stored in
// records and rendered documents.
package markdown

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"jobscribe/pkg/utils"
)

var middleDotRegex = regexp.MustCompile(`(?m)^[ \t]*·[ \t]*`)

// Converter sanitizes description HTML and converts it to Markdown
type Converter struct {
	policy *bluemonday.Policy
	conv   *md.Converter
}

// NewConverter builds a converter that keeps emphasis, lists, headings,
// line breaks and links, and drops controls, scripts, styles and icons
// together with their content.
func NewConverter() *Converter {
	policy := bluemonday.NewPolicy()
	policy.AllowElements(
		"p", "br", "div", "span", "section", "article",
		"strong", "b", "em", "i", "u",
		"ul", "ol", "li",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "code", "hr",
	)
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowURLSchemes("http", "https", "mailto")
	policy.AllowRelativeURLs(true)
	policy.RequireParseableURLs(true)
	policy.SkipElementsContent("button", "script", "style", "svg", "li-icon", "icon", "noscript", "template")

	conv := md.NewConverter(utils.LinkedInBaseURL, true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
		EmDelimiter:      "*",
		StrongDelimiter:  "**",
		LinkStyle:        "inlined",
	})
	// a <br> is a line break inside its paragraph, not a paragraph break
	conv.AddRules(md.Rule{
		Filter: []string{"br"},
		Replacement: func(_ string, _ *goquery.Selection, _ *md.Options) *string {
			return md.String("\n")
		},
	})

	return &Converter{policy: policy, conv: conv}
}

// Convert returns the Markdown for html, or "" for empty input. If the
// converter rejects the markup the plain text is used instead.
func (c *Converter) Convert(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	clean := c.policy.Sanitize(html)

	out, err := c.conv.ConvertString(clean)
	if err != nil {
		out = plainText(clean)
	}

	return postProcess(out)
}

func postProcess(s string) string {
	s = utils.NormalizeBlock(s)
	s = middleDotRegex.ReplaceAllString(s, "- ")
	return strings.TrimSpace(s)
}

func plainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return doc.Text()
}

var defaultConverter = NewConverter()

// Convert uses a shared default Converter
func Convert(html string) string {
	return defaultConverter.Convert(html)
}
