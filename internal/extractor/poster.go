package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"jobscribe/pkg/utils"
)

const (
	minPosterNameLen = 3
	maxPosterNameLen = 60
	profileLinkSel   = `a[href*="/in/"]`
)

var (
	posterBoilerplateRegex = regexp.MustCompile(`(?i)notification|message|sign in|job poster`)
	personNameRegex        = regexp.MustCompile(`^[\p{L}\s.'-]+$`)
)

// Poster identifies the person who published a listing
type Poster struct {
	Name       string
	ProfileURL string
}

func (p Poster) empty() bool {
	return p.Name == ""
}

func extractPoster(doc *Document) Poster {
	if p := safePoster(recruiterCardPoster, doc); !p.empty() {
		return p
	}
	return safePoster(profileLinkPoster, doc)
}

func safePoster(fn func(*Document) Poster, doc *Document) (p Poster) {
	defer func() {
		if r := recover(); r != nil {
			p = Poster{}
		}
	}()
	return fn(doc)
}

// recruiterCardPoster reads the named recruiter region of the public layout
func recruiterCardPoster(doc *Document) Poster {
	link := doc.Find(".message-the-recruiter a, .hirer-card__hirer-information a").First()
	if !isVisible(link) {
		return Poster{}
	}
	return Poster{
		Name:       utils.NormalizeText(link.Text()),
		ProfileURL: utils.ResolveURL(utils.LinkedInBaseURL, link.AttrOr("href", "")),
	}
}

// profileLinkPoster scans profile links in the main region for the first
// one whose own text reads like a person's name.
func profileLinkPoster(doc *Document) Poster {
	var found Poster
	doc.Main().Find(profileLinkSel).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if a.Find(profileLinkSel).Length() > 0 {
			// card wrapper, the name is on the inner link
			return true
		}

		name := directText(a)
		if name == "" {
			name = firstTextLine(a)
		}
		if !isPersonName(name) {
			return true
		}

		found = Poster{
			Name:       name,
			ProfileURL: utils.ResolveURL(utils.LinkedInBaseURL, a.AttrOr("href", "")),
		}
		return false
	})
	return found
}

// directText joins the text nodes that are immediate children of the element
func directText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	var b strings.Builder
	for c := sel.Get(0).FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return utils.NormalizeText(b.String())
}

// firstTextLine returns the first non-blank text node under the element
func firstTextLine(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	var line string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode {
			if t := utils.NormalizeText(n.Data); t != "" {
				line = t
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(sel.Get(0))
	return line
}

func isPersonName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < minPosterNameLen || n > maxPosterNameLen {
		return false
	}
	if posterBoilerplateRegex.MatchString(name) {
		return false
	}
	return personNameRegex.MatchString(name)
}
