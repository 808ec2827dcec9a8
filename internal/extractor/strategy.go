package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscribe/pkg/utils"
)

// Result is the outcome of one strategy attempt
type Result struct {
	Value string
	Found bool
}

// NotFound is returned when a strategy has nothing to offer
var NotFound = Result{}

// Found wraps a value produced by a strategy
func Found(value string) Result {
	return Result{Value: value, Found: true}
}

// Strategy is one way of recovering a field from a snapshot
type Strategy interface {
	Name() string
	Attempt(doc *Document) Result
}

// Chain tries its strategies in order and keeps the first value that is
// still non-empty after normalization.
type Chain struct {
	Field      string
	Strategies []Strategy
	Normalize  func(string) string
}

// Run returns the winning value and the name of the strategy that produced it
func (c Chain) Run(doc *Document) (string, string, bool) {
	normalize := c.Normalize
	if normalize == nil {
		normalize = utils.NormalizeText
	}

	for _, s := range c.Strategies {
		res := attempt(s, doc)
		if !res.Found {
			continue
		}
		if value := normalize(res.Value); value != "" {
			return value, s.Name(), true
		}
	}
	return "", "", false
}

// attempt isolates a strategy so a panic inside it only costs that attempt
func attempt(s Strategy, doc *Document) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = NotFound
		}
	}()
	return s.Attempt(doc)
}

// SelectorText takes the text of the first element matching Selector
type SelectorText struct {
	Selector string
}

func (s SelectorText) Name() string { return "text:" + s.Selector }

func (s SelectorText) Attempt(doc *Document) Result {
	sel := doc.Find(s.Selector).First()
	if sel.Length() == 0 {
		return NotFound
	}
	return Found(sel.Text())
}

// SelectorAttr takes an attribute of the first element matching Selector.
// With Resolve set, relative links are made absolute against the site root.
type SelectorAttr struct {
	Selector string
	Attr     string
	Resolve  bool
}

func (s SelectorAttr) Name() string { return "attr:" + s.Selector + "@" + s.Attr }

func (s SelectorAttr) Attempt(doc *Document) Result {
	value, ok := doc.Find(s.Selector).First().Attr(s.Attr)
	if !ok || strings.TrimSpace(value) == "" {
		return NotFound
	}
	if s.Resolve {
		value = utils.ResolveURL(utils.LinkedInBaseURL, value)
	}
	return Found(value)
}

// SelectorHTML takes the inner HTML of the first element matching Selector
type SelectorHTML struct {
	Selector string
}

func (s SelectorHTML) Name() string { return "html:" + s.Selector }

func (s SelectorHTML) Attempt(doc *Document) Result {
	sel := doc.Find(s.Selector).First()
	if sel.Length() == 0 {
		return NotFound
	}
	html, err := sel.Html()
	if err != nil {
		return NotFound
	}
	return Found(html)
}

// CompositePart takes one positional part of the composite info line
type CompositePart struct {
	Index int
}

func (s CompositePart) Name() string { return "composite" }

func (s CompositePart) Attempt(doc *Document) Result {
	parts := doc.InfoParts()
	if s.Index < 0 || s.Index >= len(parts) {
		return NotFound
	}
	return Found(parts[s.Index])
}

// Func adapts a named structural heuristic into a Strategy
type Func struct {
	Label string
	Fn    func(doc *Document) string
}

func (s Func) Name() string { return s.Label }

func (s Func) Attempt(doc *Document) Result {
	if value := s.Fn(doc); value != "" {
		return Found(value)
	}
	return NotFound
}

// texts builds SelectorText strategies for each selector
func texts(selectors ...string) []Strategy {
	out := make([]Strategy, 0, len(selectors))
	for _, s := range selectors {
		out = append(out, SelectorText{Selector: s})
	}
	return out
}

// firstMatch walks sel and returns the first value accepted by pick
func firstMatch(sel *goquery.Selection, pick func(*goquery.Selection) string) string {
	var out string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = pick(s)
		return out == ""
	})
	return out
}
