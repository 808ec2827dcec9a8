package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStrategy struct {
	name   string
	result Result
}

func (s staticStrategy) Name() string             { return s.name }
func (s staticStrategy) Attempt(*Document) Result { return s.result }

type panicStrategy struct{}

func (panicStrategy) Name() string             { return "panics" }
func (panicStrategy) Attempt(*Document) Result { panic("boom") }

func TestChainFirstNonEmptyWins(t *testing.T) {
	doc, err := NewDocument("<html></html>", "")
	require.NoError(t, err)

	chain := Chain{
		Field: "title",
		Strategies: []Strategy{
			staticStrategy{name: "missing", result: NotFound},
			panicStrategy{},
			staticStrategy{name: "boilerplate", result: Found("  Show more  ")},
			staticStrategy{name: "good", result: Found(" Staff  Engineer ")},
			staticStrategy{name: "later", result: Found("ignored")},
		},
	}

	value, strategy, ok := chain.Run(doc)
	assert.True(t, ok)
	assert.Equal(t, "Staff Engineer", value)
	assert.Equal(t, "good", strategy)
}

func TestChainExhausted(t *testing.T) {
	doc, err := NewDocument("<html></html>", "")
	require.NoError(t, err)

	_, _, ok := Chain{Field: "x", Strategies: texts(".nope", "#missing")}.Run(doc)
	assert.False(t, ok)
}

func TestSelectorAttrResolves(t *testing.T) {
	doc, err := NewDocument(`<a class="c" href="/company/globex/">Globex</a>`, "")
	require.NoError(t, err)

	res := SelectorAttr{Selector: ".c", Attr: "href", Resolve: true}.Attempt(doc)
	assert.Equal(t, Found("https://www.linkedin.com/company/globex/"), res)

	assert.Equal(t, NotFound, SelectorAttr{Selector: ".c", Attr: "title"}.Attempt(doc))
}

func TestIsVisible(t *testing.T) {
	doc, err := NewDocument(`<body>
		<div id="shown"><button id="a">Easy Apply</button></div>
		<div style="display: none"><button id="b">x</button></div>
		<div aria-hidden="true"><button id="c">x</button></div>
		<button id="d" hidden>x</button>
		<span style="VISIBILITY:hidden"><button id="e">x</button></span>
	</body>`, "")
	require.NoError(t, err)

	assert.True(t, isVisible(doc.Find("#a")))
	for _, id := range []string{"#b", "#c", "#d", "#e", "#missing"} {
		assert.False(t, isVisible(doc.Find(id)), id)
	}
}
