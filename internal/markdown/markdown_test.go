package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertKeepsStructure(t *testing.T) {
	html := `<div class="show-more-less-html__markup">
		<p>We are <strong>hiring</strong> a <em>data</em> engineer.</p>
		<ul><li>Build pipelines</li><li>Own the warehouse</li></ul>
		<p>Read <a href="/company/acme/">about us</a>.</p>
	</div>`

	out := Convert(html)

	assert.Contains(t, out, "**hiring**")
	assert.Contains(t, out, "- Build pipelines")
	assert.Contains(t, out, "- Own the warehouse")
	assert.Contains(t, out, "[about us](https://www.linkedin.com/company/acme/)")
}

func TestConvertDropsControlsAndScripts(t *testing.T) {
	html := `<section>
		<p>Responsibilities</p>
		<script>track()</script>
		<style>.x{color:red}</style>
		<button aria-label="Show more">Show more</button>
		<svg><path d="M0"/></svg>
	</section>`

	out := Convert(html)

	assert.Contains(t, out, "Responsibilities")
	assert.NotContains(t, out, "track()")
	assert.NotContains(t, out, "color:red")
	assert.NotContains(t, out, "Show more")
}

func TestConvertMiddleDotBullets(t *testing.T) {
	out := Convert("<p>· first point</p><p>· second point</p>")

	assert.Contains(t, out, "- first point")
	assert.Contains(t, out, "- second point")
	assert.NotContains(t, out, "·")
}

func TestConvertStripsTrailingMore(t *testing.T) {
	out := Convert("<p>We build tools for teams… more</p>")
	assert.Equal(t, "We build tools for teams", out)
}

func TestConvertEmpty(t *testing.T) {
	assert.Equal(t, "", Convert(""))
	assert.Equal(t, "", Convert("   \n "))
}

func TestConvertCollapsesBlankLines(t *testing.T) {
	out := NewConverter().Convert("<p>one</p><br><br><br><p>two</p>")
	assert.NotContains(t, out, "\n\n\n")
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "two")
}

func TestConvertLineBreakStaysInParagraph(t *testing.T) {
	c := NewConverter()

	assert.Equal(t, "Line one\nLine two", c.Convert("<p>Line one<br>Line two</p>"))
	assert.Equal(t, "Hours:\n9 to 5\n\nApply today", c.Convert("<p>Hours:<br/>9 to 5</p><p>Apply today</p>"))
}
