package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPersonName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Sam Lee", true},
		{"Zoë O'Neil-Brandt", true},
		{"J. R. Smith", true},
		{"Al", false},
		{"Message", false},
		{"Sign in to view", false},
		{"Job poster", false},
		{"3rd+ connection", false},
		{"Jane Doe 👋", false},
		{"An extraordinarily long name that keeps on going well past sixty", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPersonName(tt.name))
		})
	}
}

func TestProfileLinkPosterSkipsHiddenRecruiterCard(t *testing.T) {
	doc, err := NewDocument(`<body>
		<aside><div class="hirer-card__hirer-information" style="display:none"><a href="/in/hidden">Hidden Person</a></div></aside>
		<main><a href="/in/maria-garcia/"><img alt=""><span>Maria García</span></a></main>
	</body>`, "")
	require.NoError(t, err)

	p := extractPoster(doc)
	assert.Equal(t, "Maria García", p.Name)
	assert.Equal(t, "https://www.linkedin.com/in/maria-garcia/", p.ProfileURL)
}

func TestCriteriaPatterns(t *testing.T) {
	doc, err := NewDocument(`<ul class="job-criteria">
		<li><h3 class="job-criteria-subheader">Employment type</h3><span class="job-criteria-text">Contract</span></li>
		<li><h3>Industries</h3><span>Banking</span></li>
		<li><h3>Salary</h3><span>Competitive</span></li>
	</ul>`, "")
	require.NoError(t, err)

	c := extractCriteria(doc)
	assert.Equal(t, Criteria{EmploymentType: "Contract", Industries: "Banking"}, c)
}
