package extractor

import (
	"github.com/PuerkitoBio/goquery"

	"jobscribe/pkg/utils"
)

// Criteria is the structured key/value block listed under a posting
type Criteria struct {
	Seniority      string
	EmploymentType string
	JobFunction    string
	Industries     string
}

// set stores value under the field named by header; unknown headers are ignored
func (c *Criteria) set(header, value string) bool {
	switch header {
	case "Seniority level":
		c.Seniority = value
	case "Employment type":
		c.EmploymentType = value
	case "Job function":
		c.JobFunction = value
	case "Industries":
		c.Industries = value
	default:
		return false
	}
	return true
}

type criterion struct {
	header string
	value  string
}

// extractCriteria tries each known layout of the criteria list and maps the
// first one that yields any pairs.
func extractCriteria(doc *Document) Criteria {
	patterns := []func(*Document) []criterion{
		itemCriteria(".description__job-criteria-item"),
		itemCriteria(".job-criteria-item, [class*='job-criteria'] li"),
		definitionListCriteria,
	}

	var c Criteria
	for _, pattern := range patterns {
		pairs := safeCriteria(pattern, doc)
		if len(pairs) == 0 {
			continue
		}
		for _, p := range pairs {
			c.set(p.header, p.value)
		}
		break
	}
	return c
}

func safeCriteria(pattern func(*Document) []criterion, doc *Document) (pairs []criterion) {
	defer func() {
		if r := recover(); r != nil {
			pairs = nil
		}
	}()
	return pattern(doc)
}

func itemCriteria(selector string) func(*Document) []criterion {
	return func(doc *Document) []criterion {
		var pairs []criterion
		doc.Find(selector).Each(func(_ int, item *goquery.Selection) {
			header := utils.NormalizeText(item.Find("h3, .job-criteria-subheader").First().Text())
			value := utils.NormalizeText(item.Find("span, .job-criteria-text").First().Text())
			if header != "" && value != "" {
				pairs = append(pairs, criterion{header: header, value: value})
			}
		})
		return pairs
	}
}

func definitionListCriteria(doc *Document) []criterion {
	var pairs []criterion
	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		header := utils.NormalizeText(dt.Text())
		value := utils.NormalizeText(dd.Text())
		if header != "" && value != "" {
			pairs = append(pairs, criterion{header: header, value: value})
		}
	})
	return pairs
}
