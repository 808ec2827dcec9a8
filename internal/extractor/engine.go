// Package extractor recovers listing fields from a rendered page snapshot.
// Every field has an ordered chain of strategies; the first one that yields a
// non-empty normalized value wins and a field whose chain is exhausted is left
// empty instead of failing the record.
package extractor

import (
	"time"

	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
	"jobscribe/internal/markdown"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

// Outcome is the extracted record plus the fields that came back empty
type Outcome struct {
	Record models.Record
	Misses []string
}

// Engine turns page snapshots into records
type Engine struct {
	chains    chains
	converter *markdown.Converter
	logger    types.Logger
	now       func() time.Time
}

// NewEngine creates an engine with the built-in field chains
func NewEngine() *Engine {
	return &Engine{
		chains:    defaultChains(),
		converter: markdown.NewConverter(),
		logger:    logging.GetGlobalLogger(),
		now:       time.Now,
	}
}

// WithClock sets the clock used to resolve relative dates
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithLogger replaces the engine's logger
func (e *Engine) WithLogger(logger types.Logger) *Engine {
	e.logger = logger
	return e
}

// Extract builds a Record from rawHTML captured at pageURL. It only fails
// when the snapshot cannot be parsed at all.
func (e *Engine) Extract(rawHTML, pageURL string) (*Outcome, error) {
	doc, err := NewDocument(rawHTML, pageURL)
	if err != nil {
		return nil, err
	}

	out := &Outcome{}
	field := func(c Chain) string {
		value, strategy, ok := c.Run(doc)
		if !ok {
			out.Misses = append(out.Misses, c.Field)
			e.logger.Debug("Field not found", map[string]interface{}{
				"field": c.Field,
				"kind":  utils.KindFieldMiss,
				"url":   pageURL,
			})
			return ""
		}
		e.logger.Debug("Field extracted", map[string]interface{}{
			"field":    c.Field,
			"strategy": strategy,
		})
		return value
	}

	title := field(e.chains.title)
	companyName := field(e.chains.companyName)
	location := field(e.chains.location)
	postedTime := field(e.chains.postedTime)
	applicationsCount := field(e.chains.applicationsCount)
	companyURL := field(e.chains.companyURL)
	logoURL := field(e.chains.companyLogoURL)
	descriptionHTML := field(e.chains.descriptionHTML)

	criteria := extractCriteria(doc)
	poster := extractPoster(doc)
	applied := appliedTime(doc)

	now := e.now()
	jobURL := utils.CanonicalJobURL(pageURL)

	record := models.Record{
		ID:                    utils.ExtractListingID(pageURL),
		PublishedAt:           utils.ParseRelativeTime(postedTime, now),
		Title:                 title,
		JobURL:                jobURL,
		CompanyName:           companyName,
		CompanyURL:            companyURL,
		CompanyLogoURL:        logoURL,
		Location:              location,
		PostedTimeText:        postedTime,
		ApplicationsCountText: applicationsCount,
		DescriptionMarkdown:   e.converter.Convert(descriptionHTML),
		ContractType:          criteria.EmploymentType,
		ExperienceLevel:       criteria.Seniority,
		WorkType:              criteria.JobFunction,
		Sector:                criteria.Industries,
		ApplyType:             applyType(doc),
		ApplyURL:              jobURL,
		CompanyID:             utils.ExtractCompanyID(companyURL),
		AppliedTimeText:       models.OptionalString(applied),
		PosterProfileURL:      models.OptionalString(poster.ProfileURL),
		PosterName:            models.OptionalString(poster.Name),
		DescriptionHTML:       descriptionHTML,
	}
	if applied != "" {
		record.AppliedAt = models.OptionalString(utils.ParseRelativeTime(applied, now))
	}
	if poster.empty() {
		record.PosterProfileURL = nil
	}

	out.Record = record
	return out, nil
}
