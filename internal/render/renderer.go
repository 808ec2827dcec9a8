// Package render turns records into Markdown notes with a fixed-order
// frontmatter block that note-taking tools read field by field.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobscribe/internal/config"
	"jobscribe/internal/markdown"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

// logoBlock shows companyLogoUrl when the note is opened with Dataview
const logoBlock = "```dataviewjs\n" +
	"let url = dv.current().companyLogoUrl;\n" +
	"if (url) {\n" +
	"    dv.el(\"img\", \"\", { attr: { src: url, style: \"width:100px;\" } });\n" +
	"}\n" +
	"```"

var statusFlags = []string{
	"👌Ideal",
	"🔵ShortListed",
	"🟡AppliedSimply",
	"🟢AppliedProperly",
	"🚩Tracking",
	"❌Rejected",
	"🟤Archived",
}

var documentLinks = []string{"CV_md", "CV_pdf", "letter", "working_md"}

// Options controls naming and layout of rendered documents
type Options struct {
	FilenameOrder string
	LogoBlock     bool
}

// OptionsFromConfig copies the output section of cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FilenameOrder: cfg.Output.FilenameOrder,
		LogoBlock:     cfg.Output.LogoBlock,
	}
}

// Document is a rendered note ready to be written
type Document struct {
	Filename string
	Content  string
}

// Renderer renders records into documents
type Renderer struct {
	opts      Options
	converter *markdown.Converter
	now       func() time.Time
}

// NewRenderer creates a renderer
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		opts:      opts,
		converter: markdown.NewConverter(),
		now:       time.Now,
	}
}

// WithClock sets the clock used for the created/updated stamps
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Render builds the filename and content for record
func (r *Renderer) Render(record models.Record) Document {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString(r.frontmatter(record))
	b.WriteString("---\n\n")
	if r.opts.LogoBlock {
		b.WriteString(logoBlock)
		b.WriteString("\n\n")
	}
	b.WriteString(r.description(record))

	return Document{
		Filename: r.Filename(record),
		Content:  b.String(),
	}
}

// Filename returns the sanitized document name for record
func (r *Renderer) Filename(record models.Record) string {
	if r.opts.FilenameOrder == config.FilenameTitleFirst {
		return SanitizeFilename(fmt.Sprintf("%s - %s.md", record.Title, record.CompanyName))
	}
	return SanitizeFilename(fmt.Sprintf("%s - %s.md", record.CompanyName, record.Title))
}

// Write renders record into dir and returns the written path
func (r *Renderer) Write(record models.Record, dir string) (string, error) {
	doc := r.Render(record)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", utils.NewPersistenceError("failed to create document directory", err)
	}

	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
		return "", utils.NewPersistenceError("failed to write document", err)
	}
	return path, nil
}

func (r *Renderer) description(record models.Record) string {
	if record.DescriptionHTML != "" {
		if md := r.converter.Convert(record.DescriptionHTML); md != "" {
			return md
		}
	}
	return record.DescriptionMarkdown
}

// frontmatter emits the metadata lines in their fixed order. Empty optional
// fields are left out; flags, document links and date stamps never are.
func (r *Renderer) frontmatter(record models.Record) string {
	fm := &frontmatter{}

	fm.quoted("id", record.ID)
	fm.quoted("companyName", record.CompanyName)
	fm.quoted("title", record.Title)
	fm.quoted("location", record.Location)
	fm.bare("jobUrl", record.JobURL)
	fm.bare("applyUrl", record.ApplyURL)
	fm.quoted("postedTime", record.PostedTimeText)
	fm.bare("publishedAt", record.PublishedAt)
	fm.quoted("companyId", record.CompanyID)
	fm.bare("companyUrl", record.CompanyURL)
	fm.bare("companyLogoUrl", record.CompanyLogoURL)
	fm.quoted("applicationsCount", record.ApplicationsCountText)
	fm.quoted("applyType", string(record.ApplyType))

	for _, flag := range statusFlags {
		fm.line(flag + ": false")
	}
	for _, link := range documentLinks {
		fm.line(link + `: ""`)
	}

	fm.quoted("appliedTime", models.StringValue(record.AppliedTimeText))
	fm.bare("appliedAt", models.StringValue(record.AppliedAt))

	fm.quoted("contractType", record.ContractType)
	fm.quoted("experienceLevel", record.ExperienceLevel)
	fm.quoted("workType", record.WorkType)
	fm.quoted("sector", record.Sector)
	fm.bare("posterProfileUrl", models.StringValue(record.PosterProfileURL))
	fm.quoted("posterFullName", models.StringValue(record.PosterName))

	today := r.now().Format(utils.DateLayout)
	fm.line("created: " + today)
	fm.line("updated: " + today)

	return fm.String()
}

type frontmatter struct {
	b strings.Builder
}

func (f *frontmatter) line(s string) {
	f.b.WriteString(s)
	f.b.WriteByte('\n')
}

// quoted writes key: "value" with inner quotes escaped, if value is set
func (f *frontmatter) quoted(key, value string) {
	if value == "" {
		return
	}
	f.line(fmt.Sprintf(`%s: "%s"`, key, strings.ReplaceAll(value, `"`, `\"`)))
}

// bare writes key: value unquoted, if value is set
func (f *frontmatter) bare(key, value string) {
	if value == "" {
		return
	}
	f.line(key + ": " + value)
}

func (f *frontmatter) String() string {
	return f.b.String()
}
