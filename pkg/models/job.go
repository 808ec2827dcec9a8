package models

// ApplyType tells whether a listing is applied to on-site or on the employer's site
type ApplyType string

const (
	ApplyTypeEasyApply ApplyType = "EASY_APPLY"
	ApplyTypeExternal  ApplyType = "EXTERNAL"
)

// Record is one extracted job listing. The JSON keys and their order are a
// fixed contract with the jobs.json collection and must not be renamed.
// Records are built once per extraction and treated as values afterwards.
type Record struct {
	ID                    string    `json:"id"`
	PublishedAt           string    `json:"publishedAt"`
	Title                 string    `json:"title"`
	JobURL                string    `json:"jobUrl"`
	CompanyName           string    `json:"companyName"`
	CompanyURL            string    `json:"companyUrl"`
	CompanyLogoURL        string    `json:"companyLogoUrl"`
	Location              string    `json:"location"`
	PostedTimeText        string    `json:"postedTime"`
	ApplicationsCountText string    `json:"applicationsCount"`
	DescriptionMarkdown   string    `json:"description"`
	ContractType          string    `json:"contractType"`
	ExperienceLevel       string    `json:"experienceLevel"`
	WorkType              string    `json:"workType"`
	Sector                string    `json:"sector"`
	ApplyType             ApplyType `json:"applyType"`
	ApplyURL              string    `json:"applyUrl"`
	CompanyID             string    `json:"companyId"`
	AppliedTimeText       *string   `json:"appliedTime"`
	AppliedAt             *string   `json:"appliedAt"`
	PosterProfileURL      *string   `json:"posterProfileUrl"`
	PosterName            *string   `json:"posterFullName"`
	DescriptionHTML       string    `json:"descriptionHtml"`
}

// OptionalString returns a pointer to s, or nil when s is empty
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences an optional field, treating nil as ""
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
