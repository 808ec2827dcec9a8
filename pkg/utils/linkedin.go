package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	// LinkedInBaseURL is used to resolve relative links found in listing pages
	LinkedInBaseURL = "https://www.linkedin.com"

	listingDomain = "linkedin.com"
	listingPath   = "/jobs/view/"
)

var (
	listingIDRegex = regexp.MustCompile(`\d{8,}`)
	companyIDRegex = regexp.MustCompile(`/company/([^/?#]+)`)
	numericRegex   = regexp.MustCompile(`^\d+$`)
)

// LinkedInURLType represents the type of LinkedIn URL
type LinkedInURLType int

const (
	LinkedInURLTypeUnknown       LinkedInURLType = iota
	LinkedInURLTypeJobView                       // /jobs/view/123
	LinkedInURLTypeJobCollection                 // /jobs/collections/recommended/?currentJobId=123
	LinkedInURLTypeJobSearch                     // /jobs/search/?currentJobId=123
	LinkedInURLTypeNonJob
)

// LinkedInURLInfo contains information about a parsed LinkedIn URL
type LinkedInURLInfo struct {
	Type      LinkedInURLType
	JobID     string
	PublicURL string
}

// IsLinkedInURL checks if a URL points at a LinkedIn host
func IsLinkedInURL(urlStr string) bool {
	if urlStr == "" {
		return false
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	return hostname == listingDomain || strings.HasSuffix(hostname, "."+listingDomain)
}

// ParseLinkedInURL analyzes a LinkedIn URL and returns its type and job ID
func ParseLinkedInURL(urlStr string) (*LinkedInURLInfo, error) {
	if !IsLinkedInURL(urlStr) {
		return nil, fmt.Errorf("not a LinkedIn URL: %s", urlStr)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	path := strings.ToLower(parsedURL.Path)
	info := &LinkedInURLInfo{Type: LinkedInURLTypeNonJob}

	if strings.HasPrefix(path, listingPath) {
		info.Type = LinkedInURLTypeJobView
		info.JobID = ExtractListingID(urlStr)
		if info.JobID != "" {
			info.PublicURL = publicListingURL(info.JobID)
		}
		return info, nil
	}

	currentJobID := parsedURL.Query().Get("currentJobId")
	if currentJobID == "" || !numericRegex.MatchString(currentJobID) {
		return info, nil
	}

	switch {
	case strings.HasPrefix(path, "/jobs/collections/"):
		info.Type = LinkedInURLTypeJobCollection
	case strings.HasPrefix(path, "/jobs/search"):
		info.Type = LinkedInURLTypeJobSearch
	default:
		return info, nil
	}

	info.JobID = currentJobID
	info.PublicURL = publicListingURL(currentJobID)
	return info, nil
}

// NormalizeListingURL rewrites collection and search URLs that carry a
// currentJobId into the listing view URL. Anything else is returned trimmed.
func NormalizeListingURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)

	info, err := ParseLinkedInURL(urlStr)
	if err != nil {
		return urlStr
	}

	if info.Type == LinkedInURLTypeJobCollection || info.Type == LinkedInURLTypeJobSearch {
		return info.PublicURL
	}
	return urlStr
}

// IsListingURL reports whether a URL looks like a single listing view
func IsListingURL(urlStr string) bool {
	lower := strings.ToLower(urlStr)
	return strings.Contains(lower, listingDomain) && strings.Contains(lower, listingPath)
}

// ExtractListingID returns the first run of 8 or more digits in the URL, or ""
func ExtractListingID(urlStr string) string {
	return listingIDRegex.FindString(urlStr)
}

// CanonicalJobURL strips the query string and fragment from a listing URL
func CanonicalJobURL(urlStr string) string {
	parsedURL, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil || parsedURL.Host == "" {
		if i := strings.IndexAny(urlStr, "?#"); i >= 0 {
			return urlStr[:i]
		}
		return urlStr
	}

	return fmt.Sprintf("%s://%s%s", parsedURL.Scheme, parsedURL.Host, parsedURL.Path)
}

// ExtractCompanyID returns the path segment after /company/ in a company URL
func ExtractCompanyID(companyURL string) string {
	if matches := companyIDRegex.FindStringSubmatch(companyURL); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// ResolveURL makes href absolute against base. Empty or unparsable hrefs yield "".
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

func publicListingURL(jobID string) string {
	return fmt.Sprintf("%s%s%s/", LinkedInBaseURL, listingPath, jobID)
}
