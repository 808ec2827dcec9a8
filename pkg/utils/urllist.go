package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// URLList is the result of reading a list of listing URLs
type URLList struct {
	Valid   []string
	Skipped []string
}

// ParseURLList reads one URL per line. Blank lines and lines starting with #
// are ignored; lines that are not listing URLs are collected in Skipped.
func ParseURLList(r io.Reader) (URLList, error) {
	var list URLList

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		candidate := NormalizeListingURL(line)
		if !IsListingURL(candidate) {
			list.Skipped = append(list.Skipped, line)
			continue
		}
		list.Valid = append(list.Valid, candidate)
	}

	if err := scanner.Err(); err != nil {
		return list, fmt.Errorf("failed to read URL list: %w", err)
	}

	return list, nil
}

// ParseURLText is ParseURLList over an in-memory block of text
func ParseURLText(text string) URLList {
	list, _ := ParseURLList(strings.NewReader(text))
	return list
}

// ReadURLFile opens path and parses it as a URL list
func ReadURLFile(path string) (URLList, error) {
	f, err := os.Open(path)
	if err != nil {
		return URLList{}, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	return ParseURLList(f)
}
