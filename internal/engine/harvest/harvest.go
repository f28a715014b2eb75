// Package harvest extracts email addresses from business websites.
package harvest

import (
	"bytes"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lcolaco/placetap/internal/model"
)

var emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Harvester fetches websites and scans their visible text for email
// addresses. The zero value is not usable; call New.
type Harvester struct {
	client *http.Client
}

func New() *Harvester {
	return &Harvester{client: newFetchClient()}
}

// Emails returns the unique email addresses found on the page at pageURL,
// joined with ", ". Every failure mode (unreachable site, timeout, zero
// matches) collapses to model.NoEmail; nothing propagates to the caller.
func (h *Harvester) Emails(pageURL string) string {
	body, err := fetchPage(h.client, pageURL)
	if err != nil {
		return model.NoEmail
	}
	return ExtractEmails(body)
}

// ExtractEmails scans rendered page text for email addresses and returns
// them sorted and joined with ", ", or model.NoEmail when there are none.
// Scanning the document text rather than the raw markup keeps script
// bodies and attribute noise out of the matches.
func ExtractEmails(page []byte) string {
	text := pageText(page)

	matches := emailRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return model.NoEmail
	}

	seen := make(map[string]struct{}, len(matches))
	var unique []string
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		unique = append(unique, m)
	}
	sort.Strings(unique)

	return strings.Join(unique, ", ")
}

// pageText returns the document's visible text. Malformed markup is not
// fatal: goquery parses what it can, and as a last resort the raw bytes
// are scanned instead.
func pageText(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return string(page)
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}
