package yad2

import (
	"net/url"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// maxPages caps how deep a single run walks into the results.
const maxPages = 10

var totalPagesRe = regexp.MustCompile(`מתוך (\d+)`)

// TotalPages reads the "עמוד X מתוך Y" pagination text. A page without a
// pagination bar is a single-page result.
func TotalPages(doc *goquery.Document) int {
	nav := doc.Find(selPaginationNav)
	if nav.Length() == 0 {
		return 1
	}

	text := doc.Find(selPaginationText).First().Text()
	match := totalPagesRe.FindStringSubmatch(text)
	if match == nil {
		return 1
	}

	total, err := strconv.Atoi(match[1])
	if err != nil || total < 1 {
		return 1
	}
	return total
}

// PageURL rewrites the page query parameter on a results URL.
func PageURL(rawURL string, page int) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	query := parsed.Query()
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
