package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// CatalogPage is a published section listing. Listings are either an HTML
// table with one section per row or the plain comma-separated dataset.
type CatalogPage struct {
	URL   string
	Lines []string
}

func (p *CatalogPage) Urls() []string {
	return []string{p.URL}
}

func (p *CatalogPage) UnmarshalDoc(doc *goquery.Document) error {
	p.Lines = nil
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(j int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		// Header rows only hold <th> cells
		if len(cells) > 0 {
			p.Lines = append(p.Lines, strings.Join(cells, ","))
		}
	})
	if len(p.Lines) > 0 {
		return nil
	}

	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			p.Lines = append(p.Lines, line)
		}
	}
	return nil
}

// FetchCatalog downloads a catalog listing and returns it in dataset form,
// ready to be imported.
func FetchCatalog(c *colly.Collector, url string) (string, error) {
	page := &CatalogPage{URL: url}
	if err := Scrape(c, page); err != nil {
		return "", err
	}
	if len(page.Lines) == 0 {
		return "", nil
	}
	return strings.Join(page.Lines, "\n") + "\n", nil
}
