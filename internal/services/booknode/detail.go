package booknode

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PaulExplorer/OeuvresTrack/internal/models"
)

var spaceRuns = regexp.MustCompile(" +")

// Book fetches a standalone book page and scrapes its title, overview and
// cover. Booknode book URLs pad the numeric id to eight digits.
func (c *Client) Book(ctx context.Context, originalID string) (*models.CatalogItem, error) {
	id := originalID
	for len(id) < 8 {
		id = "0" + id
	}

	doc, err := c.parse(ctx, "/id_"+id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book %s: %w", originalID, err)
	}

	h1 := findNode(doc, element("h1", ""))
	if h1 == nil {
		return nil, fmt.Errorf("book page %s has no title", originalID)
	}
	title := strings.TrimSpace(textContent(h1))

	overview := ""
	if summary := findNode(h1.Parent, element("span", "actual-text")); summary != nil {
		overview = strings.TrimSpace(strings.ReplaceAll(textContent(summary), "Résumé", ""))
	}

	cover := ""
	if container := findNode(doc, element("div", "foreground")); container != nil {
		if img := findNode(container, element("img", "")); img != nil {
			cover = webpURL(attr(img, "src"))
		}
	}
	if cover == "" {
		c.logger.WithField("id", originalID).Warn("No cover image found for book")
	}

	return &models.CatalogItem{
		OriginalID: originalID,
		Type:       models.MediaTypeBook,
		Title:      title,
		Overview:   overview,
		Image:      coverVariants(cover),
		Source:     models.SourceBooknode,
		Finished:   true,
	}, nil
}

// Series fetches a book-series page and scrapes its title, overview, cover
// and tome list. The tome titles become one content group so progress can
// be tracked across the whole series.
func (c *Client) Series(ctx context.Context, originalID string) (*models.CatalogItem, error) {
	doc, err := c.parse(ctx, "/serie/"+originalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book series %s: %w", originalID, err)
	}

	title := ""
	if h1 := findNode(doc, element("h1", "")); h1 != nil {
		if span := findNode(h1, element("span", "")); span != nil {
			title = strings.TrimSpace(textContent(span))
		}
	}
	if title == "" {
		return nil, fmt.Errorf("series page %s has no title", originalID)
	}

	overview := ""
	if summary := findNode(doc, element("div", "js-readmore")); summary != nil {
		overview = strings.TrimSpace(spaceRuns.ReplaceAllString(textContent(summary), " "))
	}

	liste := findNode(doc, element("article", "liste"))
	if liste == nil {
		return nil, fmt.Errorf("series page %s has no book list", originalID)
	}

	cover := ""
	if img := findNode(liste, element("img", "")); img != nil {
		cover = webpURL(attr(img, "data-src"))
	}

	var tomes []string
	for _, book := range findAll(liste, element("div", "book")) {
		if link := findNode(book, element("a", "")); link != nil {
			if t := attr(link, "title"); t != "" {
				tomes = append(tomes, t)
			}
		}
	}

	return &models.CatalogItem{
		OriginalID: originalID,
		Type:       models.MediaTypeBookSeries,
		Title:      title,
		Overview:   overview,
		Image:      coverVariants(cover),
		Source:     models.SourceBooknode,
		Contents: []models.Season{
			{Title: "Tomes:", Contents: tomes},
		},
	}, nil
}

// webpURL rewrites a cover URL to its webp variant
func webpURL(src string) string {
	src = strings.ReplaceAll(src, ".jpg", ".webp")
	return strings.ReplaceAll(src, ".png", ".webp")
}

// coverVariants derives the smaller cover sizes Booknode serves from the
// dimensions embedded in the full-size URL
func coverVariants(cover string) map[string]string {
	if cover == "" {
		return map[string]string{}
	}
	return map[string]string{
		"264": cover,
		"121": strings.ReplaceAll(cover, "264-432", "121-198"),
		"66":  strings.ReplaceAll(cover, "264-432", "66-108"),
		"30":  strings.ReplaceAll(cover, "264-432", "30-40"),
	}
}
