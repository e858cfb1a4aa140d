package linkedin

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/go-rod/rod"
)

// SearchPeople runs a people search for the criteria and extracts prospect
// entries from the result page
func (c *Client) SearchPeople(ctx context.Context, criteria engine.SearchCriteria) ([]engine.Prospect, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%ssearch/results/people/?%s", c.opts.BaseURL, searchParams(criteria).Encode())
	page, err := c.navigate(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	time.Sleep(2 * time.Second)

	links := c.profileLinks(page)
	log.Printf("[LINKEDIN]: People search found %d profile links", len(links))

	prospects := []engine.Prospect{}
	seen := map[string]bool{}
	for _, link := range links {
		if len(prospects) >= c.opts.MaxSearchResults {
			break
		}

		href, err := link.Attribute("href")
		if err != nil || href == nil {
			continue
		}

		profileURL := normalizeProfileURL(*href)
		if !strings.Contains(profileURL, "/in/") || seen[profileURL] {
			continue
		}
		seen[profileURL] = true

		name, _ := link.Text()
		prospects = append(prospects, engine.Prospect{
			Name:       cleanResultText(name),
			ProfileURL: profileURL,
			ExternalID: externalIDFromURL(profileURL),
		})
	}
	return prospects, nil
}

// SearchContent runs a content/post search for the criteria and extracts the
// post authors as prospect candidates
func (c *Client) SearchContent(ctx context.Context, criteria engine.SearchCriteria) ([]engine.ContentAuthor, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("keywords", strings.Join(criteria.Keywords, " "))
	searchURL := fmt.Sprintf("%ssearch/results/content/?%s", c.opts.BaseURL, params.Encode())

	page, err := c.navigate(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	time.Sleep(2 * time.Second)

	links := c.profileLinks(page)
	log.Printf("[LINKEDIN]: Content search found %d author links", len(links))

	authors := []engine.ContentAuthor{}
	seen := map[string]bool{}
	for _, link := range links {
		if len(authors) >= c.opts.MaxSearchResults {
			break
		}

		href, err := link.Attribute("href")
		if err != nil || href == nil {
			continue
		}

		profileURL := normalizeProfileURL(*href)
		if !strings.Contains(profileURL, "/in/") || seen[profileURL] {
			continue
		}
		seen[profileURL] = true

		name, _ := link.Text()
		authors = append(authors, engine.ContentAuthor{
			Name:       cleanResultText(name),
			ProfileURL: profileURL,
			ExternalID: externalIDFromURL(profileURL),
		})
	}
	return authors, nil
}

// profileLinks extracts profile anchors from a search result page, trying
// selector strategies from most to least specific
func (c *Client) profileLinks(page *rod.Page) rod.Elements {
	links, err := page.Timeout(c.elementTimeout()).Elements(`a[href*="/in/"][data-test-app-aware-link]`)
	if err == nil && len(links) > 0 {
		return links
	}

	links, err = page.Timeout(c.elementTimeout()).Elements(`.search-results-container a[href*="/in/"]`)
	if err == nil && len(links) > 0 {
		return links
	}

	if items, err := page.Timeout(c.elementTimeout()).Elements(`ul[role="list"] li`); err == nil && len(items) > 0 {
		links = nil
		for _, item := range items {
			if itemLinks, err := item.Elements(`a[href*="/in/"]`); err == nil && len(itemLinks) > 0 {
				links = append(links, itemLinks[0])
			}
		}
		if len(links) > 0 {
			return links
		}
	}

	links, _ = page.Timeout(c.elementTimeout()).Elements(`a[href*="/in/"]`)
	return links
}

// searchParams builds the people-search query from stored criteria
func searchParams(criteria engine.SearchCriteria) url.Values {
	keywords := append([]string{}, criteria.Keywords...)
	keywords = append(keywords, criteria.JobTitles...)
	if criteria.Industry != "" {
		keywords = append(keywords, criteria.Industry)
	}

	params := url.Values{}
	params.Set("keywords", strings.Join(keywords, " "))
	params.Set("origin", "GLOBAL_SEARCH_HEADER")
	if criteria.Location != "" {
		params.Set("geoUrn", criteria.Location)
	}
	if criteria.ConnectionDegree != "" {
		params.Set("network", criteria.ConnectionDegree)
	}
	return params
}

// normalizeProfileURL strips query parameters and resolves relative hrefs
func normalizeProfileURL(href string) string {
	if i := strings.Index(href, "?"); i >= 0 {
		href = href[:i]
	}
	if !strings.HasPrefix(href, "http") {
		href = "https://www.linkedin.com" + href
	}
	return strings.TrimSuffix(href, "/")
}

// externalIDFromURL extracts the public identifier from a profile URL.
// Returns empty when the URL has no /in/ segment.
func externalIDFromURL(profileURL string) string {
	_, after, found := strings.Cut(profileURL, "/in/")
	if !found {
		return ""
	}
	if i := strings.IndexAny(after, "/?"); i >= 0 {
		after = after[:i]
	}
	return after
}

// cleanResultText collapses a result anchor's text down to a usable name
func cleanResultText(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}
