package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/config"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/util"
)

// offerIDRegex pulls the listing identifier out of an offer URL, e.g.
// /d/oferta/pokoj-w-centrum-ID1a2b3c.html -> 1a2b3c.
var offerIDRegex = regexp.MustCompile(`ID([A-Za-z0-9]+)`)

// emptyPageLimit stops pagination after this many consecutive pages
// without any offer links. The site serves recommendation filler past
// the last real page instead of a 404.
const emptyPageLimit = 3

type Client struct {
	httpClient *http.Client
	config     *config.Config
	selectors  SelectorConfig
}

func New(cfg *config.Config, selectors SelectorConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config:    cfg,
		selectors: selectors,
	}
}

// ScrapeOffers walks the paginated search results, collects unique offer
// URLs, then fetches each offer's detail page. Offers whose detail page
// cannot be fetched or lacks a description are dropped with a warning,
// never failing the whole batch.
func (c *Client) ScrapeOffers(ctx context.Context) ([]models.RawOffer, error) {
	links, err := c.collectOfferLinks(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("Collected offer links", "count", len(links))

	offers := make([]models.RawOffer, len(links))
	found := make([]bool, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.DetailWorkers)
	for i, link := range links {
		g.Go(func() error {
			offer, err := c.scrapeOfferDetail(gctx, link)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("Skipping offer: detail page failed", "url", link, "error", err)
				return nil
			}
			offers[i] = offer
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]models.RawOffer, 0, len(offers))
	for i, offer := range offers {
		if found[i] {
			result = append(result, offer)
		}
	}
	return result, nil
}

// collectOfferLinks pages through the search results until emptyPageLimit
// consecutive pages yield no offer links or MaxPages is reached. The first
// page is retried with backoff; later pages fail soft since a partial
// listing is still worth processing.
func (c *Client) collectOfferLinks(ctx context.Context) ([]string, error) {
	var links []string
	seen := make(map[string]struct{})
	emptyPages := 0

	for page := 1; page <= c.config.MaxPages; page++ {
		pageURL := c.config.SearchURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s?page=%d", c.config.SearchURL, page)
		}

		var pageLinks []string
		fetch := func(attempt int) error {
			var err error
			pageLinks, err = c.scrapeListPage(ctx, pageURL)
			return err
		}

		var err error
		if page == 1 {
			err = util.RetryWithBackoff(ctx, 3, fetch)
		} else {
			err = fetch(0)
		}
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to scrape search results: %w", err)
			}
			slog.Warn("Failed to scrape results page, stopping pagination", "page", page, "error", err)
			break
		}

		newOnPage := 0
		for _, link := range pageLinks {
			id := OfferIDFromURL(link)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			links = append(links, link)
			newOnPage++
		}

		if newOnPage == 0 {
			emptyPages++
			if emptyPages >= emptyPageLimit {
				slog.Info("Reached end of listings", "page", page)
				break
			}
		} else {
			emptyPages = 0
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.config.PageDelay):
		}
	}

	return links, nil
}

func (c *Client) scrapeListPage(ctx context.Context, pageURL string) ([]string, error) {
	doc, err := c.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(c.selectors.OfferList.OfferLink).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = c.config.BaseURL + href
		}
		links = append(links, href)
	})
	return links, nil
}

func (c *Client) scrapeOfferDetail(ctx context.Context, offerURL string) (models.RawOffer, error) {
	doc, err := c.fetchHTML(ctx, offerURL)
	if err != nil {
		return models.RawOffer{}, err
	}

	offer := models.RawOffer{
		OfferID: OfferIDFromURL(offerURL),
		URL:     offerURL,
	}

	offer.Title = firstText(doc, c.selectors.OfferDetails.Title)
	if offer.Title == "" {
		return models.RawOffer{}, fmt.Errorf("no title found on %s", offerURL)
	}

	offer.PriceText = firstText(doc, c.selectors.OfferDetails.Price)
	if offer.PriceText == "" {
		offer.PriceText = "Brak ceny"
	}
	offer.PriceNumeric = util.ParsePrice(offer.PriceText)

	offer.Description = firstText(doc, c.selectors.OfferDetails.Description)
	if offer.Description == "" {
		return models.RawOffer{}, fmt.Errorf("no description found on %s", offerURL)
	}

	return offer, nil
}

// firstText returns the trimmed text of the first candidate selector that
// matches a non-empty element.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// OfferIDFromURL extracts the site's offer identifier from an offer URL.
// Returns the empty string when the URL carries no identifier.
func OfferIDFromURL(offerURL string) string {
	m := offerIDRegex.FindStringSubmatch(offerURL)
	if m == nil {
		return ""
	}
	return m[1]
}

func (c *Client) fetchHTML(ctx context.Context, urlStr string) (*goquery.Document, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %s: %w", urlStr, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %s: only http and https allowed", parsedURL.Scheme)
	}

	hostname := parsedURL.Hostname()
	allowed := false
	for _, domain := range c.config.AllowedDomains {
		if hostname == domain {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("security violation: URL hostname %s is not in allowlist", hostname)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %s: %w", urlStr, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL %s: status code %d", urlStr, res.StatusCode)
	}

	return goquery.NewDocumentFromReader(res.Body)
}
