package honda

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"wheelfinder/config"
	"wheelfinder/extract"
	"wheelfinder/models"
	"wheelfinder/utils"
)

const (
	scrollPause = 1 * time.Second
	// Hard cap on scroll iterations so an infinite-scroll page cannot run
	// the collector forever.
	maxScrollIterations = 230
	// Stop scrolling after this many iterations without new listings.
	stableIterations = 5
)

// modelKeyPattern groups listing URLs by model so only the first listing of
// each model is visited.
var modelKeyPattern = regexp.MustCompile(`\d{4}-Honda-([^-]+-[^-]+|[^-]+)`)

// Scraper collects the Honda per-brand table: it scrolls the inventory page
// for listing links, dedups them by model, and extracts one record per
// detail page.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	seen   *utils.Seen
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Honda Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seen:   utils.NewSeen(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape drives link collection and per-listing extraction. One listing's
// failure never aborts the rest of the batch.
func (s *Scraper) Scrape(allocCtx context.Context) ([]*models.VehicleRecord, error) {
	s.logger.Info("[honda] Starting scrape — inventory: %s", s.cfg.HondaURL)

	links, err := s.collectLinks(allocCtx)
	if err != nil {
		return nil, fmt.Errorf("honda: collect links: %w", err)
	}
	s.logger.Info("[honda] Found %d listing links", len(links))

	unique := s.uniqueModelLinks(links)
	s.logger.Info("[honda] %d unique models after deduplication", len(unique))

	if s.cfg.MaxListings > 0 && len(unique) > s.cfg.MaxListings {
		unique = unique[:s.cfg.MaxListings]
	}

	// Workers write into their own slot so the batch keeps discovery order
	// regardless of completion order.
	perListing := make([]*models.VehicleRecord, len(unique))
	for i, link := range unique {
		idx, url := i, link
		s.pool.Submit(func() {
			rec, err := s.scrapeListing(allocCtx, url)
			if err != nil {
				if utils.IsSkippable(err) {
					s.logger.Warn("[honda] Skipping %s: %v", url, err)
				} else {
					s.logger.Error("[honda] Listing failed %s: %v", url, err)
				}
				return
			}
			if rec == nil {
				s.logger.Debug("[honda] Too little data, dropped: %s", url)
				return
			}
			perListing[idx] = rec
		})
	}
	s.pool.Wait()

	records := compact(perListing)
	s.logger.Info("[honda] Scrape complete — %d records", len(records))
	return records, nil
}

// compact drops the slots of failed or dropped listings, keeping the rest in
// discovery order.
func compact(perListing []*models.VehicleRecord) []*models.VehicleRecord {
	records := make([]*models.VehicleRecord, 0, len(perListing))
	for _, rec := range perListing {
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// collectLinks scrolls the inventory page until the listing count stops
// growing, then harvests every vehicle-title link.
func (s *Scraper) collectLinks(allocCtx context.Context) ([]string, error) {
	var links []string

	err := s.retry.Do("honda-collect-links", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 5*time.Minute)
		defer cancelTimeout()

		if err := chromedp.Run(ctx,
			chromedp.Navigate(s.cfg.HondaURL),
			chromedp.Sleep(5*time.Second),
		); err != nil {
			return fmt.Errorf("chromedp navigate: %w", err)
		}

		prevCount, stable := 0, 0
		for i := 0; i < maxScrollIterations; i++ {
			var count int
			if err := chromedp.Run(ctx,
				chromedp.Evaluate(`window.scrollBy(0, 1000)`, nil),
				chromedp.Sleep(scrollPause),
				chromedp.Evaluate(`document.querySelectorAll('a.vehicle-title').length`, &count),
			); err != nil {
				return fmt.Errorf("chromedp scroll: %w", err)
			}

			if count > prevCount {
				prevCount = count
				stable = 0
			} else {
				stable++
			}
			if stable >= stableIterations {
				break
			}
		}

		var found []string
		if err := chromedp.Run(ctx,
			chromedp.Evaluate(`
				(function() {
					var out = [];
					var anchors = document.querySelectorAll('a.vehicle-title');
					for (var i = 0; i < anchors.length; i++) {
						if (anchors[i].href) out.push(anchors[i].href);
					}
					return out;
				})()
			`, &found),
		); err != nil {
			return fmt.Errorf("chromedp harvest links: %w", err)
		}

		links = found
		return nil
	})

	return links, err
}

// uniqueModelLinks keeps the first listing URL seen for each model key,
// preserving discovery order.
func (s *Scraper) uniqueModelLinks(links []string) []string {
	var unique []string
	for _, url := range links {
		key := url
		if m := modelKeyPattern.FindStringSubmatch(url); m != nil {
			key = m[1]
		}
		if s.seen.Add(key) {
			unique = append(unique, url)
		}
	}
	return unique
}

// scrapeListing loads one detail page and extracts its record. Bot-challenge
// pages are classified skippable so the retry loop gives up on them at once.
func (s *Scraper) scrapeListing(allocCtx context.Context, url string) (*models.VehicleRecord, error) {
	var rec *models.VehicleRecord

	err := s.retry.Do("honda-listing", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		var title, page string
		if err := chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.Sleep(5*time.Second),
			chromedp.Title(&title),
		); err != nil {
			return fmt.Errorf("chromedp navigate: %w", err)
		}

		if strings.Contains(strings.ToLower(title), "cloudflare") {
			// Give the challenge one chance to clear, then drop the listing.
			if err := chromedp.Run(ctx, chromedp.Sleep(10*time.Second), chromedp.Title(&title)); err != nil {
				return fmt.Errorf("chromedp challenge wait: %w", err)
			}
			if strings.Contains(strings.ToLower(title), "cloudflare") {
				return utils.Skippable(fmt.Errorf("bot challenge page at %s", url))
			}
		}

		if err := chromedp.Run(ctx,
			chromedp.OuterHTML("html", &page),
		); err != nil {
			return fmt.Errorf("chromedp page source: %w", err)
		}

		rec = extract.Record(url, page)
		if rec != nil {
			rec.ScrapedAt = time.Now()
		}
		return nil
	})

	return rec, err
}
