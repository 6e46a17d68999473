package toyota

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"wheelfinder/config"
	"wheelfinder/models"
	"wheelfinder/segment"
	"wheelfinder/utils"
)

// listingLD is the JSON-LD vehicle block embedded in each inventory card.
type listingLD struct {
	Model                string      `json:"model"`
	Brand                string      `json:"brand"`
	VehicleModelDate     string      `json:"vehicleModelDate"`
	VehicleInteriorColor string      `json:"vehicleInteriorColor"`
	VehicleTransmission  string      `json:"vehicleTransmission"`
	Color                string      `json:"color"`
	Offers               struct {
		Price json.Number `json:"price"`
		URL   string      `json:"url"`
	} `json:"offers"`
}

// fragment mirrors the JS-side extraction of one details-value element.
type fragment struct {
	Text string `json:"text"`
	Hint string `json:"hint"`
}

// Scraper collects the Toyota per-brand table. The inventory page yields
// structured JSON-LD base rows; the detail pages yield one flat stream of
// attribute fragments that is segmented and classified downstream.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	seen   *utils.Seen
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Toyota Scraper.
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

// Scrape builds the Toyota brand table: base rows from the inventory page,
// detail fragments from each car page, segmented and zipped by position.
func (s *Scraper) Scrape(allocCtx context.Context) ([]*models.VehicleRecord, error) {
	s.logger.Info("[toyota] Starting scrape — inventory: %s", s.cfg.ToyotaURL)

	base, err := s.collectBaseRows(allocCtx)
	if err != nil {
		return nil, fmt.Errorf("toyota: collect base rows: %w", err)
	}
	s.logger.Info("[toyota] Found %d inventory cards", len(base))

	if s.cfg.MaxListings > 0 && len(base) > s.cfg.MaxListings {
		base = base[:s.cfg.MaxListings]
	}

	stream := s.collectFragments(allocCtx, base)
	s.logger.Info("[toyota] Collected %d detail fragments", len(stream))

	groups := segment.Groups(stream)
	if len(groups) != len(base) {
		s.logger.Warn("[toyota] %d fragment groups for %d cards — missing details become absent",
			len(groups), len(base))
	}

	records := zipRecords(base, groups)

	s.logger.Info("[toyota] Scrape complete — %d records", len(records))
	return records, nil
}

// zipRecords pairs each base row with its classified detail group by
// position. Base rows past the last group still yield records, with every
// detail attribute absent. Records with fewer than two populated non-URL
// fields are dropped.
func zipRecords(base []listingLD, groups [][]models.RawField) []*models.VehicleRecord {
	records := make([]*models.VehicleRecord, 0, len(base))
	for i, b := range base {
		var details segment.Details
		if i < len(groups) {
			details = segment.ParseGroup(groups[i])
		}
		rec := assemble(b, details)
		if rec.PopulatedFields() < 2 {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// collectBaseRows reads every JSON-LD vehicle block off the inventory page.
func (s *Scraper) collectBaseRows(allocCtx context.Context) ([]listingLD, error) {
	var rows []listingLD

	err := s.retry.Do("toyota-inventory", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		var blocks []string
		if err := chromedp.Run(ctx,
			chromedp.Navigate(s.cfg.ToyotaURL),
			chromedp.WaitVisible(".srp-vehicle-list-item", chromedp.ByQuery),
			chromedp.Evaluate(`
				(function() {
					var out = [];
					var cards = document.querySelectorAll('div.row.mb-5.mt-2');
					for (var i = 0; i < cards.length; i++) {
						var scripts = cards[i].querySelectorAll('script[type="application/ld+json"]');
						for (var j = 0; j < scripts.length; j++) {
							if (scripts[j].textContent) out.push(scripts[j].textContent);
						}
					}
					return out;
				})()
			`, &blocks),
		); err != nil {
			return fmt.Errorf("chromedp inventory page: %w", err)
		}

		parsed := make([]listingLD, 0, len(blocks))
		for _, block := range blocks {
			var ld listingLD
			if err := json.Unmarshal([]byte(block), &ld); err != nil {
				s.logger.Debug("[toyota] Unparseable JSON-LD block skipped: %v", err)
				continue
			}
			parsed = append(parsed, ld)
		}

		rows = parsed
		return nil
	})

	return rows, err
}

// collectFragments visits every car page and returns all details-value
// fragments as one flat stream in card order. A failed page contributes
// nothing; the batch continues.
func (s *Scraper) collectFragments(allocCtx context.Context, base []listingLD) []models.RawField {
	perCar := make([][]models.RawField, len(base))

	for i, b := range base {
		idx, url := i, strings.TrimSpace(b.Offers.URL)
		if !strings.HasPrefix(url, "http") {
			s.logger.Warn("[toyota] Card %d has no usable URL, skipped", i)
			continue
		}
		if !s.seen.Add(url) {
			s.logger.Debug("[toyota] Duplicate car URL skipped: %s", url)
			continue
		}

		s.pool.Submit(func() {
			frags, err := s.scrapeCarPage(allocCtx, url)
			if err != nil {
				s.logger.Warn("[toyota] Car page failed %s: %v", url, err)
				return
			}
			perCar[idx] = frags
		})
	}
	s.pool.Wait()

	var stream []models.RawField
	for _, frags := range perCar {
		stream = append(stream, frags...)
	}
	return stream
}

func (s *Scraper) scrapeCarPage(allocCtx context.Context, url string) ([]models.RawField, error) {
	var fields []models.RawField

	err := s.retry.Do("toyota-car-page", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		var frags []fragment
		if err := chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.Sleep(5*time.Second),
			chromedp.Evaluate(`
				(function() {
					var out = [];
					var els = document.querySelectorAll('div.details-value');
					for (var i = 0; i < els.length; i++) {
						var hint = '';
						var span = els[i].querySelector('span');
						if (span && (span.getAttribute('type') || '').indexOf('ddoa-interior-color') !== -1) {
							hint = 'interior-color';
						}
						out.push({text: els[i].innerText.trim(), hint: hint});
					}
					return out;
				})()
			`, &frags),
		); err != nil {
			return fmt.Errorf("chromedp car page: %w", err)
		}

		fields = fields[:0]
		for _, f := range frags {
			raw := models.RawField{Text: f.Text}
			if f.Hint == string(models.HintInteriorColor) {
				raw.Hint = models.HintInteriorColor
			}
			fields = append(fields, raw)
		}
		return nil
	})

	return fields, err
}

// assemble zips one JSON-LD base row with its classified detail group. Base
// fields win where both sides carry a value, matching the column precedence
// of the combined table.
func assemble(b listingLD, d segment.Details) *models.VehicleRecord {
	rec := &models.VehicleRecord{
		SourceURL: strings.TrimSpace(b.Offers.URL),
		Brand:     b.Brand,
		Model:     b.Model,
		ScrapedAt: time.Now(),
	}

	if year, err := strconv.Atoi(strings.TrimSpace(b.VehicleModelDate)); err == nil {
		rec.Year = models.Int(year)
	}
	if price, err := b.Offers.Price.Float64(); err == nil && price > 0 {
		rec.Price = models.Float(price)
	}
	if t := strings.TrimSpace(b.VehicleTransmission); t != "" {
		rec.Transmission = models.Str(t)
	} else {
		rec.Transmission = d.Transmission
	}
	if c := strings.TrimSpace(b.VehicleInteriorColor); c != "" {
		rec.InteriorColor = models.Str(c)
	} else {
		rec.InteriorColor = d.InteriorColor
	}

	rec.RawMPG = d.MPG
	rec.BodyType = d.BodyType
	rec.Engine = d.Engine
	rec.DriveType = d.DriveType
	rec.ModelCode = d.ModelCode
	return rec
}
