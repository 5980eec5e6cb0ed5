// Package scraper executes "scrapping" affiliate sources: it walks the
// source's page, extracts product cards and pushes them upstream as products.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/disparabot/admin/internal/models"
)

var (
	// ErrAlreadyRunning guards double execution of the same source.
	ErrAlreadyRunning = errors.New("scrapping já está sendo executado")
	// ErrSourceInactive refuses runs on deactivated sources.
	ErrSourceInactive = errors.New("scrapping está inativo")
	// ErrNotScrapable marks API-type sources, which have no page to walk.
	ErrNotScrapable = errors.New("fonte do tipo api não é raspável")
)

// ProductCreator pushes one collected product upstream.
type ProductCreator interface {
	Create(ctx context.Context, token string, in models.ProductInput) error
}

// Result summarizes one finished run.
type Result struct {
	SourceID  int64
	Collected int
	Err       error
}

// Runner owns the per-source execution registry. Execution state is local to
// the panel process; the upstream only learns about the products created.
type Runner struct {
	products    ProductCreator
	userAgent   string
	maxProducts int
	onDone      func(Result)

	mu     sync.Mutex
	states map[int64]models.ExecutionStatus
	counts map[int64]int
}

func NewRunner(products ProductCreator, userAgent string, maxProducts int, onDone func(Result)) *Runner {
	if maxProducts <= 0 {
		maxProducts = 50
	}
	return &Runner{
		products:    products,
		userAgent:   userAgent,
		maxProducts: maxProducts,
		onDone:      onDone,
		states:      make(map[int64]models.ExecutionStatus),
		counts:      make(map[int64]int),
	}
}

// Execute starts a collection run in the background. It fails fast when the
// source is inactive, not scrapable or already running.
func (r *Runner) Execute(ctx context.Context, token string, source models.Scrapping) error {
	if !source.Active {
		return ErrSourceInactive
	}
	if source.Type == models.TypeAPI {
		return ErrNotScrapable
	}

	r.mu.Lock()
	if r.states[source.ID] == models.ExecutionRunning {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.states[source.ID] = models.ExecutionRunning
	r.mu.Unlock()

	go r.run(token, source)
	return nil
}

// Status merges the local registry over whatever the listing reported.
func (r *Runner) Status(sourceID int64, fallback models.ExecutionStatus) models.ExecutionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status, ok := r.states[sourceID]; ok {
		return status
	}
	return fallback
}

// Collected returns how many products the last local run created.
func (r *Runner) Collected(sourceID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[sourceID]
}

func (r *Runner) run(token string, source models.Scrapping) {
	log.Printf("Starting scrapping run for source %d (%s)", source.ID, source.Name)

	collected, err := r.collect(token, source)

	r.mu.Lock()
	r.counts[source.ID] = collected
	if err != nil {
		r.states[source.ID] = models.ExecutionError
	} else {
		r.states[source.ID] = models.ExecutionStopped
	}
	r.mu.Unlock()

	if err != nil {
		log.Printf("Scrapping run for source %d failed after %d products: %v", source.ID, collected, err)
	} else {
		log.Printf("Scrapping run for source %d collected %d products", source.ID, collected)
	}

	if r.onDone != nil {
		r.onDone(Result{SourceID: source.ID, Collected: collected, Err: err})
	}
}

func (r *Runner) collect(token string, source models.Scrapping) (int, error) {
	parsed, err := url.Parse(source.URL)
	if err != nil || parsed.Host == "" {
		return 0, fmt.Errorf("url da fonte inválida: %q", source.URL)
	}

	c := colly.NewCollector(
		colly.UserAgent(r.userAgent),
		colly.AllowedDomains(parsed.Hostname()),
		colly.MaxDepth(2),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		RandomDelay: 2 * time.Second,
	})

	collected := 0
	var collectErr error
	var mu sync.Mutex

	c.OnHTML("[data-product], .product, .product-card, article.product-item", func(e *colly.HTMLElement) {
		mu.Lock()
		if collected >= r.maxProducts || collectErr != nil {
			mu.Unlock()
			return
		}
		mu.Unlock()

		product, ok := extractProduct(e.DOM, e.Request.URL, source)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := r.products.Create(ctx, token, product)
		cancel()

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			collectErr = err
			return
		}
		collected++
	})

	c.OnError(func(resp *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		if collectErr == nil {
			collectErr = fmt.Errorf("fetch %s failed: %w", resp.Request.URL, err)
		}
	})

	if err := c.Visit(source.URL); err != nil {
		return 0, err
	}
	c.Wait()

	return collected, collectErr
}

// extractProduct pulls name, price, link and image out of one product card.
// Cards missing a name or a usable link are skipped.
func extractProduct(card *goquery.Selection, base *url.URL, source models.Scrapping) (models.ProductInput, bool) {
	name := strings.TrimSpace(card.Find(".product-title, .product-name, h2, h3").First().Text())
	if name == "" {
		return models.ProductInput{}, false
	}

	href, _ := card.Find("a[href]").First().Attr("href")
	link := resolveURL(base, href)
	if link == "" {
		return models.ProductInput{}, false
	}

	priceText := card.Find(".price, .product-price, [data-price]").First().Text()
	price := ParsePrice(priceText)

	image, _ := card.Find("img[src]").First().Attr("src")

	return models.ProductInput{
		Name:          name,
		Description:   strings.TrimSpace(card.Find(".description, .product-description, p").First().Text()),
		ImageURL:      resolveURL(base, image),
		Price:         price,
		URL:           link,
		AffiliateID:   source.ID,
		Source:        source.Type,
		AffiliateCode: source.Key1,
		IsActive:      true,
	}, true
}

func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}

var priceDigits = regexp.MustCompile(`[\d.,]+`)

// ParsePrice reads Brazilian-formatted price text ("R$ 1.234,56") into a
// float. Unparseable text reads as zero.
func ParsePrice(text string) float64 {
	match := priceDigits.FindString(text)
	if match == "" {
		return 0
	}
	// 1.234,56 -> 1234.56
	if strings.Contains(match, ",") {
		match = strings.ReplaceAll(match, ".", "")
		match = strings.ReplaceAll(match, ",", ".")
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}
