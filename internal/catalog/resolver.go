package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"santa-agent-service/internal/domain"
)

// Source resolves a free-text gift phrase to one catalog record.
type Source interface {
	Resolve(ctx context.Context, gift string) (domain.CatalogProduct, error)
}

// categoryTable maps gift keywords to catalog categories. Order matters: the
// first key contained in the phrase wins.
var categoryTable = []struct {
	keyword  string
	category string
}{
	{"webcam", "mobile-accessories"},
	{"camera", "mobile-accessories"},
	{"car", "vehicle"},
	{"vehicle", "vehicle"},
	{"phone", "smartphones"},
	{"iphone", "smartphones"},
	{"smartphone", "smartphones"},
	{"laptop", "laptops"},
	{"computer", "laptops"},
	{"watch", "mens-watches"},
	{"wristwatch", "mens-watches"},
	{"headphones", "mobile-accessories"},
	{"earbuds", "mobile-accessories"},
	{"airpods", "mobile-accessories"},
	{"tablet", "tablets"},
	{"bicycle", "sports-accessories"},
	{"bike", "sports-accessories"},
	{"sunglasses", "sunglasses"},
	{"glasses", "sunglasses"},
	{"bag", "womens-bags"},
	{"handbag", "womens-bags"},
	{"furniture", "furniture"},
	{"chair", "furniture"},
	{"sofa", "furniture"},
	{"perfume", "fragrances"},
	{"cologne", "fragrances"},
}

const (
	searchLimit      = 5
	catalogScanLimit = 100
)

// Resolver turns a gift phrase into a product through three tiers, each
// exhausted before the next: direct search over term variants, category
// fallback, then a catalog-wide scan that picks the first item
// unconditionally if nothing matches. A failed call is swallowed and the
// next variant tried; only when every call failed does resolution report the
// catalog as unavailable.
type Resolver struct {
	client *Client
	log    *zap.Logger
}

func NewResolver(client *Client, log *zap.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, gift string) (domain.CatalogProduct, error) {
	terms, categories := searchPlan(gift)
	reachable := false

	for _, term := range terms {
		products, err := r.client.Search(ctx, term, searchLimit)
		if err != nil {
			r.log.Warn("catalog search failed", zap.String("term", term), zap.Error(err))
			continue
		}
		reachable = true
		if len(products) == 0 {
			continue
		}
		if match, ok := bestTitleMatch(products, term); ok {
			r.log.Info("resolved gift via search", zap.String("term", term), zap.String("title", match.Title))
			return match, nil
		}
		return products[0], nil
	}

	for _, category := range categories {
		products, err := r.client.Category(ctx, category, 0)
		if err != nil {
			r.log.Warn("catalog category lookup failed", zap.String("category", category), zap.Error(err))
			continue
		}
		reachable = true
		if len(products) > 0 {
			r.log.Info("resolved gift via category", zap.String("category", category), zap.String("title", products[0].Title))
			return products[0], nil
		}
	}

	products, err := r.client.List(ctx, catalogScanLimit)
	if err != nil {
		r.log.Warn("catalog listing failed", zap.Error(err))
	} else {
		reachable = true
		scanTerms := terms
		if len(scanTerms) > 3 {
			scanTerms = scanTerms[:3]
		}
		for _, product := range products {
			if matchesAny(product, scanTerms) {
				r.log.Info("resolved gift via catalog scan", zap.String("title", product.Title))
				return product, nil
			}
		}
		if len(products) > 0 {
			// No textual match anywhere; resolution still succeeds with the
			// first listed item rather than failing the wish.
			r.log.Info("resolved gift via unconditional fallback", zap.String("title", products[0].Title))
			return products[0], nil
		}
	}

	if !reachable {
		return domain.CatalogProduct{}, domain.ErrCatalogUnavailable
	}
	return domain.CatalogProduct{}, domain.ErrNoMatch
}

// searchPlan derives the ordered term variants and the category fallbacks
// for a gift phrase.
func searchPlan(gift string) (terms []string, categories []string) {
	lower := strings.ToLower(gift)
	terms = []string{
		gift,
		lower,
		strings.ReplaceAll(gift, " ", "-"),
		strings.ReplaceAll(gift, " ", ""),
	}
	for _, entry := range categoryTable {
		if strings.Contains(lower, entry.keyword) {
			categories = append(categories, entry.category)
			terms = append(terms, entry.keyword)
			break
		}
	}
	return terms, categories
}

// bestTitleMatch prefers a candidate whose title contains the search term.
func bestTitleMatch(products []domain.CatalogProduct, term string) (domain.CatalogProduct, bool) {
	needle := strings.ToLower(term)
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Title), needle) {
			return product, true
		}
	}
	return domain.CatalogProduct{}, false
}

func matchesAny(product domain.CatalogProduct, terms []string) bool {
	title := strings.ToLower(product.Title)
	description := strings.ToLower(product.Description)
	category := strings.ToLower(product.Category)
	for _, term := range terms {
		needle := strings.ToLower(term)
		if strings.Contains(title, needle) || strings.Contains(description, needle) || strings.Contains(category, needle) {
			return true
		}
	}
	return false
}
