package describe

import (
	"context"
	"strings"
)

// Request carries the inputs for one description generation.
type Request struct {
	ProductName     string
	UserDescription string
	Sizes           []string
	Prices          []string
}

// Describer produces the finished marketing description for a submission:
// generated body text, the storefront line, and trailing hashtags.
type Describer interface {
	Describe(ctx context.Context, req Request) (string, error)
}

const (
	descriptionPrefix = "Shop our"
	storefrontLine    = "Visit rezagemcollection.shop where you can find all our products."
	maxHashtags       = 15
)

// AuxiliaryInfo formats the optional size/price clauses embedded in the
// generation prompt and stored as the product's sizePriceData. Returns ""
// when neither list is populated.
func AuxiliaryInfo(sizes, prices []string) string {
	var sizeClause, priceClause string
	if len(sizes) > 0 {
		sizeClause = "Available sizes: " + strings.Join(sizes, ", ")
	}
	if len(prices) > 0 {
		tagged := make([]string, len(prices))
		for i, p := range prices {
			tagged[i] = p + "$ CAD"
		}
		priceClause = "Prices: " + strings.Join(tagged, ", ")
	}
	switch {
	case sizeClause != "" && priceClause != "":
		return sizeClause + ". " + priceClause + "."
	case sizeClause != "":
		return sizeClause + "."
	case priceClause != "":
		return priceClause + "."
	}
	return ""
}

// parseHashtags splits the raw hashtag completion on line breaks, trims each
// line, drops empties, and caps the result at maxHashtags. Fewer tags are
// returned as-is; there is no padding.
func parseHashtags(raw string) []string {
	var tags []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tags = append(tags, line)
		if len(tags) == maxHashtags {
			break
		}
	}
	return tags
}

// finalize assembles the response: body text forced to start with the fixed
// prefix, the storefront line, then the space-joined hashtags.
func finalize(body string, hashtags []string) string {
	description := strings.TrimSpace(body)
	if !strings.HasPrefix(description, descriptionPrefix) {
		description = descriptionPrefix + " " + description
	}
	description += "\n\n" + storefrontLine + "\n\n"
	description += strings.Join(hashtags, " ")
	return description
}
