package extractor

import (
	"sjsage522/aplusworker/config"
	"sjsage522/aplusworker/logger"
)

// aplusGeneralSelectors are the fallback containers shared by every
// enhanced content category. A match here is only accepted after the
// category's marker check.
var aplusGeneralSelectors = []string{
	"#aplus_feature_div",
	"#aplus",
	".aplus-module",
	`[data-feature-name="aplus"]`,
}

// CreateExtractors creates all the extractors based on the configuration
func CreateExtractors(cfg *config.Config) []Extractor {
	// Enhanced content categories in priority order
	categories := []CategoryConfig{
		{
			Category: CategoryProductDescription,
			Cascade: SelectorCascade{
				Specific: []string{
					"#productDescription_feature_div",
					`[data-feature-name="productDescription"]`,
				},
				General: aplusGeneralSelectors,
			},
			Markers:    []string{"Product description", "Product Description"},
			FilePrefix: "A+",
		},
		{
			Category: CategoryBrandStory,
			Cascade: SelectorCascade{
				Specific: []string{
					"#aplusBrandStory_feature_div",
					`[data-feature-name="aplusBrandStory"]`,
				},
				General: aplusGeneralSelectors,
			},
			Markers:    []string{"From the brand", "From the Brand"},
			FilePrefix: "brand",
		},
		{
			Category: CategoryManufacturer,
			Cascade: SelectorCascade{
				Specific: []string{
					"#manufacturer_feature_div",
					`[data-feature-name="manufacturer"]`,
					`[data-feature-name="fromTheManufacturer"]`,
				},
				General: aplusGeneralSelectors,
			},
			Markers:    []string{"From the manufacturer", "From the Manufacturer"},
			FilePrefix: "manufacturer",
		},
	}

	extractors := []Extractor{
		NewAplusExtractor("aplus", categories, cfg.CarouselMaxClicks),
		NewHeroExtractor("hero"),
		NewGalleryExtractor("gallery"),
	}

	logger.Info("Created %d extractors", len(extractors))
	for _, e := range extractors {
		logger.Debug("Extractor %s targets %s", e.GetName(), e.GetCategory())
	}

	return extractors
}
