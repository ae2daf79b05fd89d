package ranking

// KeywordBoost awards points when the product name contains Keyword.
type KeywordBoost struct {
	Keyword string
	Points  float64
}

// Band awards Points when the distance is at most MaxKm.
type Band struct {
	MaxKm  float64
	Points float64
}

// Weights is the point table of the relevance score. Every signal the scorer
// reads has exactly one entry here.
type Weights struct {
	// Lexical, against the lowercased name unless noted.
	NameExact         float64
	NamePrefix        float64
	NameContains      float64
	ExpandedInName    float64 // per expanded term
	WordBoundary      float64 // per search word
	TagExact          float64 // per tag
	TagContains       float64 // per tag
	CategoryExact     float64
	CategoryContains  float64
	SubcategoryMatch  float64
	DescriptionPerHit float64 // per search word

	// Proximity.
	ProximityMax   float64 // decay ceiling at distance 0
	ProximityBands []Band  // deprecated bands policy, ascending MaxKm

	// Popularity.
	SalesPerUnit     float64
	SalesCap         float64
	RatingPerStar    float64
	RatingCap        float64
	ReviewsPerCount  float64
	ReviewsCap       float64
	FavoritesPerUnit float64
	FavoritesCap     float64

	// Seller quality.
	SellerRatingPerStar float64
	SellerRatingCap     float64
	SellerVerified      float64
	OnTimeRate          float64 // multiplied by rate in [0,1]
	ComplaintPenalty    float64 // multiplied by rate in [0,1] and subtracted

	// Recency, by whole days since creation.
	RecentWeek     float64 // <= 7 days
	RecentMonth    float64 // <= 30 days
	RecentQuarter  float64 // <= 90 days
	NewListingMax  float64 // NewListingMax - days, while days <= NewListingDays
	NewListingDays int

	// Curation.
	Featured float64
	Seasonal float64
	Curated  float64
	Badges   map[string]float64

	// Quality keywords.
	Organic      float64
	NameKeywords []KeywordBoost

	// Stock and media.
	HasImage       float64
	WellStocked    float64
	StockThreshold int
}

// DefaultWeights returns the canonical weight table.
func DefaultWeights() Weights {
	return Weights{
		NameExact:         1000,
		NamePrefix:        500,
		NameContains:      300,
		ExpandedInName:    250,
		WordBoundary:      150,
		TagExact:          300,
		TagContains:       150,
		CategoryExact:     500,
		CategoryContains:  100,
		SubcategoryMatch:  80,
		DescriptionPerHit: 30,

		ProximityMax: 200,
		ProximityBands: []Band{
			{MaxKm: 5, Points: 200},
			{MaxKm: 10, Points: 150},
			{MaxKm: 25, Points: 100},
			{MaxKm: 50, Points: 50},
		},

		SalesPerUnit:     10,
		SalesCap:         200,
		RatingPerStar:    20,
		RatingCap:        100,
		ReviewsPerCount:  2,
		ReviewsCap:       100,
		FavoritesPerUnit: 5,
		FavoritesCap:     100,

		SellerRatingPerStar: 30,
		SellerRatingCap:     150,
		SellerVerified:      50,
		OnTimeRate:          100,
		ComplaintPenalty:    200,

		RecentWeek:     50,
		RecentMonth:    30,
		RecentQuarter:  15,
		NewListingMax:  50,
		NewListingDays: 30,

		Featured: 200,
		Seasonal: 100,
		Curated:  150,
		Badges: map[string]float64{
			"trending":   100,
			"bestseller": 150,
			"new":        80,
		},

		Organic: 30,
		NameKeywords: []KeywordBoost{
			{Keyword: "fresh", Points: 15},
			{Keyword: "organic", Points: 20},
			{Keyword: "artisan", Points: 20},
			{Keyword: "homemade", Points: 20},
		},

		HasImage:       10,
		WellStocked:    5,
		StockThreshold: 10,
	}
}
