package ranking

// Factor names a scoring group engaged for a request.
type Factor string

// Factors reported in search metadata.
const (
	FactorLexical       Factor = "lexical"
	FactorProximity     Factor = "proximity"
	FactorPopularity    Factor = "popularity"
	FactorSellerQuality Factor = "seller_quality"
	FactorRecency       Factor = "recency"
	FactorCuration      Factor = "curation"
	FactorQuality       Factor = "quality"
	FactorListing       Factor = "listing"
)

// EngagedFactors lists the groups that can contribute for q, in scoring order.
func EngagedFactors(q *Query) []Factor {
	var out []Factor
	if q.HasText() {
		out = append(out, FactorLexical)
	}
	if q.origin != nil {
		out = append(out, FactorProximity)
	}
	if q.enhanced {
		out = append(out, FactorPopularity, FactorSellerQuality)
	}
	return append(out, FactorRecency, FactorCuration, FactorQuality, FactorListing)
}
