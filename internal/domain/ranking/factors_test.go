package ranking

import (
	"slices"
	"testing"

	"github.com/bazaarmkt/bazaarmkt/internal/domain/geo"
)

func TestEngagedFactors(t *testing.T) {
	origin, _ := geo.NewPoint(45.5, -73.5)
	always := []Factor{FactorRecency, FactorCuration, FactorQuality, FactorListing}

	tests := []struct {
		name string
		q    *Query
		want []Factor
	}{
		{"browse", NewQuery("", nil, nil, 0, false, testNow), always},
		{"text", NewQuery("honey", nil, nil, 0, false, testNow), append([]Factor{FactorLexical}, always...)},
		{
			"text and location", NewQuery("honey", nil, &origin, 10, false, testNow),
			append([]Factor{FactorLexical, FactorProximity}, always...),
		},
		{
			"enhanced", NewQuery("", nil, nil, 0, true, testNow),
			append([]Factor{FactorPopularity, FactorSellerQuality}, always...),
		},
		{"punctuation only", NewQuery("?!", nil, nil, 0, false, testNow), always},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EngagedFactors(tc.q); !slices.Equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
