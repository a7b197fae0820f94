// Package pricing implements the static delivery price formula and the
// great-circle distance it depends on.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	baseFee    = decimal.New(100, -2) // €1.00 starting fee
	pricePerKm = decimal.New(100, -2) // €1.00 per kilometre
	feeRate    = decimal.New(10, -2)  // platform keeps 10% of the subtotal

	multipliers = map[string]decimal.Decimal{
		"small":  decimal.New(10, -1), // letter size
		"medium": decimal.New(15, -1), // shoebox, up to 2.5kg
		"large":  decimal.New(20, -1), // 5kg and up
	}
)

// Breakdown is the full price decomposition returned to callers.
type Breakdown struct {
	BaseFee         decimal.Decimal `json:"baseFee"`
	DistancePrice   decimal.Decimal `json:"distancePrice"`
	BaseCost        decimal.Decimal `json:"baseCost"`
	SizeMultiplier  decimal.Decimal `json:"sizeMultiplier"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	PlatformFee     decimal.Decimal `json:"platformFee"`
	Total           decimal.Decimal `json:"total"`
	GigWorkerPayout decimal.Decimal `json:"gigWorkerPayout"`
	PackageSize     string          `json:"packageSize"`
	DistanceKm      float64         `json:"distanceKm"`
}

// Calculate prices a delivery: total = (base + km×perKm) × multiplier + 10%
// platform fee on the subtotal. An unknown package size prices as small.
func Calculate(packageSize string, distanceKm float64) Breakdown {
	mult, ok := multipliers[packageSize]
	if !ok {
		mult = multipliers["small"]
	}

	distancePrice := decimal.NewFromFloat(distanceKm).Mul(pricePerKm)
	baseCost := baseFee.Add(distancePrice)
	subtotal := baseCost.Mul(mult).Round(2)
	platformFee := subtotal.Mul(feeRate).Round(2)
	total := subtotal.Add(platformFee)

	return Breakdown{
		BaseFee:         baseFee,
		DistancePrice:   distancePrice.Round(2),
		BaseCost:        baseCost.Round(2),
		SizeMultiplier:  mult,
		Subtotal:        subtotal,
		PlatformFee:     platformFee,
		Total:           total,
		GigWorkerPayout: total.Sub(platformFee),
		PackageSize:     packageSize,
		DistanceKm:      math.Round(distanceKm*100) / 100,
	}
}

const earthRadiusKm = 6371

// Distance computes the haversine great-circle distance in kilometres.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Coords is a latitude/longitude pair for estimates.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Estimate prices a delivery between two coordinates.
func Estimate(packageSize string, locker, delivery Coords) Breakdown {
	km := Distance(locker.Lat, locker.Lng, delivery.Lat, delivery.Lng)
	return Calculate(packageSize, km)
}

// RateCard is the static rate sheet served to clients.
type RateCard struct {
	BaseFee      string            `json:"baseFee"`
	PricePerKm   string            `json:"pricePerKm"`
	PackageSizes map[string]Rate   `json:"packageSizes"`
	Formula      string            `json:"formula"`
	Examples     map[string]string `json:"examples"`
	PlatformFee  string            `json:"platformFee"`
}

// Rate describes one package size tier.
type Rate struct {
	Multiplier  float64 `json:"multiplier"`
	Description string  `json:"description"`
}

// Rates returns the published rate card.
func Rates() RateCard {
	return RateCard{
		BaseFee:    "€1.00",
		PricePerKm: "€1.00",
		PackageSizes: map[string]Rate{
			"small":  {Multiplier: 1.0, Description: "Letter size"},
			"medium": {Multiplier: 1.5, Description: "Shoebox size, up to 2.5kg"},
			"large":  {Multiplier: 2.0, Description: "5kg+"},
		},
		Formula: "Total = (€1 + distance×€1) × multiplier + 10% platform fee",
		Examples: map[string]string{
			"1km_small":  "(€1 + €1) × 1.0 + 10% = €2.20",
			"1km_medium": "(€1 + €1) × 1.5 + 10% = €3.30",
			"5km_large":  "(€1 + €5) × 2.0 + 10% = €13.20",
		},
		PlatformFee: "10% of subtotal",
	}
}
