package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Dimension is one named axis a proposal is scored on
type Dimension string

const (
	DimensionMarketViability      Dimension = "Market Viability"
	DimensionTechnicalFeasibility Dimension = "Technical Feasibility"
	DimensionUnitEconomics        Dimension = "Unit Economics"
	DimensionCompetitiveMoats     Dimension = "Competitive Moats"
	DimensionScalingBottlenecks   Dimension = "Scaling Bottlenecks"
)

// DefaultDimensions returns the fixed dimension set in display order.
// A new slice is returned on every call.
func DefaultDimensions() []Dimension {
	return []Dimension{
		DimensionMarketViability,
		DimensionTechnicalFeasibility,
		DimensionUnitEconomics,
		DimensionCompetitiveMoats,
		DimensionScalingBottlenecks,
	}
}

// IsValid checks if the dimension belongs to the default dimension set
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionMarketViability,
		DimensionTechnicalFeasibility,
		DimensionUnitEconomics,
		DimensionCompetitiveMoats,
		DimensionScalingBottlenecks:
		return true
	default:
		return false
	}
}

// Validate checks if the dimension is valid
func (d Dimension) Validate() error {
	if d == "" {
		return goerr.New("dimension cannot be empty")
	}
	if !d.IsValid() {
		return goerr.New("unknown dimension", goerr.V("dimension", d))
	}
	return nil
}

// String returns the string representation of the dimension
func (d Dimension) String() string {
	return string(d)
}
