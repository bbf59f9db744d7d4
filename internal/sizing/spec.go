// Package sizing maps a target site count to the server resources required
// to host it.
package sizing

import "math"

// ResourceSpec describes the server resources required for a site count.
type ResourceSpec struct {
	RAMGB     int `json:"ram_gb"`
	CPUCores  int `json:"cpu_cores"`
	StorageGB int `json:"storage_gb"`
}

// Coefficients are the per-unit resource rates plus base floors.
// Required is ceil-linear in each dimension, so specs are monotonic
// non-decreasing in targetUnits. No upper bound is enforced; bounding is a
// policy decision left to configuration.
type Coefficients struct {
	RAMPerUnit     float64
	RAMBase        float64
	CPUPerUnit     float64
	CPUBase        float64
	StoragePerUnit float64
	StorageBase    float64
}

// DefaultCoefficients sizes for Magento-class sites: each site needs roughly
// 0.5 GB RAM, a tenth of a core, and 5 GB of disk on top of an 8 GB / 2-core
// / 50 GB floor.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		RAMPerUnit:     0.5,
		RAMBase:        8,
		CPUPerUnit:     0.1,
		CPUBase:        2,
		StoragePerUnit: 5,
		StorageBase:    50,
	}
}

// Calculator derives resource specs from a fixed coefficient set.
type Calculator struct {
	coeff Coefficients
}

// NewCalculator creates a Calculator with the given coefficients.
func NewCalculator(coeff Coefficients) *Calculator {
	return &Calculator{coeff: coeff}
}

// Required returns the resource spec for hosting targetUnits sites.
// Negative targets are treated as zero.
func (c *Calculator) Required(targetUnits int) ResourceSpec {
	if targetUnits < 0 {
		targetUnits = 0
	}
	n := float64(targetUnits)

	return ResourceSpec{
		RAMGB:     int(math.Ceil(n*c.coeff.RAMPerUnit + c.coeff.RAMBase)),
		CPUCores:  int(math.Ceil(n*c.coeff.CPUPerUnit + c.coeff.CPUBase)),
		StorageGB: int(math.Ceil(n*c.coeff.StoragePerUnit + c.coeff.StorageBase)),
	}
}
