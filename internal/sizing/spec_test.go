package sizing

import "testing"

func TestRequired(t *testing.T) {
	calc := NewCalculator(DefaultCoefficients())

	tests := []struct {
		name  string
		units int
		want  ResourceSpec
	}{
		{
			name:  "zero units gets the base floor",
			units: 0,
			want:  ResourceSpec{RAMGB: 8, CPUCores: 2, StorageGB: 50},
		},
		{
			name:  "one hundred fifty units",
			units: 150,
			want:  ResourceSpec{RAMGB: 83, CPUCores: 17, StorageGB: 800},
		},
		{
			name:  "fractional cores round up",
			units: 1,
			want:  ResourceSpec{RAMGB: 9, CPUCores: 3, StorageGB: 55},
		},
		{
			name:  "negative treated as zero",
			units: -10,
			want:  ResourceSpec{RAMGB: 8, CPUCores: 2, StorageGB: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Required(tt.units)
			if got != tt.want {
				t.Errorf("Required(%d) = %+v, want %+v", tt.units, got, tt.want)
			}
		})
	}
}

func TestRequiredMonotonic(t *testing.T) {
	calc := NewCalculator(DefaultCoefficients())

	prev := calc.Required(0)
	for units := 1; units <= 500; units++ {
		got := calc.Required(units)
		if got.RAMGB < prev.RAMGB || got.CPUCores < prev.CPUCores || got.StorageGB < prev.StorageGB {
			t.Fatalf("Required(%d) = %+v shrank from Required(%d) = %+v", units, got, units-1, prev)
		}
		prev = got
	}
}
