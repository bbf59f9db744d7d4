// Package probe counts billable units in the provider's app inventory.
package probe

import (
	"context"
	"strings"

	"github.com/fakelit/scalewatch/internal/cloudways"
	"github.com/fakelit/scalewatch/internal/errors"
)

// Sample is one capacity observation.
type Sample struct {
	// TotalUnits is every app provisioned on the monitored server.
	TotalUnits int
	// MatchingUnits is the subset counted against the scaling threshold.
	MatchingUnits int
}

// Prober reports the current unit counts. Implementations must be safe to
// call repeatedly from the monitor loop.
type Prober interface {
	Probe(ctx context.Context) (Sample, error)
}

// Inventory is the slice of the cloudways client the prober needs.
type Inventory interface {
	ListApps(ctx context.Context, serverID string) ([]cloudways.App, error)
}

// CloudwaysProber counts apps on one server whose name or label contains the
// configured label (case-insensitive), the provider's marker for billable
// Magento sites.
type CloudwaysProber struct {
	inventory Inventory
	serverID  string
	label     string
}

// NewCloudwaysProber creates a prober over the given inventory source.
func NewCloudwaysProber(inventory Inventory, serverID, label string) *CloudwaysProber {
	return &CloudwaysProber{
		inventory: inventory,
		serverID:  serverID,
		label:     strings.ToLower(label),
	}
}

// Probe queries the inventory and counts matching units. It has no side
// effects beyond the outbound query; on failure the caller keeps its prior
// state and retries on the next tick.
func (p *CloudwaysProber) Probe(ctx context.Context) (Sample, error) {
	apps, err := p.inventory.ListApps(ctx, p.serverID)
	if err != nil {
		return Sample{}, errors.NewProbeError("capacity check failed", err).WithServerID(p.serverID)
	}

	sample := Sample{TotalUnits: len(apps)}
	for _, app := range apps {
		if p.matches(app) {
			sample.MatchingUnits++
		}
	}
	return sample, nil
}

func (p *CloudwaysProber) matches(app cloudways.App) bool {
	return strings.Contains(strings.ToLower(app.Application), p.label) ||
		strings.Contains(strings.ToLower(app.Label), p.label)
}
