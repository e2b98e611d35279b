package mirroring

import (
	"context"

	"github.com/hydrotools/cistern/csapi"
)

// mockPusher pushes nowhere and remembers what it was given. Tests only.
type mockPusher struct {
	cfg     csapi.MockPushConfig
	vessels map[csapi.VesselCID]string
}

func newMockPusher(ctx context.Context, cfg csapi.MockPushConfig) (mockPusher, error) {
	return mockPusher{
		cfg:     cfg,
		vessels: map[csapi.VesselCID]string{},
	}, nil
}

func (p *mockPusher) hasVessel(id csapi.VesselCID) (bool, error) {
	_, exists := p.vessels[id]
	return exists, nil
}

func (p *mockPusher) pushVessel(id csapi.VesselCID, localPath string) error {
	p.vessels[id] = localPath
	return nil
}
