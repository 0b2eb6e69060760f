package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/logbook"
	"github.com/aquabotics/amlac/internal/sensing"
)

func TestConnectWithoutBrokerReturnsNil(t *testing.T) {
	cfg := config.Default()
	cfg.MQTTBroker = ""

	p, err := Connect(cfg)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNilPublisherIsSafe(t *testing.T) {
	// The no-broker configuration wires a nil publisher into the
	// control loop; every method must be a silent no-op on it.
	var p *Publisher

	p.PublishState("scanning", 3)
	p.PublishSnapshot(sensing.Snapshot{})
	p.PublishCollection(logbook.CollectionEvent{Collections: 1})
	p.Close()
}
