package metrics

import (
	"errors"
	"testing"

	"github.com/celer-network/go-eosdeploy/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDeployment(t *testing.T) {
	c := NewCollector()
	c.ObserveDeployment(types.OutcomeSuccess, 5200)
	c.ObserveDeployment(types.OutcomeUnchanged, 0)
	c.ObserveDeployment(types.OutcomeFailure, 900)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.deployments.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.deployments.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.deployments.WithLabelValues("failure")))
	assert.Equal(t, 5200.0, testutil.ToFloat64(c.ramPurchased), "rejected purchases are not counted")
}

func TestObservePublish(t *testing.T) {
	c := NewCollector()
	c.ObservePublish(nil)
	c.ObservePublish(errors.New("bad"))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.publishes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.publishes.WithLabelValues("error")))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveDeployment(types.OutcomeSuccess, 10)
		c.ObservePublish(nil)
	})
}

func TestRegistryGathers(t *testing.T) {
	c := NewCollector()
	c.ObserveDeployment(types.OutcomeSuccess, 1)
	families, err := c.Registry().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
