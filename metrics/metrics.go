// Package metrics exposes Prometheus collectors for deployment activity.
package metrics

import (
	"github.com/celer-network/go-eosdeploy/types"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eosdeploy"

// Collector groups the deployment collectors. A nil *Collector is valid and
// records nothing.
type Collector struct {
	registry     *prometheus.Registry
	deployments  *prometheus.CounterVec
	ramPurchased prometheus.Counter
	publishes    *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployments_total",
			Help:      "Deployment attempts by outcome.",
		}, []string{"outcome"}),
		ramPurchased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ram_purchased_bytes_total",
			Help:      "RAM bytes bought by planned deployments that were accepted.",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interface_publish_total",
			Help:      "Interface publications by result.",
		}, []string{"result"}),
	}
	c.registry.MustRegister(c.deployments, c.ramPurchased, c.publishes)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveDeployment(outcome types.Outcome, ramBought int64) {
	if c == nil {
		return
	}
	c.deployments.WithLabelValues(string(outcome)).Inc()
	if outcome == types.OutcomeSuccess && ramBought > 0 {
		c.ramPurchased.Add(float64(ramBought))
	}
}

func (c *Collector) ObservePublish(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.publishes.WithLabelValues(result).Inc()
}
