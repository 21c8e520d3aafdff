package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EpisodesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recosim_episodes_total",
		Help: "Count of simulated user episodes started.",
	})

	BanditStepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recosim_bandit_steps_total",
		Help: "Count of bandit decision points stepped.",
	})

	ClicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recosim_clicks_total",
		Help: "Count of simulated clicks observed.",
	})
)

func init() {
	prometheus.MustRegister(EpisodesTotal, BanditStepsTotal, ClicksTotal)
}
