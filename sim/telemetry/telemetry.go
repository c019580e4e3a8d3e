// Package telemetry is a prometheus-backed node.EventSink: it turns path
// acceptance/pruning and datagram receipt into counters an operator can
// scrape, grounded on the teacher's metrics_processing exporter, which
// wires the same collector shape onto github.com/prometheus/client_golang.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"warp/forward"
	"warp/spf"
	"warp/topo"
)

// Sink implements node.EventSink and additionally exposes a dropped-
// datagram gauge the console updates directly from each node's
// DropCount, since that counter lives outside the EventSink contract.
type Sink struct {
	DatagramsReceived *prometheus.CounterVec
	RoutesAccepted    *prometheus.CounterVec
	RoutesPruned      *prometheus.CounterVec
	DatagramsDropped  *prometheus.GaugeVec
	DeadNeighbors     *prometheus.GaugeVec

	Log *logrus.Entry
}

// New registers WARP's metrics against reg and returns a ready Sink.
func New(reg prometheus.Registerer, log *logrus.Entry) *Sink {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	factory := promauto.With(reg)
	return &Sink{
		DatagramsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warp_datagrams_received_total",
			Help: "Datagrams delivered locally to a node as their destination.",
		}, []string{"node"}),
		RoutesAccepted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warp_routes_accepted_total",
			Help: "Candidate paths the K-Path Selector accepted.",
		}, []string{"node"}),
		RoutesPruned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warp_routes_pruned_total",
			Help: "Candidate paths the K-Path Selector rejected, by reason.",
		}, []string{"node", "reason"}),
		DatagramsDropped: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "warp_datagrams_dropped",
			Help: "Cumulative datagrams a node has dropped (unroutable or inactive).",
		}, []string{"node"}),
		DeadNeighbors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "warp_dead_neighbors_declared",
			Help: "Cumulative direct neighbors a node has declared dead on liveness timeout.",
		}, []string{"node"}),
		Log: log,
	}
}

// OnDatagramReceived implements node.EventSink.
func (s *Sink) OnDatagramReceived(n *topo.Node, dg *forward.Datagram) {
	s.DatagramsReceived.WithLabelValues(n.Name).Inc()
	s.Log.WithFields(logrus.Fields{
		"node": n.Name, "source": dg.Source.Name, "destination": dg.Destination.Name,
	}).Debug("datagram received")
}

// OnPathAccepted implements node.EventSink.
func (s *Sink) OnPathAccepted(n *topo.Node, path spf.Path) {
	s.RoutesAccepted.WithLabelValues(n.Name).Inc()
}

// OnPathPruned implements node.EventSink.
func (s *Sink) OnPathPruned(n *topo.Node, path spf.Path, reason string) {
	s.RoutesPruned.WithLabelValues(n.Name, reason).Inc()
}

// SetDropped records node's current cumulative drop count. The console
// (cmd/warpsim) calls this for every node after each tick run it
// advances, since DropCount lives on node.Node rather than flowing
// through the EventSink interface.
func (s *Sink) SetDropped(nodeName string, count uint64) {
	s.DatagramsDropped.WithLabelValues(nodeName).Set(float64(count))
}

// SetDeadNeighbors records node's current cumulative count of declared-dead
// direct neighbors. The console calls this alongside SetDropped, since
// DeadNeighborCount likewise lives on node.Node
// rather than flowing through the EventSink interface.
func (s *Sink) SetDeadNeighbors(nodeName string, count uint64) {
	s.DeadNeighbors.WithLabelValues(nodeName).Set(float64(count))
}
