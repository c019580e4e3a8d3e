// Package node is the per-node orchestrator: it wires the Local
// Database (C4), the LSA Flooder (C5), the K-Path Selector (C6), the
// Path Picker (C7), and the Forwarding Plane (C8) together and owns the
// tick order spec.md §5 mandates: neighbor timeouts, then emissions,
// then ingestion of whatever arrived this tick. Grounded on the
// teacher's routing.PathManager as the "owns everything for one
// routing domain" shape, and cmd/main.go's construct-then-run pattern
// for wiring collaborators in from outside rather than reaching for
// global state.
package node

import (
	"github.com/sirupsen/logrus"

	"warp/advert"
	"warp/flood"
	"warp/forward"
	"warp/kpath"
	"warp/lsdb"
	"warp/pick"
	"warp/spf"
	"warp/topo"
)

// Payload is anything the physical-link collaborator can size for
// transmission-delay accounting: an *advert.LSA or a *forward.Datagram.
type Payload interface {
	WireSize() int
}

// PhysicalLink is the transmission collaborator spec.md §6 names: it
// enqueues a payload for delivery from one node to another, modeling the
// bandwidth-delay queue outside the core.
type PhysicalLink interface {
	SendDatagram(from, to *topo.Node, payload Payload)
}

// EventSink is the logging/telemetry collaborator spec.md §6 names.
type EventSink interface {
	OnDatagramReceived(node *topo.Node, dg *forward.Datagram)
	OnPathAccepted(node *topo.Node, path spf.Path)
	OnPathPruned(node *topo.Node, path spf.Path, reason string)
}

type sinkObserver struct {
	node *topo.Node
	sink EventSink
}

func (s sinkObserver) OnAccepted(p spf.Path) {
	if s.sink != nil {
		s.sink.OnPathAccepted(s.node, p)
	}
}

func (s sinkObserver) OnPruned(p spf.Path, reason string) {
	if s.sink != nil {
		s.sink.OnPathPruned(s.node, p, reason)
	}
}

// Config holds the per-node scenario parameters the simulator's
// topology loader supplies.
type Config struct {
	TopK                   int
	NeighborTimeout        float64
	HelloInterval          float64
	HelloBroadcastInterval int
	Jitter                 float64
	Algorithm              string // kpath.Registry key; defaults to "kpath"
}

// RouteSnapshot is a read-only view of one cached candidate route, used
// by the view, drawpaths and screenshot CLI commands without reaching
// into lsdb internals.
type RouteSnapshot struct {
	Destination    *topo.Node
	Path           []*topo.Node
	Weight         float64
	TotalBytesSent float64
	DeficitBytes   float64
}

// Node is the per-node routing engine.
type Node struct {
	Identity *topo.Node
	DB       *lsdb.DB
	Flooder  *flood.Flooder
	Plane    *forward.Plane
	Picker   *pick.Picker

	Link PhysicalLink
	Sink EventSink

	Active            bool
	DropCount         uint64
	DeadNeighborCount uint64

	inbox []Payload

	Log *logrus.Entry
}

// New constructs a Node. A nil registry falls back to kpath.NewRegistry();
// an unknown or empty cfg.Algorithm falls back to "kpath".
func New(identity *topo.Node, cfg Config, oracle lsdb.TopologyOracle, registry *kpath.Registry, link PhysicalLink, sink EventSink, rnd pick.Rand, log *logrus.Entry) *Node {
	if registry == nil {
		registry = kpath.NewRegistry()
	}
	alg, ok := registry.Get(cfg.Algorithm)
	if !ok {
		alg, _ = registry.Get("kpath")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("node", identity.Name)

	db := lsdb.New(identity, oracle, cfg.TopK, cfg.NeighborTimeout, log)
	obs := sinkObserver{node: identity, sink: sink}
	picker := pick.NewPicker(alg, obs)
	picker.Rand = rnd

	return &Node{
		Identity: identity,
		DB:       db,
		Flooder:  flood.New(db, cfg.HelloInterval, cfg.HelloBroadcastInterval, cfg.Jitter, log),
		Plane:    forward.NewPlane(picker),
		Picker:   picker,
		Link:     link,
		Sink:     sink,
		Active:   true,
		Log:      log,
	}
}

// SeedNeighbor installs a direct-neighbor edge and DirectNeighbors entry
// directly, bypassing hello discovery. Used to bootstrap a scenario's
// starting topology before the flooder has had a chance to converge it.
func (n *Node) SeedNeighbor(neighbor *topo.Node, link *topo.Link) {
	_ = n.DB.Graph.AddEdge(n.Identity, neighbor, link)
	n.DB.LinkRecords[link] = advert.LinkRecord{
		Link: link, ConnectedNode: neighbor, EffectiveBandwidth: topo.EffectiveBandwidth(link),
	}
	n.DB.DirectNeighbors[neighbor] = 0
	n.DB.InvalidateRoutes()
}

// SetActive toggles administrative up/down (the CLI's toggle command).
func (n *Node) SetActive(active bool) { n.Active = active }

// Receive is the physical-link collaborator's arrival callback. It only
// enqueues: actual processing happens during this node's own Update
// call, at the ingestion phase, to preserve the tick ordering spec.md §5
// requires (timeouts, then emissions, then ingestion).
func (n *Node) Receive(payload Payload) {
	n.inbox = append(n.inbox, payload)
}

// SendLSA implements flood.Sender by routing through the physical link.
func (n *Node) SendLSA(to *topo.Node, lsa *advert.LSA) {
	if n.Link != nil {
		n.Link.SendDatagram(n.Identity, to, lsa)
	}
}

// Update runs one tick: neighbor-timeout, then emissions, then
// ingestion of whatever arrived during prior ticks.
func (n *Node) Update(delta float64) {
	if !n.Active {
		n.inbox = nil
		return
	}

	dead := n.DB.Update(delta)
	n.DeadNeighborCount += uint64(len(dead))
	for _, deadNeighbor := range dead {
		for _, nb := range n.DB.Graph.Neighbors(deadNeighbor) {
			n.Flooder.UnicastSelfUpdate(nb.Node, n)
		}
	}

	n.Flooder.Update(delta, n)

	inbox := n.inbox
	n.inbox = nil
	for _, item := range inbox {
		n.ingest(item)
	}
}

func (n *Node) ingest(payload Payload) {
	switch v := payload.(type) {
	case *advert.LSA:
		n.Flooder.Receive(v, n)
	case *forward.Datagram:
		n.receiveDatagram(v)
	default:
		n.Log.Warnf("ingest: unrecognized payload type %T", v)
	}
}

func (n *Node) receiveDatagram(dg *forward.Datagram) {
	if dg.Destination == n.Identity {
		if n.Sink != nil {
			n.Sink.OnDatagramReceived(n.Identity, dg)
		}
		return
	}

	routed, hop, err := n.Plane.NextHop(n.DB, dg)
	if err != nil {
		n.Log.WithError(err).Error("forwarding plane invariant error, dropping")
		n.DropCount++
		return
	}
	if hop == nil {
		n.DropCount++
		return
	}
	if n.Link != nil {
		n.Link.SendDatagram(n.Identity, hop, routed)
	}
}

// RouteSnapshot returns a read-only view of the cached candidate routes
// to dst, or nil if none are cached.
func (n *Node) RouteSnapshot(dst *topo.Node) []RouteSnapshot {
	routes := n.DB.Routes[dst]
	if len(routes) == 0 {
		return nil
	}
	out := make([]RouteSnapshot, len(routes))
	for i, r := range routes {
		out[i] = RouteSnapshot{
			Destination:    dst,
			Path:           r.Path.Nodes,
			Weight:         r.Path.Weight,
			TotalBytesSent: r.TotalBytesSent,
			DeficitBytes:   r.DeficitBytes,
		}
	}
	return out
}

// SendDatagram starts a fresh send from this node (the CLI's send
// command): it runs the forwarding decision once and, if a next hop is
// found, enqueues the (possibly rewritten) datagram on the physical
// link.
func (n *Node) SendDatagram(dg *forward.Datagram) {
	if !n.Active {
		n.DropCount++
		return
	}
	routed, hop, err := n.Plane.NextHop(n.DB, dg)
	if err != nil {
		n.Log.WithError(err).Error("forwarding plane invariant error, dropping")
		n.DropCount++
		return
	}
	if hop == nil {
		n.DropCount++
		return
	}
	if n.Link != nil {
		n.Link.SendDatagram(n.Identity, hop, routed)
	}
}
