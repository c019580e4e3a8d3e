// Package lsdb is the per-node Local Database (C4): the owner's belief
// about the topology, accepted sequence numbers, direct-neighbor
// liveness timers, and the route cache that C6/C7 populate and consume.
// Grounded on the teacher's routing.PathManager (domain-keyed state,
// mutex-free because each instance belongs to exactly one node/tick) and
// common.TopologyGraph (adjacency storage this wraps as graph.Graph).
package lsdb

import (
	"github.com/sirupsen/logrus"

	"warp/advert"
	"warp/graph"
	"warp/spf"
	"warp/topo"
)

// TopologyOracle is the real-network adjacency collaborator spec.md §6
// grants process_lsa: used only to decide whether an LSA's forwarding
// node is a genuine physical neighbor not yet reflected in local_graph.
type TopologyOracle interface {
	NeighborsOf(n *topo.Node) []*topo.Node
}

// QueueRatioSource supplies the owner's current worst outbound-queue
// fill ratio for create_node_record's HighestObservedQueueRatio hint.
type QueueRatioSource interface {
	HighestQueueRatio() float64
}

// RouteInformation is a cached candidate path plus the byte/deficit
// accounting the Path Picker (C7) maintains against it.
type RouteInformation struct {
	Path           spf.Path
	TotalBytesSent float64
	DeficitBytes   float64
	AdjustedWeight float64
}

// defaultSyntheticBandwidth is used for an owner-forwarder edge
// synthesized from real-network adjacency before any LSA has told us
// its actual bandwidth. The topology oracle exposes adjacency only, not
// link attributes (spec.md §6). A later accepted Node Record naming this
// edge keeps the edge object, and so its bandwidth and path weight; it
// refreshes only the edge's link record.
const defaultSyntheticBandwidth = 1e6

// DB is one node's Local Database.
type DB struct {
	Owner *topo.Node
	Graph *graph.Graph

	NodeRecords          map[*topo.Node]advert.NodeRecord
	LinkRecords          map[*topo.Link]advert.LinkRecord
	SequenceNumbers      map[*topo.Node]int64
	MaxSequenceNumber    int64
	SequenceNumberOrigin map[*topo.Node]*topo.Node
	DirectNeighbors      map[*topo.Node]float64

	Routes map[*topo.Node][]*RouteInformation
	TopK   int

	LsaNeighborTimeout float64

	Oracle      TopologyOracle
	QueueSource QueueRatioSource
	Log         *logrus.Entry
}

// New constructs an empty Local Database owned by owner.
func New(owner *topo.Node, oracle TopologyOracle, topK int, neighborTimeout float64, log *logrus.Entry) *DB {
	g := graph.New()
	_ = g.AddVertex(owner)
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &DB{
		Owner:                owner,
		Graph:                g,
		NodeRecords:          map[*topo.Node]advert.NodeRecord{},
		LinkRecords:          map[*topo.Link]advert.LinkRecord{},
		SequenceNumbers:      map[*topo.Node]int64{},
		SequenceNumberOrigin: map[*topo.Node]*topo.Node{},
		DirectNeighbors:      map[*topo.Node]float64{},
		Routes:               map[*topo.Node][]*RouteInformation{},
		TopK:                 topK,
		LsaNeighborTimeout:   neighborTimeout,
		Oracle:               oracle,
		Log:                  log.WithField("owner", owner.Name),
	}
}

// InvalidateRoutes clears the route cache; called on any mutation that
// could change what C6 would select.
func (db *DB) InvalidateRoutes() {
	db.Routes = map[*topo.Node][]*RouteInformation{}
}

// SetTopK changes the candidate-path budget and invalidates the route
// cache, since a narrower or wider k changes what C6 would select.
func (db *DB) SetTopK(k int) {
	db.TopK = k
	db.InvalidateRoutes()
}

// NextSequenceNumber returns max_sequence_number+1 and immediately
// records it as the owner's own latest sequence number, so a later
// accepted self-echo (e.g. after a routing loop) is correctly rejected
// as stale rather than re-accepted.
func (db *DB) NextSequenceNumber() int64 {
	db.MaxSequenceNumber++
	db.SequenceNumbers[db.Owner] = db.MaxSequenceNumber
	return db.MaxSequenceNumber
}

// ProcessLSA implements §4.4.1. It returns true if the LSA was accepted.
func (db *DB) ProcessLSA(lsa *advert.LSA) bool {
	origin := lsa.Record.Node
	forwarder := lsa.ForwardingNode

	seq := db.SequenceNumbers[origin]
	if lsa.SequenceNumber <= seq {
		if _, known := db.DirectNeighbors[forwarder]; known {
			db.DirectNeighbors[forwarder] = 0
		}
		db.Log.WithFields(logrus.Fields{
			"origin": origin.Name, "seq": lsa.SequenceNumber, "have": seq,
		}).Debug("rejecting stale lsa")
		return false
	}

	db.SequenceNumbers[origin] = lsa.SequenceNumber
	if lsa.SequenceNumber > db.MaxSequenceNumber {
		db.MaxSequenceNumber = lsa.SequenceNumber
	}
	db.SequenceNumberOrigin[origin] = forwarder

	db.UpsertNodeRecord(lsa.Record)

	if db.Graph.GetEdge(db.Owner, forwarder) != nil {
		db.DirectNeighbors[forwarder] = 0
	} else if forwarder != db.Owner && db.realNetworkAdjacent(forwarder) {
		link := topo.NewLink(defaultSyntheticBandwidth, true)
		_ = db.Graph.AddEdge(db.Owner, forwarder, link)
		record := db.CreateNodeRecord()
		db.UpsertNodeRecord(record)
		db.DirectNeighbors[forwarder] = 0
	}

	return true
}

func (db *DB) realNetworkAdjacent(n *topo.Node) bool {
	if db.Oracle == nil {
		return false
	}
	for _, nb := range db.Oracle.NeighborsOf(db.Owner) {
		if nb == n {
			return true
		}
	}
	return false
}

// UpsertNodeRecord implements §4.4.2.
func (db *DB) UpsertNodeRecord(record advert.NodeRecord) {
	_ = db.Graph.AddVertex(record.Node)
	db.NodeRecords[record.Node] = record

	knownPeers := make(map[*topo.Node]bool, len(record.Links))
	for _, l := range record.Links {
		knownPeers[l.ConnectedNode] = true
		_ = db.Graph.AddVertex(l.ConnectedNode)

		edge := db.Graph.GetEdge(record.Node, l.ConnectedNode)
		if edge == nil {
			edge = l.Link.Clone()
			_ = db.Graph.AddEdge(record.Node, l.ConnectedNode, edge)
		}

		eff := l.EffectiveBandwidth
		if db.TopK > 1 {
			eff = topo.EffectiveBandwidth(edge)
		}
		db.LinkRecords[edge] = advert.LinkRecord{
			Link: edge, ConnectedNode: l.ConnectedNode, EffectiveBandwidth: eff,
		}
	}

	if record.Node != db.Owner {
		for _, nb := range db.Graph.Neighbors(record.Node) {
			if !knownPeers[nb.Node] {
				delete(db.LinkRecords, nb.Link)
				_ = db.Graph.RemoveEdge(record.Node, nb.Node)
			}
		}
	}

	db.InvalidateRoutes()
}

// CreateNodeRecord implements §4.4.3: the owner's current self-snapshot.
func (db *DB) CreateNodeRecord() advert.NodeRecord {
	neighbors := db.Graph.Neighbors(db.Owner)
	links := make([]advert.LinkRecord, 0, len(neighbors))
	for _, nb := range neighbors {
		links = append(links, advert.LinkRecord{
			Link:               nb.Link,
			ConnectedNode:      nb.Node,
			EffectiveBandwidth: topo.EffectiveBandwidth(nb.Link),
		})
	}
	ratio := 0.0
	if db.QueueSource != nil {
		ratio = db.QueueSource.HighestQueueRatio()
	}
	return advert.NodeRecord{Node: db.Owner, Links: links, HighestObservedQueueRatio: ratio}
}

// Update implements the liveness half of §4.4.4: advance every direct
// neighbor's timer and declare any that crossed LsaNeighborTimeout dead,
// tearing down their state in this DB. It returns the neighbors newly
// declared dead this call so the caller (node.Node.Update, which sends
// through flood) can emit the unicast "link is down" LSAs §4.4.4 requires.
func (db *DB) Update(delta float64) []*topo.Node {
	for n := range db.DirectNeighbors {
		db.DirectNeighbors[n] += delta
	}

	var dead []*topo.Node
	for n, elapsed := range db.DirectNeighbors {
		if elapsed >= db.LsaNeighborTimeout {
			dead = append(dead, n)
		}
	}
	if len(dead) == 0 {
		return nil
	}

	for _, n := range dead {
		if edge := db.Graph.GetEdge(db.Owner, n); edge != nil {
			delete(db.LinkRecords, edge)
		}
		delete(db.DirectNeighbors, n)
		delete(db.NodeRecords, n)
		_ = db.Graph.RemoveEdge(db.Owner, n)
		db.Log.WithField("neighbor", n.Name).Warn("direct neighbor declared dead")
	}
	db.InvalidateRoutes()
	return dead
}
