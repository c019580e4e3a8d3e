// Package sim is the discrete-event simulator: it owns the one piece of
// globally shared state the core treats as an external collaborator, the
// real-network ground-truth graph, and drives every node's tick through a
// worker pool. Grounded on the teacher's routing.CalculatePathsForAllDomains
// (fan out one goroutine-pool task per routing domain, wait, then move on)
// via github.com/panjf2000/ants/v2, and on the teacher's metrics_processing
// collector for periodic host-load sampling via
// github.com/shirou/gopsutil/v3/cpu.
package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/sirupsen/logrus"

	"warp/common"
	"warp/graph"
	"warp/internal/config"
	"warp/kpath"
	"warp/node"
	"warp/topo"
)

// Topology is the simulator's ground-truth network: the real adjacency
// and bandwidth the queue uses for transmission timing, and the oracle
// lsdb consults to recognize a genuine physical neighbor.
type Topology struct {
	g *graph.Graph
}

func NewTopology() *Topology { return &Topology{g: graph.New()} }

// NeighborsOf implements lsdb.TopologyOracle.
func (t *Topology) NeighborsOf(n *topo.Node) []*topo.Node {
	nbs := t.g.Neighbors(n)
	out := make([]*topo.Node, len(nbs))
	for i, nb := range nbs {
		out[i] = nb.Node
	}
	return out
}

// BandwidthBetween returns the real edge's effective bandwidth, or 0 if
// a and b are not really adjacent.
func (t *Topology) BandwidthBetween(a, b *topo.Node) float64 {
	e := t.g.GetEdge(a, b)
	if e == nil {
		return 0
	}
	return topo.EffectiveBandwidth(e)
}

type pendingDelivery struct {
	from, to *topo.Node
	arriveAt float64
	payload  node.Payload
}

// nominalQueueCapacityBytes bounds the outbound-queue-fill ratio
// create_node_record reports; it is a simulator modeling choice, not a
// protocol parameter.
const nominalQueueCapacityBytes = 65536

// Queue is the bandwidth-delay physical link every simulated node shares:
// a send is not delivered immediately but scheduled to arrive
// wire_size*8/effective_bandwidth seconds later, and only actually handed
// to the destination node once the simulator's clock has advanced that far.
type Queue struct {
	mu         sync.Mutex
	topology   *Topology
	targets    map[*topo.Node]*node.Node
	deliveries []pendingDelivery
	now        float64
}

func NewQueue(topology *Topology) *Queue {
	return &Queue{topology: topology, targets: map[*topo.Node]*node.Node{}}
}

func (q *Queue) Register(n *node.Node) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.targets[n.Identity] = n
}

// SendDatagram implements node.PhysicalLink.
func (q *Queue) SendDatagram(from, to *topo.Node, payload node.Payload) {
	bw := q.topology.BandwidthBetween(from, to)
	var delay float64
	if bw > 0 {
		delay = float64(payload.WireSize()*8) / bw
	}
	q.mu.Lock()
	q.deliveries = append(q.deliveries, pendingDelivery{
		from: from, to: to, arriveAt: q.now + delay, payload: payload,
	})
	q.mu.Unlock()
}

// OutboundQueueRatio implements lsdb.QueueRatioSource for owner: the
// fraction of nominalQueueCapacityBytes currently in flight from owner,
// capped at 1.
func (q *Queue) OutboundQueueRatio(owner *topo.Node) float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	var pending int
	for _, d := range q.deliveries {
		if d.from == owner {
			pending += d.payload.WireSize()
		}
	}
	ratio := float64(pending) / nominalQueueCapacityBytes
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// Advance moves the clock forward by delta seconds and delivers every
// pending send whose arrival time has now passed.
func (q *Queue) Advance(delta float64) {
	q.mu.Lock()
	target := q.now + delta
	var ready, stillPending []pendingDelivery
	for _, d := range q.deliveries {
		if d.arriveAt <= target {
			ready = append(ready, d)
		} else {
			stillPending = append(stillPending, d)
		}
	}
	q.deliveries = stillPending
	q.now = target
	q.mu.Unlock()

	for _, d := range ready {
		if n, ok := q.targets[d.to]; ok {
			n.Receive(d.payload)
		}
	}
}

type queueRatioSource struct {
	q     *Queue
	owner *topo.Node
}

func (s queueRatioSource) HighestQueueRatio() float64 { return s.q.OutboundQueueRatio(s.owner) }

// jitterFor derives a deterministic, per-node hello-schedule offset from
// the node's name, so a fleet of freshly constructed nodes doesn't emit
// hellos in lockstep.
func jitterFor(name string, interval float64) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	frac := float64(h.Sum32()%1000) / 1000.0
	return frac * interval
}

// Simulator owns one scenario's nodes, ground-truth topology, physical
// link, and worker pool, and drives ticks across all nodes concurrently.
type Simulator struct {
	Nodes    map[string]*node.Node
	Queue    *Queue
	Topology *Topology

	pool        *ants.Pool
	tickSeconds float64
	elapsed     float64
	sampleEvery int
	tickCount   int

	Log *logrus.Entry
}

// New builds a Simulator from a loaded scenario. sink may be nil. Each
// node gets its own random source, seeded from its name, since nodes
// tick concurrently.
func New(cfg *config.Scenario, sink node.EventSink, log *logrus.Entry) (*Simulator, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	topology := NewTopology()
	byName := make(map[string]*topo.Node, len(cfg.Nodes))
	for _, ns := range cfg.Nodes {
		n := topo.NewNode(ns.Name)
		byName[ns.Name] = n
		_ = topology.g.AddVertex(n)
	}
	for _, ls := range cfg.Links {
		a, b := byName[ls.A], byName[ls.B]
		_ = topology.g.AddEdge(a, b, topo.NewLink(ls.Bandwidth, ls.FullDuplex))
	}

	queue := NewQueue(topology)
	pool, err := common.NewPool(common.PoolConfig{MaxWorkers: len(cfg.Nodes) + 1})
	if err != nil {
		return nil, fmt.Errorf("creating simulator worker pool: %w", err)
	}

	registry := kpath.NewRegistry()
	sim := &Simulator{
		Nodes:       make(map[string]*node.Node, len(cfg.Nodes)),
		Queue:       queue,
		Topology:    topology,
		pool:        pool,
		tickSeconds: cfg.TickSeconds,
		sampleEvery: 20,
		Log:         log,
	}

	for name, identity := range byName {
		nodeCfg := node.Config{
			TopK:                   cfg.TopK,
			NeighborTimeout:        cfg.NeighborTimeout,
			HelloInterval:          cfg.HelloInterval,
			HelloBroadcastInterval: cfg.HelloBroadcastInterval,
			Jitter:                 jitterFor(name, cfg.HelloInterval),
			Algorithm:              cfg.Algorithm,
		}
		seed := fnv.New64a()
		_, _ = seed.Write([]byte(name))
		rnd := rand.New(rand.NewSource(int64(seed.Sum64())))
		n := node.New(identity, nodeCfg, topology, registry, queue, sink, rnd, log)
		n.DB.QueueSource = queueRatioSource{q: queue, owner: identity}
		sim.Nodes[name] = n
		queue.Register(n)
	}

	for _, ls := range cfg.Links {
		a, b := byName[ls.A], byName[ls.B]
		sim.Nodes[ls.A].SeedNeighbor(b, topo.NewLink(ls.Bandwidth, ls.FullDuplex))
		sim.Nodes[ls.B].SeedNeighbor(a, topo.NewLink(ls.Bandwidth, ls.FullDuplex))
	}

	return sim, nil
}

// Node looks up one simulated node by its scenario name.
func (s *Simulator) Node(name string) (*node.Node, bool) {
	n, ok := s.Nodes[name]
	return n, ok
}

// Tick advances every node by delta seconds concurrently via the worker
// pool, then drains the physical link's arrival queue up to the same
// clock position.
func (s *Simulator) Tick(delta float64) {
	var wg sync.WaitGroup
	for _, n := range s.Nodes {
		nn := n
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			nn.Update(delta)
		}); err != nil {
			s.Log.WithError(err).Error("submitting tick task")
			wg.Done()
		}
	}
	wg.Wait()

	s.Queue.Advance(delta)
	s.elapsed += delta
	s.tickCount++
	if s.tickCount%s.sampleEvery == 0 {
		s.sampleHostLoad()
	}
}

// Run advances the simulator ticks times using its configured tick size.
func (s *Simulator) Run(ticks int) {
	for i := 0; i < ticks; i++ {
		s.Tick(s.tickSeconds)
	}
}

// sampleHostLoad logs the driver host's instantaneous CPU load alongside
// simulated tick timing, to spot a host that's falling behind real time.
func (s *Simulator) sampleHostLoad() {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		s.Log.WithError(err).Debug("sampling host cpu load")
		return
	}
	if len(percents) == 0 {
		return
	}
	s.Log.WithFields(logrus.Fields{
		"elapsed_sim_seconds": s.elapsed,
		"host_cpu_percent":    percents[0],
	}).Debug("tick checkpoint")
}

// Close releases the worker pool and every node's background dedup
// eviction goroutine.
func (s *Simulator) Close() {
	s.pool.Release()
	for _, n := range s.Nodes {
		n.Flooder.Stop()
	}
}
