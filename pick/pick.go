// Package pick is the deficit-weighted Path Picker (C7): it turns a
// cached (or freshly-selected) set of candidate routes into one chosen
// route per packet, then rebalances every route's deficit so long-run
// byte shares converge to the routes' weight distribution. Grounded on
// the teacher's routing.PathManager route-cache/charge pattern and the
// traefik/weightedredirector plugin's cumulative-weight draw, adapted
// to the deficit feedback loop spec.md §4.7 specifies.
package pick

import (
	"math"
	"math/rand"

	"warp/kpath"
	"warp/lsdb"
	"warp/topo"
)

// Rand is the pseudo-random source the picker draws from. Inject a
// seeded instance in tests for determinism; do not construct a fresh
// generator per call.
type Rand interface {
	Float64() float64 // uniform in [0, 1)
}

var defaultRand Rand = rand.New(rand.NewSource(1))

// Picker selects routes via the deficit-weighted draw of §4.7.
type Picker struct {
	Algorithm kpath.Algorithm
	Observer  kpath.Observer
	Rand      Rand
}

// NewPicker returns a Picker using alg to populate the route cache on a
// miss. A nil Rand falls back to a package-level seeded generator.
func NewPicker(alg kpath.Algorithm, obs kpath.Observer) *Picker {
	return &Picker{Algorithm: alg, Observer: obs}
}

func (pk *Picker) rand() Rand {
	if pk.Rand != nil {
		return pk.Rand
	}
	return defaultRand
}

// Pick implements §4.7. It returns (nil, false) if no route to
// destination exists.
func (pk *Picker) Pick(db *lsdb.DB, destination *topo.Node, packetSizeBytes float64) (*lsdb.RouteInformation, bool) {
	routes, cached := db.Routes[destination]
	if !cached {
		routes = pk.populate(db, destination)
		db.Routes[destination] = routes
	}
	if len(routes) == 0 {
		return nil, false
	}

	alpha := 1 + packetSizeBytes/(packetSizeBytes+512)

	sum := 0.0
	for _, r := range routes {
		adjusted := math.Pow(r.Path.Weight, alpha) + r.DeficitBytes/alpha
		if adjusted < 0 {
			adjusted = 0
		}
		r.AdjustedWeight = adjusted
		sum += adjusted
	}

	selected := drawWeighted(routes, sum, pk.rand().Float64())
	selected.TotalBytesSent += packetSizeBytes

	rebalanceDeficits(routes)
	return selected, true
}

func (pk *Picker) populate(db *lsdb.DB, destination *topo.Node) []*lsdb.RouteInformation {
	paths := pk.Algorithm.Select(db.Graph, db.LinkRecords, db.Owner, destination, db.TopK, pk.Observer)
	routes := make([]*lsdb.RouteInformation, len(paths))
	for i, p := range paths {
		routes[i] = &lsdb.RouteInformation{Path: p}
	}
	return routes
}

// drawWeighted walks the cumulative adjusted-weight sums and returns
// the first route whose running sum reaches draw*sum.
func drawWeighted(routes []*lsdb.RouteInformation, sum, uniform float64) *lsdb.RouteInformation {
	if sum <= 0 {
		return routes[0]
	}
	draw := uniform * sum
	running := 0.0
	for _, r := range routes {
		running += r.AdjustedWeight
		if running >= draw {
			return r
		}
	}
	return routes[len(routes)-1]
}

// rebalanceDeficits implements §4.7 step 6: Σ deficit_bytes == 0 by
// construction after this runs.
func rebalanceDeficits(routes []*lsdb.RouteInformation) {
	gBytes, gWeight := 0.0, 0.0
	for _, r := range routes {
		gBytes += r.TotalBytesSent
		gWeight += r.Path.Weight
	}
	if gWeight <= 0 {
		return
	}
	for _, r := range routes {
		r.DeficitBytes = gBytes*r.Path.Weight/gWeight - r.TotalBytesSent
	}
}

// WeightedRoundRobin is a simpler, stateless alternate picker: it draws
// among routes with probability proportional to 1/weight (cheaper paths
// picked more often) and performs no deficit accounting. Grounded on
// the teacher's routing.WeightedRoundRobin and the traefik
// weightedredirector plugin's cumulative-weight selection.
type WeightedRoundRobin struct {
	Rand Rand
}

func (w *WeightedRoundRobin) rand() Rand {
	if w.Rand != nil {
		return w.Rand
	}
	return defaultRand
}

func (w *WeightedRoundRobin) Pick(routes []*lsdb.RouteInformation) (*lsdb.RouteInformation, bool) {
	if len(routes) == 0 {
		return nil, false
	}
	weights := make([]float64, len(routes))
	sum := 0.0
	for i, r := range routes {
		ww := 0.0
		if r.Path.Weight > 0 {
			ww = 1 / r.Path.Weight
		}
		weights[i] = ww
		sum += ww
	}
	if sum <= 0 {
		return routes[0], true
	}
	draw := w.rand().Float64() * sum
	running := 0.0
	for i, ww := range weights {
		running += ww
		if running >= draw {
			return routes[i], true
		}
	}
	return routes[len(routes)-1], true
}
