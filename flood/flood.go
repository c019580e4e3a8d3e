// Package flood is the LSA Flooder (C5): the per-node hello/LSA
// emission schedule, split-horizon re-flooding of received broadcasts,
// and a short-TTL duplicate-suppression cache that bounds redundant
// re-broadcast work ahead of lsdb's authoritative sequence-number check.
// Grounded on the teacher's metrics_processing periodic collection loop
// (jittered per-instance scheduling) for the hello cadence, and on
// encodeous-nylon's use of jellydator/ttlcache for exactly this kind of
// short-lived dedup window.
package flood

import (
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/sirupsen/logrus"

	"warp/advert"
	"warp/lsdb"
	"warp/topo"
)

// Sender is the per-hop send collaborator: hand one LSA to one direct
// neighbor. The physical-link/queue collaborator of spec.md §6 sits
// behind it.
type Sender interface {
	SendLSA(to *topo.Node, lsa *advert.LSA)
}

// Flooder drives one node's hello schedule and re-flooding.
type Flooder struct {
	db *lsdb.DB

	HelloInterval          float64
	HelloBroadcastInterval int // every N hellos, broadcast instead of unicast

	helloTimer float64
	helloCount int64

	Dedup *ttlcache.Cache[string, bool]

	Log *logrus.Entry
}

// New returns a Flooder for db, with the hello timer pre-jittered by
// jitter seconds (caller picks jitter per node at construction to avoid
// fleet-wide synchronized emissions).
func New(db *lsdb.DB, helloInterval float64, helloBroadcastInterval int, jitter float64, log *logrus.Entry) *Flooder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	dedup := ttlcache.New[string, bool](
		ttlcache.WithTTL[string, bool](2 * time.Second),
	)
	go dedup.Start()
	return &Flooder{
		db:                     db,
		HelloInterval:          helloInterval,
		HelloBroadcastInterval: helloBroadcastInterval,
		helloTimer:             jitter,
		Dedup:                  dedup,
		Log:                    log.WithField("owner", db.Owner.Name),
	}
}

// Stop releases the dedup cache's background eviction goroutine.
func (f *Flooder) Stop() {
	f.Dedup.Stop()
}

// Update advances the hello schedule by delta seconds, emitting a hello
// (broadcast or unicast per the schedule) each time the interval elapses.
func (f *Flooder) Update(delta float64, sender Sender) {
	f.helloTimer += delta
	for f.helloTimer >= f.HelloInterval {
		f.helloTimer -= f.HelloInterval
		f.emit(sender)
	}
}

func (f *Flooder) emit(sender Sender) {
	record := f.db.CreateNodeRecord()
	seq := f.db.NextSequenceNumber()
	f.helloCount++

	broadcast := f.HelloBroadcastInterval > 0 && f.helloCount%int64(f.HelloBroadcastInterval) == 0

	for n := range f.db.DirectNeighbors {
		lsa := &advert.LSA{
			Record:         record,
			SequenceNumber: seq,
			Source:         f.db.Owner,
			ForwardingNode: f.db.Owner,
		}
		if !broadcast {
			lsa.Destination = n
		}
		f.Log.WithFields(logrus.Fields{
			"to": n.Name, "seq": seq, "broadcast": broadcast,
		}).Debug("emitting hello")
		sender.SendLSA(n, lsa)
	}
}

// UnicastSelfUpdate emits a fresh unicast LSA of the owner's current
// Node Record to to, used for the §4.4.4 dead-neighbor notification
// (which must not be flooded — downstream receivers re-flood on their
// own accepted sequence check).
func (f *Flooder) UnicastSelfUpdate(to *topo.Node, sender Sender) {
	record := f.db.CreateNodeRecord()
	seq := f.db.NextSequenceNumber()
	lsa := &advert.LSA{
		Record:         record,
		SequenceNumber: seq,
		Source:         f.db.Owner,
		ForwardingNode: f.db.Owner,
		Destination:    to,
	}
	sender.SendLSA(to, lsa)
}

// Receive implements §4.5's receipt handling. The dedup cache only gates
// the re-flood decision, never ProcessLSA itself: §4.4.1 step 1 requires
// that even a stale/duplicate LSA still resets its forwarder's liveness
// timer, since receiving it at all proves the forwarder is alive.
func (f *Flooder) Receive(lsa *advert.LSA, sender Sender) {
	key := dedupKey(lsa.Record.Node, lsa.SequenceNumber)
	alreadyFlooded := f.Dedup.Has(key)

	if !f.db.ProcessLSA(lsa) {
		return
	}
	if alreadyFlooded {
		return
	}
	f.Dedup.Set(key, true, ttlcache.DefaultTTL)

	if lsa.Destination != nil {
		return // unicast: deliver locally, never re-flood
	}

	clone := lsa.Clone()
	clone.ForwardingNode = f.db.Owner
	for n := range f.db.DirectNeighbors {
		if n == lsa.Source || n == lsa.ForwardingNode {
			continue
		}
		sender.SendLSA(n, clone)
	}
}

func dedupKey(origin *topo.Node, seq int64) string {
	return fmt.Sprintf("%s#%d", origin.Name, seq)
}
