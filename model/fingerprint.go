package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/spaolacci/murmur3"
	"lukechampine.com/blake3"
)

// hashBytes reduces an arbitrary byte string to a 64-bit fingerprint using
// blake3, the same hashing library the teacher module depends on for
// content checksums. Production fingerprints are the full 64 bits with no
// modulus reduction.
func hashBytes(b []byte) uint64 {
	sum := blake3.Sum256(b)
	return binary.LittleEndian.Uint64(sum[:8])
}

type icidEdgeKind string

const (
	kindBackbone5p icidEdgeKind = "b5"
	kindBackbone3p icidEdgeKind = "b3"
	kindHyb        icidEdgeKind = "h"
	kindStack5p    icidEdgeKind = "s5"
	kindStack3p    icidEdgeKind = "s3"
)

type icidEdge struct {
	to   *Domain
	kind icidEdgeKind
}

// interactionEdges lists the direct interaction-graph neighbors of d, each
// labeled with the kind of edge that connects them, for use by the local
// icid traversal.
func (c *Complex) interactionEdges(d *Domain) []icidEdge {
	var out []icidEdge
	if n := d.Domain5p(); n != nil {
		out = append(out, icidEdge{n, kindBackbone5p})
	}
	if n := d.Domain3p(); n != nil {
		out = append(out, icidEdge{n, kindBackbone3p})
	}
	if d.partner != nil {
		out = append(out, icidEdge{d.partner, kindHyb})
	}
	if d.stack5p != nil {
		out = append(out, icidEdge{d.stack5p.Domain, kindStack5p})
	}
	if d.stack3p != nil {
		out = append(out, icidEdge{d.stack3p.Domain, kindStack3p})
	}
	return out
}

// icid returns the in-complex identifier (icid) of d: a local canonical
// label disambiguating multiple copies of the same species within the
// complex. An icid of 0 is the sentinel "only one of this species; no
// disambiguation needed".
func (c *Complex) icid(d *Domain) uint64 {
	if c.icidUseInstance {
		return uint64(d.id) + 1 // +1 keeps instance-based icids out of the 0 sentinel's range
	}
	if c.domainSpeciesCount[d.species] <= 1 {
		return 0
	}
	if c.icidCache == nil {
		c.icidCache = make(map[DomainID]uint64)
	}
	if v, ok := c.icidCache[d.id]; ok {
		return v
	}
	v := c.computeIcid(d, c.icidRadius)
	c.icidCache[d.id] = v
	return v
}

func (c *Complex) computeIcid(start *Domain, radius int) uint64 {
	type observation struct {
		level   int
		kind    icidEdgeKind
		species string
	}
	var observations []observation
	visited := map[DomainID]bool{start.id: true}
	frontier := []*Domain{start}
	for level := 1; level <= radius && len(frontier) > 0; level++ {
		var next []*Domain
		for _, d := range frontier {
			for _, e := range c.interactionEdges(d) {
				if visited[e.to.id] {
					continue
				}
				visited[e.to.id] = true
				observations = append(observations, observation{level, e.kind, e.to.species})
				next = append(next, e.to)
			}
		}
		frontier = next
	}
	strs := make([]string, len(observations))
	for i, o := range observations {
		strs[i] = fmt.Sprintf("%d|%s|%s", o.level, o.kind, o.species)
	}
	sort.Strings(strs)
	return murmur3.Sum64([]byte(strings.Join(strs, ";")))
}

// resolveIcidCollisions implements adjust_icid_radius_or_use_instance: if
// two distinct domains of the same species share the same nonzero icid,
// doubles icid_radius and retries up to three times; if that still
// collides, switches to per-instance identifiers from then on.
func (c *Complex) resolveIcidCollisions() {
	type speciesIcid struct {
		species string
		icid    uint64
	}
	counts := func() map[speciesIcid]int {
		m := make(map[speciesIcid]int)
		for _, d := range c.Domains() {
			if v := c.icid(d); v != 0 {
				m[speciesIcid{d.species, v}]++
			}
		}
		return m
	}
	hasCollision := func(m map[speciesIcid]int) bool {
		for _, ct := range m {
			if ct > 1 {
				return true
			}
		}
		return false
	}
	if c.icidUseInstance || !hasCollision(counts()) {
		return
	}
	for tries := 0; tries < 3; tries++ {
		c.icidRadius *= 2
		c.icidCache = nil
		if !hasCollision(counts()) {
			return
		}
	}
	c.icidUseInstance = true
	c.icidCache = nil
}

// StrandsFingerprint is the multiset {(strand-species, count)} as a
// canonical sorted tuple, reduced to a 64-bit hash.
func (c *Complex) StrandsFingerprint() uint64 {
	if c.strandsFP != nil {
		return *c.strandsFP
	}
	type kv struct {
		species string
		count   int
	}
	items := make([]kv, 0, len(c.strandSpeciesCount))
	for sp, ct := range c.strandSpeciesCount {
		items = append(items, kv{sp, ct})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].species < items[j].species })
	var buf bytes.Buffer
	for _, it := range items {
		fmt.Fprintf(&buf, "%s:%d;", it.species, it.count)
	}
	fp := hashBytes(buf.Bytes())
	c.strandsFP = &fp
	return fp
}

func pairKeyString(a, b *Domain, aIcid, bIcid uint64) string {
	sa := fmt.Sprintf("%s|%d", a.species, aIcid)
	sb := fmt.Sprintf("%s|%d", b.species, bIcid)
	if sa > sb {
		sa, sb = sb, sa
	}
	return sa + "~" + sb
}

// HybridizationFingerprint is the set of unordered pairs of
// (domain-species, icid) across all hybridized pairs, reduced to a 64-bit
// hash.
func (c *Complex) HybridizationFingerprint() uint64 {
	if c.hybFP != nil {
		return *c.hybFP
	}
	items := make([]string, 0, len(c.hybridizedPairs))
	for p := range c.hybridizedPairs {
		a := c.tube.domainByID(p.lo)
		b := c.tube.domainByID(p.hi)
		items = append(items, pairKeyString(a, b, c.icid(a), c.icid(b)))
	}
	sort.Strings(items)
	fp := hashBytes([]byte(strings.Join(items, ";")))
	c.hybFP = &fp
	return fp
}

// StackingFingerprint is the same as HybridizationFingerprint but with
// ordered pairs, since stacking direction matters.
func (c *Complex) StackingFingerprint() uint64 {
	if c.stackFP != nil {
		return *c.stackFP
	}
	items := make([]string, 0, len(c.stackedPairs))
	for _, e := range c.stackedPairs {
		a, b := e.From.Domain, e.To.Domain
		items = append(items, fmt.Sprintf("%s|%d->%s|%d", a.species, c.icid(a), b.species, c.icid(b)))
	}
	sort.Strings(items)
	fp := hashBytes([]byte(strings.Join(items, ";")))
	c.stackFP = &fp
	return fp
}

// StateFingerprint returns (and caches) the combined fingerprint of this
// complex's structural state: the hash of its strands, hybridization, and
// stacking fingerprints. Every mutator invalidates the cache; the next
// call recomputes it, first re-resolving any icid collisions that the
// mutation may have introduced.
func (c *Complex) StateFingerprint() (uint64, error) {
	c.resolveIcidCollisions()
	if c.stateFP != nil {
		return *c.stateFP, nil
	}
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], c.StrandsFingerprint())
	binary.LittleEndian.PutUint64(buf[8:16], c.HybridizationFingerprint())
	binary.LittleEndian.PutUint64(buf[16:24], c.StackingFingerprint())
	fp := hashBytes(buf[:])
	c.stateFP = &fp
	return fp, nil
}
