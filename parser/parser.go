// Package parser ingests an OSM extract and turns its ways into the
// unranked, unattached edges of the walking graph: tag-filtered,
// optionally polygon-filtered, and split at every internally-shared
// node (C2).
package parser

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"golang.org/x/exp/slog"

	"github.com/ttpr0/transit-preprocess/model"
	"github.com/ttpr0/transit-preprocess/polygon"
)

// Load parses osmFile and returns every kept, split edge as an unranked
// model.Edge. poly restricts which ways are kept (polygon.IsEmpty(poly)
// disables the filter); walkspeedKmPerH is used to compute WeightSecs.
func Load(osmFile string, poly orb.Polygon, walkspeedKmPerH float64) ([]model.Edge, error) {
	file, err := os.Open(osmFile)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open %q: %v", ErrOSMRead, osmFile, err)
	}
	defer file.Close()

	candidateNodes := map[int64]bool{}
	if err := scanWays(file, func(way *osm.Way) bool {
		return isRelevantWayTags(way.TagMap(), len(way.Nodes))
	}, func(way *osm.Way) {
		for _, ref := range way.Nodes.NodeIDs() {
			candidateNodes[int64(ref.FeatureID().Ref())] = true
		}
	}); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOSMRead, osmFile, err)
	}

	nodeLocs := make(map[int64]orb.Point, len(candidateNodes))
	if err := rewind(file); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOSMRead, osmFile, err)
	}
	if err := scanNodes(file, func(n *osm.Node) {
		ref := int64(n.FeatureID().Ref())
		if candidateNodes[ref] {
			nodeLocs[ref] = orb.Point{n.Lon, n.Lat}
		}
	}); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOSMRead, osmFile, err)
	}

	wayToNodes := map[int64][]int64{}
	nodeUseCount := map[int64]int{}
	kept := 0
	if err := rewind(file); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOSMRead, osmFile, err)
	}
	if err := scanWays(file, func(way *osm.Way) bool {
		return isRelevantWay(way, poly, nodeLocs)
	}, func(way *osm.Way) {
		refs := way.Nodes.NodeIDs()
		ids := make([]int64, len(refs))
		for i, ref := range refs {
			id := int64(ref.FeatureID().Ref())
			ids[i] = id
			nodeUseCount[id]++
		}
		wayToNodes[int64(way.ID)] = ids
		kept++
	}); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOSMRead, osmFile, err)
	}
	slog.Info(fmt.Sprintf("parser: %d ways kept, %d candidate nodes", kept, len(candidateNodes)))

	walkspeedMPerS := walkspeedKmPerH * 1000 / 3600
	var edges []model.Edge
	for _, nodeIDs := range wayToNodes {
		edges = append(edges, splitWay(nodeIDs, nodeLocs, nodeUseCount, walkspeedMPerS)...)
	}
	return edges, nil
}

// isRelevantWay implements spec.md §4.2's way relevance predicate:
// highway=*, not area=yes, >=2 nodes, and - if poly is non-empty - at
// least one endpoint inside poly. Both endpoints are tested, fixing a
// copy-paste bug in the original (it tested the front node twice).
func isRelevantWay(way *osm.Way, poly orb.Polygon, nodeLocs map[int64]orb.Point) bool {
	tags := way.TagMap()
	refs := way.Nodes.NodeIDs()
	if !isRelevantWayTags(tags, len(refs)) {
		return false
	}
	if polygon.IsEmpty(poly) {
		return true
	}
	front := nodeLocs[int64(refs[0].FeatureID().Ref())]
	back := nodeLocs[int64(refs[len(refs)-1].FeatureID().Ref())]
	return polygon.IsInside(poly, front) || polygon.IsInside(poly, back)
}

// isRelevantWayTags implements the tag/node-count half of spec.md
// §4.2's way relevance predicate, split out from isRelevantWay so it
// can be tested without constructing a full *osm.Way.
func isRelevantWayTags(tags map[string]string, nodeCount int) bool {
	if tags["highway"] == "" {
		return false
	}
	if tags["area"] == "yes" {
		return false
	}
	return nodeCount >= 2
}

// splitWay applies the two-cursor splitting algorithm: it walks a way's
// node sequence, emitting one edge every time it reaches a node used by
// more than one way, and always emits a final edge up to the way's last
// node (so dead ends are never dropped even though their last node has
// use count 1).
func splitWay(nodeIDs []int64, nodeLocs map[int64]orb.Point, nodeUseCount map[int64]int, walkspeedMPerS float64) []model.Edge {
	var edges []model.Edge

	first := 0
	last := len(nodeIDs) - 1
	for first != last {
		second := first + 1
		polyline := orb.LineString{nodeLocs[nodeIDs[first]]}

		for second < last && nodeUseCount[nodeIDs[second]] < 2 {
			polyline = append(polyline, nodeLocs[nodeIDs[second]])
			second++
		}

		if second == last {
			polyline = append(polyline, nodeLocs[nodeIDs[last]])
			edges = append(edges, buildEdge(nodeIDs[first], nodeIDs[last], polyline, walkspeedMPerS))
			break
		}

		polyline = append(polyline, nodeLocs[nodeIDs[second]])
		edges = append(edges, buildEdge(nodeIDs[first], nodeIDs[second], polyline, walkspeedMPerS))
		first = second
	}

	return edges
}

func buildEdge(fromRef, toRef int64, polyline orb.LineString, walkspeedMPerS float64) model.Edge {
	lengthM := geo.Length(polyline)
	return model.Edge{
		NodeFromID:   model.OSMNodeURL(fromRef),
		NodeToID:     model.OSMNodeURL(toRef),
		Polyline:     polyline,
		LengthMeters: lengthM,
		WeightSecs:   lengthM / walkspeedMPerS,
	}
}

//*******************************************
// scanning
//*******************************************

func rewind(f *os.File) error {
	_, err := f.Seek(0, 0)
	return err
}

// isPBF dispatches purely on the filename, since both scanner types
// implement osm.Scanner identically from here on.
func isPBF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".osm.pbf")
}

func scanWays(f *os.File, filter func(*osm.Way) bool, handle func(*osm.Way)) error {
	scanner, err := scannerFor(f)
	if err != nil {
		return err
	}
	defer scanner.Close()

	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if filter != nil && !filter(way) {
			continue
		}
		handle(way)
	}
	return scanner.Err()
}

func scanNodes(f *os.File, handle func(*osm.Node)) error {
	scanner, err := scannerFor(f)
	if err != nil {
		return err
	}
	defer scanner.Close()

	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		handle(node)
	}
	return scanner.Err()
}

func scannerFor(f *os.File) (osm.Scanner, error) {
	if isPBF(f.Name()) {
		return osmpbf.New(context.Background(), f, runtime.GOMAXPROCS(-1)), nil
	}
	return osmxml.New(context.Background(), f), nil
}
