// Package stopattach extends the OSM walking-graph edges with a
// synthetic edge from each GTFS stop to its nearest OSM node (C4). The
// spatial index used to find that nearest node is built and discarded
// within Attach - it never escapes this package.
package stopattach

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/ttpr0/transit-preprocess/model"
)

// pointExtent is the side length used for every indexed node's
// degenerate bounding box; rtreego requires non-zero extents.
const pointExtent = 1e-9

// Attach indexes both endpoints of every edge in osmEdges, then for
// each stop finds its nearest indexed node and appends a synthetic
// stop-to-node edge. It returns osmEdges followed by the stop edges (in
// stop order), plus one StopWithClosestNode per stop, in stop order.
func Attach(stops []model.ParsedStop, osmEdges []model.Edge, walkspeedKmPerH float64) ([]model.Edge, []model.StopWithClosestNode, error) {
	tree, err := indexNodes(osmEdges)
	if err != nil {
		return nil, nil, err
	}

	walkspeedMPerS := walkspeedKmPerH * 1000 / 3600
	edges := make([]model.Edge, len(osmEdges), len(osmEdges)+len(stops))
	copy(edges, osmEdges)
	attached := make([]model.StopWithClosestNode, 0, len(stops))

	for _, stop := range stops {
		closest, ok := nearestNode(tree, orb.Point{stop.Lon, stop.Lat})
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrNoNearbyNode, stop.ID)
		}

		polyline := orb.LineString{{stop.Lon, stop.Lat}, closest.location}
		lengthM := geo.Length(polyline)
		edges = append(edges, model.Edge{
			NodeFromID:   model.NodeID(stop.ID),
			NodeToID:     closest.id,
			Polyline:     polyline,
			LengthMeters: lengthM,
			WeightSecs:   lengthM / walkspeedMPerS,
		})

		attached = append(attached, model.StopWithClosestNode{
			Stop:           model.NewStop(stop.ID, stop.Name, stop.Lon, stop.Lat),
			ClosestNodeID:  closest.id,
			ClosestNodeURL: closest.id,
		})
	}

	return edges, attached, nil
}

// indexedNode is the Spatial value stored in the r-tree: an OSM node's
// id and location.
type indexedNode struct {
	id       model.NodeID
	location orb.Point
}

func (n *indexedNode) Bounds() *rtreego.Rect {
	rect, err := rtreego.NewRect(rtreego.Point{n.location[0], n.location[1]}, []float64{pointExtent, pointExtent})
	if err != nil {
		panic(err)
	}
	return rect
}

// indexNodes bulk-inserts both endpoints of every edge. Nodes appear
// more than once across edges; inserting the same id/location twice is
// harmless since nearestNode only reads id/location back out.
func indexNodes(edges []model.Edge) (*rtreego.Rtree, error) {
	tree := rtreego.NewTree(2, 25, 50)
	for _, e := range edges {
		if len(e.Polyline) == 0 {
			return nil, fmt.Errorf("%w: %s->%s", ErrEmptyPolyline, e.NodeFromID, e.NodeToID)
		}
		tree.Insert(&indexedNode{id: e.NodeFromID, location: e.Polyline[0]})
		tree.Insert(&indexedNode{id: e.NodeToID, location: e.Polyline[len(e.Polyline)-1]})
	}
	return tree, nil
}

func nearestNode(tree *rtreego.Rtree, pt orb.Point) (indexedNode, bool) {
	result := tree.NearestNeighbor(rtreego.Point{pt[0], pt[1]})
	if result == nil {
		return indexedNode{}, false
	}
	node, ok := result.(*indexedNode)
	if !ok {
		return indexedNode{}, false
	}
	return *node, true
}
