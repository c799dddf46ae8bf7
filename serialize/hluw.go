package serialize

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ttpr0/transit-preprocess/model"
)

// WriteHLUW writes the flat-text artifacts the HL-UW route planner
// reads directly: walkspeed_km_per_hour.txt, graph.edgefile,
// stops.nodes, stops.geojson (spec.md §4.6).
func WriteHLUW(dir string, g *model.WalkingGraph) error {
	if err := writeWalkspeed(filepath.Join(dir, "walkspeed_km_per_hour.txt"), g.WalkspeedKmPerHour); err != nil {
		return err
	}
	if err := writeEdgefile(filepath.Join(dir, "graph.edgefile"), g.Edges); err != nil {
		return err
	}
	if err := writeStopsNodes(filepath.Join(dir, "stops.nodes"), g.Stops); err != nil {
		return err
	}
	if err := WriteStopsGeoJSON(filepath.Join(dir, "stops.geojson"), g.Stops); err != nil {
		return err
	}
	return nil
}

// WriteStopTimes writes stoptimes.txt: one row per (trip, stop) event,
// 1-indexed stop_sequence, for every route in data.
func WriteStopTimes(path string, data *model.GtfsParsedData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialize: creating %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"trip_id", "arrival_time", "departure_time", "stop_id", "stop_sequence"}); err != nil {
		return fmt.Errorf("serialize: writing %q header: %w", path, err)
	}

	for _, lr := range data.Routes {
		stopIDs := lr.Label.StopIDs()
		for _, trip := range lr.Route.Trips {
			if len(trip.Events) != len(stopIDs) {
				return fmt.Errorf("%w: trip %q has %d events, want %d (route %q stop count)",
					ErrTripEventCountMismatch, trip.TripID.TripID, len(trip.Events), len(stopIDs), lr.Label)
			}
			for i, ev := range trip.Events {
				row := []string{
					trip.TripID.TripID,
					strconv.Itoa(ev.ArrivalSeconds),
					strconv.Itoa(ev.DepartureSeconds),
					stopIDs[i],
					strconv.Itoa(i + 1),
				}
				if err := w.Write(row); err != nil {
					return fmt.Errorf("serialize: writing %q row: %w", path, err)
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("serialize: writing %q: %w", path, err)
	}
	return nil
}

func writeWalkspeed(path string, walkspeedKmPerHour float64) error {
	content := strconv.FormatFloat(walkspeedKmPerHour, 'f', -1, 64) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("serialize: writing %q: %w", path, err)
	}
	return nil
}

// writeEdgefile writes one "node_from node_to weight" line per edge,
// weight rounded to an integer (spec.md §6: "weight written with fixed
// precision 0").
func writeEdgefile(path string, edges []model.Edge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialize: creating %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range edges {
		if _, err := fmt.Fprintf(w, "%s %s %.0f\n", e.NodeFromID, e.NodeToID, math.Round(e.WeightSecs)); err != nil {
			return fmt.Errorf("serialize: writing %q: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("serialize: writing %q: %w", path, err)
	}
	return nil
}

func writeStopsNodes(path string, stops []model.StopWithClosestNode) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialize: creating %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, s := range stops {
		if _, err := fmt.Fprintf(w, "%s\n", s.ID); err != nil {
			return fmt.Errorf("serialize: writing %q: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("serialize: writing %q: %w", path, err)
	}
	return nil
}
