package gtfsparse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const stopsCSV = `stop_id,stop_name,stop_lat,stop_lon
A,Stop A,45.0,5.0
B,Stop B,45.1,5.1
C,Stop C,45.2,5.2
`

const tripsCSV = `trip_id,route_id
t1,r1
t2,r1
t3,r2
`

const stopTimesCSV = `trip_id,arrival_time,departure_time,stop_id,stop_sequence
t1,08:00:00,08:00:00,A,1
t1,08:10:00,08:10:00,B,2
t2,09:00:00,09:00:00,A,1
t2,09:10:00,09:10:00,B,2
t3,07:00:00,07:00:00,B,1
t3,07:30:00,07:30:00,C,2
`

func writeGTFSFolder(t *testing.T, stops, trips, stopTimes string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"stops.txt":      stops,
		"trips.txt":      trips,
		"stop_times.txt": stopTimes,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}
	return dir
}

// TestLoadPartitionsByStopSequence mirrors spec.md §8 scenario 3: trips
// t1 and t2 share the stop sequence A,B and partition into one route;
// t3 (B,C) is a separate route.
func TestLoadPartitionsByStopSequence(t *testing.T) {
	dir := writeGTFSFolder(t, stopsCSV, tripsCSV, stopTimesCSV)

	data, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(data.Routes) != 2 {
		t.Fatalf("len(Routes) = %d; want 2", len(data.Routes))
	}

	routeAB, ok := data.RouteByLabel("A+B")
	if !ok {
		t.Fatalf("route A+B not found; routes = %v", data.RankedRoutes)
	}
	if len(routeAB.Trips) != 2 {
		t.Errorf("len(routeAB.Trips) = %d; want 2 (t1, t2)", len(routeAB.Trips))
	}

	routeBC, ok := data.RouteByLabel("B+C")
	if !ok {
		t.Fatalf("route B+C not found; routes = %v", data.RankedRoutes)
	}
	if len(routeBC.Trips) != 1 {
		t.Errorf("len(routeBC.Trips) = %d; want 1 (t3)", len(routeBC.Trips))
	}
}

// TestLoadOrdersTripsByDeparture mirrors spec.md §8 scenario 4: within
// a route, trips are ordered by (departure_seconds, trip_id) - here t1
// departs at 08:00 and t2 at 09:00, so t1 must come first.
func TestLoadOrdersTripsByDeparture(t *testing.T) {
	dir := writeGTFSFolder(t, stopsCSV, tripsCSV, stopTimesCSV)

	data, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	route, ok := data.RouteByLabel("A+B")
	if !ok {
		t.Fatalf("route A+B not found")
	}
	if len(route.Trips) != 2 {
		t.Fatalf("len(route.Trips) = %d; want 2", len(route.Trips))
	}
	if route.Trips[0].TripID.TripID != "t1" || route.Trips[1].TripID.TripID != "t2" {
		t.Errorf("trip order = [%s, %s]; want [t1, t2]", route.Trips[0].TripID.TripID, route.Trips[1].TripID.TripID)
	}
}

func TestLoadRanksRoutesLexicographically(t *testing.T) {
	dir := writeGTFSFolder(t, stopsCSV, tripsCSV, stopTimesCSV)

	data, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(data.RankedRoutes) != 2 || data.RankedRoutes[0] != "A+B" || data.RankedRoutes[1] != "B+C" {
		t.Errorf("RankedRoutes = %v; want [A+B, B+C]", data.RankedRoutes)
	}
	if data.RouteToRank["A+B"] != 0 || data.RouteToRank["B+C"] != 1 {
		t.Errorf("RouteToRank = %v; want A+B:0, B+C:1", data.RouteToRank)
	}
}

func TestLoadRanksOnlyUsedStops(t *testing.T) {
	// stop C is used only by t3 (B,C); all three stops A, B, C are used,
	// but a stop absent from every route must be dropped - add stop D,
	// unused by any route, and confirm it does not appear.
	stopsWithUnused := stopsCSV + "D,Stop D,45.3,5.3\n"
	dir := writeGTFSFolder(t, stopsWithUnused, tripsCSV, stopTimesCSV)

	data, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(data.RankedStops) != 3 {
		t.Fatalf("len(RankedStops) = %d; want 3 (A, B, C - not D)", len(data.RankedStops))
	}
	if _, ok := data.StopIDToRank["D"]; ok {
		t.Errorf("StopIDToRank contains unused stop D")
	}
	// lexicographic order: A, B, C
	wantOrder := []string{"A", "B", "C"}
	for i, id := range wantOrder {
		if data.RankedStops[i].ID != id {
			t.Errorf("RankedStops[%d].ID = %q; want %q", i, data.RankedStops[i].ID, id)
		}
		if data.StopIDToRank[id] != i {
			t.Errorf("StopIDToRank[%q] = %d; want %d", id, data.StopIDToRank[id], i)
		}
	}
}

func TestLoadRejectsTripWithSingleStop(t *testing.T) {
	badStopTimes := `trip_id,arrival_time,departure_time,stop_id,stop_sequence
t1,08:00:00,08:00:00,A,1
`
	dir := writeGTFSFolder(t, stopsCSV, "trip_id,route_id\nt1,r1\n", badStopTimes)

	_, err := Load(dir)
	if err == nil {
		t.Fatalf("Load with 1-stop trip: error = nil; want an error")
	}
	if !errors.Is(err, ErrTripTooShort) {
		t.Errorf("Load with 1-stop trip: error = %v; want errors.Is(err, ErrTripTooShort)", err)
	}
}

func TestLoadRejectsMissingField(t *testing.T) {
	badStops := `stop_id,stop_name,stop_lat
A,Stop A,45.0
`
	dir := writeGTFSFolder(t, badStops, tripsCSV, stopTimesCSV)

	_, err := Load(dir)
	if err == nil {
		t.Fatalf("Load with missing stop_lon: error = nil; want an error")
	}
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("Load with missing stop_lon: error = %v; want errors.Is(err, ErrMissingField)", err)
	}
}

func TestLoadRejectsUnorderedStopTimes(t *testing.T) {
	badStopTimes := `trip_id,arrival_time,departure_time,stop_id,stop_sequence
t1,08:00:00,08:00:00,A,1
t1,07:50:00,07:50:00,B,2
`
	dir := writeGTFSFolder(t, stopsCSV, "trip_id,route_id\nt1,r1\n", badStopTimes)

	_, err := Load(dir)
	if err == nil {
		t.Fatalf("Load with out-of-order stop-times: error = nil; want an error")
	}
	if !errors.Is(err, ErrStopTimesUnordered) {
		t.Errorf("Load with out-of-order stop-times: error = %v; want errors.Is(err, ErrStopTimesUnordered)", err)
	}
}
