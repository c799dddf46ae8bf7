package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/slog"

	"github.com/ttpr0/transit-preprocess/graph"
	"github.com/ttpr0/transit-preprocess/gtfsparse"
	"github.com/ttpr0/transit-preprocess/model"
	"github.com/ttpr0/transit-preprocess/parser"
	"github.com/ttpr0/transit-preprocess/polygon"
	"github.com/ttpr0/transit-preprocess/serialize"
	"github.com/ttpr0/transit-preprocess/stopattach"
)

var log = slog.New(NewLogHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

const usage = "Usage:  %s  <gtfs_folder>  <osm_file>  <polygon_file>  <walkspeed_km/h>  <output_dir>  <hluw_output_dir>\n"

func main() {
	slog.SetDefault(log)

	if len(os.Args) < 7 {
		fmt.Printf(usage, os.Args[0])
		os.Exit(0)
	}

	gtfsFolder := os.Args[1]
	osmFile := os.Args[2]
	polygonFile := os.Args[3]
	walkspeedKmPerH, err := strconv.ParseFloat(os.Args[4], 64)
	if err != nil {
		log.Error("walkspeed_km/h is not a number", "value", os.Args[4])
		os.Exit(1)
	}
	outputDir := withTrailingSlash(os.Args[5])
	hluwOutputDir := withTrailingSlash(os.Args[6])

	log.Info("starting preprocessing",
		"gtfs_folder", gtfsFolder,
		"osm_file", osmFile,
		"polygon_file", polygonFile,
		"walkspeed_km_per_h", walkspeedKmPerH,
		"output_dir", outputDir,
		"hluw_output_dir", hluwOutputDir,
	)

	stops, err := runGTFSPhase(gtfsFolder, outputDir, hluwOutputDir)
	if err != nil {
		log.Error("gtfs phase failed", "error", err)
		os.Exit(1)
	}

	if err := runGraphPhase(osmFile, polygonFile, stops, walkspeedKmPerH, outputDir, hluwOutputDir); err != nil {
		log.Error("graph phase failed", "error", err)
		os.Exit(1)
	}

	log.Info("all is ok")
}

// runGTFSPhase parses the GTFS feed, dumps gtfs.json and stoptimes.txt,
// checks gtfs.json's serialization is idempotent, and returns the
// ranked stops the graph phase attaches (C3 runs before C1/C2).
func runGTFSPhase(gtfsFolder, outputDir, hluwOutputDir string) ([]model.ParsedStop, error) {
	log.Info("parsing gtfs folder", "folder", gtfsFolder)
	gtfsData, err := gtfsparse.Load(gtfsFolder)
	if err != nil {
		return nil, fmt.Errorf("main: parsing gtfs folder %q: %w", gtfsFolder, err)
	}

	log.Info("dumping gtfs as json")
	gtfsJSONPath := outputDir + "gtfs.json"
	if err := serialize.WriteGTFSJSON(gtfsJSONPath, gtfsData); err != nil {
		return nil, fmt.Errorf("main: %w", err)
	}

	log.Info("dumping hl-uw stoptimes")
	if err := serialize.WriteStopTimes(hluwOutputDir+"stoptimes.txt", gtfsData); err != nil {
		return nil, fmt.Errorf("main: %w", err)
	}

	if err := serialize.CheckGTFSRoundTrip(gtfsJSONPath, gtfsData); err != nil {
		return nil, fmt.Errorf("main: %w", err)
	}

	return gtfsData.RankedStops, nil
}

// runGraphPhase loads the polygon, builds the OSM edge set, attaches
// stops, finalizes the ranked bidirectional graph, and dumps both the
// graph GeoJSON and the HL-UW flat files.
func runGraphPhase(osmFile, polygonFile string, stops []model.ParsedStop, walkspeedKmPerH float64, outputDir, hluwOutputDir string) error {
	log.Info("getting polygon", "file", polygonFile)
	poly, err := polygon.Load(polygonFile)
	if err != nil {
		return fmt.Errorf("main: %w", err)
	}

	log.Info("parsing osm ways", "file", osmFile)
	osmEdges, err := parser.Load(osmFile, poly, walkspeedKmPerH)
	if err != nil {
		return fmt.Errorf("main: %w", err)
	}

	log.Info("attaching stops to nearest osm node", "stop_count", len(stops))
	allEdges, attachedStops, err := stopattach.Attach(stops, osmEdges, walkspeedKmPerH)
	if err != nil {
		return fmt.Errorf("main: %w", err)
	}

	log.Info("building walking-graph")
	g, err := graph.Finalize(allEdges, attachedStops, walkspeedKmPerH)
	if err != nil {
		return fmt.Errorf("main: %w", err)
	}

	log.Info("dumping walking-graph for hl-uw")
	if err := serialize.WriteHLUW(hluwOutputDir, g); err != nil {
		return fmt.Errorf("main: %w", err)
	}

	log.Info("dumping walking-graph geojson")
	graphJSONPath := outputDir + "walking_graph.json"
	if err := serialize.WriteGraphGeoJSON(graphJSONPath, g); err != nil {
		return fmt.Errorf("main: %w", err)
	}

	if err := serialize.CheckGraphRoundTrip(graphJSONPath, g); err != nil {
		return fmt.Errorf("main: %w", err)
	}
	return nil
}

func withTrailingSlash(dir string) string {
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}
