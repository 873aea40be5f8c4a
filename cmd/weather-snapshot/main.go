package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chrissnell/pvforecast/internal/weather"
)

func main() {
	input := flag.String("input", "", "Weather CSV to convert (required)")
	output := flag.String("output", "weather.msgpack", "Snapshot file to write")
	unitsName := flag.String("units", "si", "Units of the input: si, dwd-mosmix or dwd-observation")
	tz := flag.String("timezone", "UTC", "Timezone for timestamps without an offset")
	flag.Parse()

	if *input == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -input <weather.csv> [-output weather.msgpack]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	units, err := weather.ParseUnits(*unitsName)
	if err != nil {
		log.Fatalf("Invalid units: %v", err)
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	table, err := weather.LoadFile(*input, weather.Options{Units: units, Location: loc})
	if err != nil {
		log.Fatalf("Failed to load weather: %v", err)
	}

	if err := weather.WriteSnapshotFile(*output, table); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}

	log.Printf("Wrote %d samples (%s to %s) in SI units to %s", len(table.Index),
		table.Index[0].Format(time.RFC3339), table.Index[len(table.Index)-1].Format(time.RFC3339), *output)
}
