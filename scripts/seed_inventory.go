// seed_inventory.go — standalone script to parse a lake inventory CSV and
// register lakes via the glofd API.
//
// Expected CSV header:
//
//	name,basin,latitude,longitude,elevation_m,source,<factor columns...>
//
// Every column after "source" is treated as a raw factor measurement.
//
// Usage:
//
//	go run scripts/seed_inventory.go -csv /path/to/inventory.csv -api http://localhost:8700 -client seeder
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
)

type lakePayload struct {
	Name         string             `json:"name"`
	Basin        string             `json:"basin,omitempty"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	Elevation    *float64           `json:"elevation_m,omitempty"`
	Measurements map[string]float64 `json:"measurements"`
	Source       string             `json:"source,omitempty"`
}

func main() {
	csvPath := flag.String("csv", "inventory.csv", "path to lake inventory CSV")
	apiURL := flag.String("api", "http://localhost:8700", "glofd API base URL")
	clientID := flag.String("client", "seeder", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print lakes without posting")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open inventory: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}
	if len(records) < 2 {
		log.Fatalf("inventory has no data rows")
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, required := range []string{"name", "latitude", "longitude"} {
		if _, ok := col[required]; !ok {
			log.Fatalf("missing required column %q", required)
		}
	}

	// Columns past the fixed ones are factor measurements.
	fixed := map[string]bool{
		"name": true, "basin": true, "latitude": true,
		"longitude": true, "elevation_m": true, "source": true,
	}

	var lakes []lakePayload
	for lineNo, rec := range records[1:] {
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return rec[i]
			}
			return ""
		}

		lat, err := strconv.ParseFloat(get("latitude"), 64)
		if err != nil {
			log.Fatalf("row %d: bad latitude %q", lineNo+2, get("latitude"))
		}
		lon, err := strconv.ParseFloat(get("longitude"), 64)
		if err != nil {
			log.Fatalf("row %d: bad longitude %q", lineNo+2, get("longitude"))
		}

		lake := lakePayload{
			Name:         get("name"),
			Basin:        get("basin"),
			Latitude:     lat,
			Longitude:    lon,
			Source:       get("source"),
			Measurements: map[string]float64{},
		}
		if v := get("elevation_m"); v != "" {
			if e, err := strconv.ParseFloat(v, 64); err == nil {
				lake.Elevation = &e
			}
		}
		for name, i := range col {
			if fixed[name] || i >= len(rec) || rec[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				log.Fatalf("row %d: bad %s value %q", lineNo+2, name, rec[i])
			}
			lake.Measurements[name] = v
		}
		lakes = append(lakes, lake)
	}

	if *dryRun {
		for _, l := range lakes {
			out, _ := json.MarshalIndent(l, "", "  ")
			fmt.Println(string(out))
		}
		log.Printf("dry run: %d lakes parsed", len(lakes))
		return
	}

	created := 0
	for _, l := range lakes {
		payload, _ := json.Marshal(l)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/lakes", bytes.NewReader(payload))
		if err != nil {
			log.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatalf("post lake %s: %v", l.Name, err)
		}
		if resp.StatusCode != http.StatusCreated {
			log.Printf("lake %s: unexpected status %d", l.Name, resp.StatusCode)
		} else {
			created++
		}
		resp.Body.Close()
	}
	log.Printf("seeded %d/%d lakes", created, len(lakes))
}
