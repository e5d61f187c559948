// seed_valuations.go posts questionnaires to a running valuation server.
//
// Usage:
//
//	go run scripts/seed_valuations.go -file questionnaires.yaml -api http://localhost:8700
//
// Without -file the built-in audit system example is posted.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Valuation/internal/intake"
)

func main() {
	file := flag.String("file", "", "YAML or JSON list of questionnaires")
	apiURL := flag.String("api", "http://localhost:8700", "valuation API base URL")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print questionnaires without posting")
	flag.Parse()

	items := []map[string]interface{}{intake.ExampleAuditSystem()}
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("read %s: %v", *file, err)
		}
		items = nil
		// YAML is a superset of JSON, so one decoder covers both.
		if err := yaml.Unmarshal(data, &items); err != nil {
			log.Fatalf("parse %s: %v", *file, err)
		}
	}

	log.Printf("loaded %d questionnaires", len(items))

	if *dryRun {
		for i, item := range items {
			fmt.Printf("[%d] category=%v technology=%v\n", i+1, item["category"], item["technology"])
		}
		return
	}

	client := &http.Client{}
	created, skipped := 0, 0
	for i, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			log.Printf("skip #%d: %v", i+1, err)
			skipped++
			continue
		}
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/valuations", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip #%d: %v", i+1, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip #%d: %v", i+1, err)
			skipped++
			continue
		}

		var out struct {
			Valuation struct {
				ID     string `json:"id"`
				Result struct {
					ValueAverage float64 `json:"value_average"`
				} `json:"result"`
			} `json:"valuation"`
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			created++
			log.Printf("created %s (average %.0f COP)", out.Valuation.ID, out.Valuation.Result.ValueAverage)
		} else {
			log.Printf("skip #%d: status %d %s", i+1, resp.StatusCode, out.Error)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}
