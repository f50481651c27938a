// seed_runs.go — standalone script to execute every built-in scenario
// against a running rankline instance, seeding the run history.
//
// Usage:
//
//	go run scripts/seed_runs.go -api http://localhost:8700 -seeds 5
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

type rankRequest struct {
	Scenario string `json:"scenario"`
	Seed     int64  `json:"seed"`
}

type rankResponse struct {
	RunID  string `json:"run_id"`
	Result struct {
		InitialCount int `json:"initial_count"`
		FinalCount   int `json:"final_count"`
	} `json:"result"`
}

type scenario struct {
	ID string `json:"id"`
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "rankline API base URL")
	seeds := flag.Int("seeds", 3, "number of seeds to run per scenario")
	dryRun := flag.Bool("dry-run", false, "print planned runs without posting")
	flag.Parse()

	client := &http.Client{}

	resp, err := client.Get(*apiURL + "/api/v1/scenarios")
	if err != nil {
		log.Fatalf("list scenarios: %v", err)
	}
	var scenarios []scenario
	if err := json.NewDecoder(resp.Body).Decode(&scenarios); err != nil {
		resp.Body.Close()
		log.Fatalf("decode scenarios: %v", err)
	}
	resp.Body.Close()

	log.Printf("found %d scenarios", len(scenarios))

	if *dryRun {
		for _, s := range scenarios {
			for seed := 1; seed <= *seeds; seed++ {
				fmt.Printf("%s seed=%d\n", s.ID, seed)
			}
		}
		return
	}

	created, skipped := 0, 0
	for _, s := range scenarios {
		for seed := 1; seed <= *seeds; seed++ {
			body, _ := json.Marshal(rankRequest{Scenario: s.ID, Seed: int64(seed)})
			req, err := http.NewRequest("POST", *apiURL+"/api/v1/rank", bytes.NewReader(body))
			if err != nil {
				log.Printf("skip %s seed=%d: %v", s.ID, seed, err)
				skipped++
				continue
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				log.Printf("skip %s seed=%d: %v", s.ID, seed, err)
				skipped++
				continue
			}

			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				log.Printf("skip %s seed=%d: status %d", s.ID, seed, resp.StatusCode)
				skipped++
				continue
			}

			var out rankResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				resp.Body.Close()
				log.Printf("skip %s seed=%d: decode: %v", s.ID, seed, err)
				skipped++
				continue
			}
			resp.Body.Close()

			log.Printf("ran %s seed=%d: run_id=%s %d -> %d candidates",
				s.ID, seed, out.RunID, out.Result.InitialCount, out.Result.FinalCount)
			created++
		}
	}

	log.Printf("done: %d runs created, %d skipped", created, skipped)
}
