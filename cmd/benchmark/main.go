package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
)

// Metrics
var (
	totalRequests uint64
	deposits      uint64 // 201 Created
	withdrawals   uint64 // 200 OK
	conflicts     uint64 // 409 (already staked / op in progress)
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "churn", "Workload type: churn | hotspot")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, i, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// worker deposits an item and immediately withdraws it, round-tripping
// custody through the registry. Each worker owns a disjoint item range so
// churn workloads do not fight over custody; hotspot deliberately collides.
func worker(wg *sync.WaitGroup, id int, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		owner, itemID := pick(id)

		if code := post(client, "/api/v1/deposits", owner, itemID); code != 0 {
			count(code)
		}
		if code := post(client, "/api/v1/withdrawals", owner, itemID); code != 0 {
			count(code)
		}
	}
}

func post(client *http.Client, path, owner string, itemID int64) int {
	payload := map[string]interface{}{
		"owner":   owner,
		"item_id": itemID,
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", targetURL+path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		atomic.AddUint64(&failOther, 1)
		return 0
	}
	defer resp.Body.Close()
	atomic.AddUint64(&totalRequests, 1)
	return resp.StatusCode
}

func count(code int) {
	switch code {
	case 201:
		atomic.AddUint64(&deposits, 1)
	case 200:
		atomic.AddUint64(&withdrawals, 1)
	case 409:
		atomic.AddUint64(&conflicts, 1)
	default:
		atomic.AddUint64(&failOther, 1)
	}
}

func pick(worker int) (string, int64) {
	// Assumes the seeder ran: 1000 items spread across owner-1..owner-100.
	totalItems := 1000

	if workload == "hotspot" {
		// Hotspot: 90% of traffic fights over item 1
		if rand.Float32() < 0.90 {
			return "owner-1", 1
		}
		item := rand.Intn(totalItems) + 1
		return ownerOf(item), int64(item)
	}

	// churn: each worker cycles items in its own slice of the id space
	span := totalItems / concurrency
	if span == 0 {
		span = 1
	}
	item := (worker*span+rand.Intn(span))%totalItems + 1
	return ownerOf(item), int64(item)
}

func ownerOf(item int) string {
	return fmt.Sprintf("owner-%d", (item-1)%100+1)
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	dep := atomic.LoadUint64(&deposits)
	wd := atomic.LoadUint64(&withdrawals)
	conf := atomic.LoadUint64(&conflicts)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()
	conflictRate := float64(conf) / float64(total) * 100

	results := map[string]interface{}{
		"workload":          workload,
		"duration_sec":      d.Seconds(),
		"total_requests":    total,
		"throughput_tps":    tps,
		"deposits_created":  dep,
		"withdrawals_done":  wd,
		"conflicts":         conf,
		"conflict_rate_pct": conflictRate,
		"errors":            fErr,
	}

	// Print JSON for the python plotter to consume
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	// Also save to file
	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
