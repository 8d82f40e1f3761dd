package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// InquiryPayload is the body the public art inquiry form posts.
type InquiryPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	ArtType  string `json:"artType,omitempty"`
	Size     string `json:"size,omitempty"`
	Budget   string `json:"budget,omitempty"`
	Timeline string `json:"timeline,omitempty"`
	Message  string `json:"message"`
}

type LoadTestConfig struct {
	BaseURL           string
	RequestsPerSecond int
	DurationSeconds   int
	ConcurrentWorkers int
	// VisitRatio is how many visitor beacons are sent per inquiry.
	VisitRatio int
}

type endpointStats struct {
	success atomic.Int64
	errors  atomic.Int64
	mu      sync.Mutex
	times   []float64
}

func (s *endpointStats) record(seconds float64, ok bool) {
	if ok {
		s.success.Add(1)
	} else {
		s.errors.Add(1)
	}
	s.mu.Lock()
	s.times = append(s.times, seconds)
	s.mu.Unlock()
}

func (s *endpointStats) sorted() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]float64(nil), s.times...)
	sort.Float64s(out)
	return out
}

type job struct {
	url     string
	payload []byte
	stats   *endpointStats
}

func send(client *http.Client, j job) {
	start := time.Now()

	var body io.Reader
	if j.payload != nil {
		body = bytes.NewReader(j.payload)
	}
	req, err := http.NewRequest(http.MethodPost, j.url, body)
	if err != nil {
		j.stats.record(0, false)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "inquiry-loadtest/1.0")

	resp, err := client.Do(req)
	if err != nil {
		j.stats.record(time.Since(start).Seconds(), false)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	j.stats.record(time.Since(start).Seconds(), resp.StatusCode == http.StatusCreated)
}

func worker(client *http.Client, jobs <-chan job, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		send(client, j)
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	i := int(float64(len(sorted)) * p)
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

var artTypes = []string{"acrylic", "madhubani", "warli", "gond", "lippan", "other"}

func inquiryPayload(n int) []byte {
	b, err := json.Marshal(InquiryPayload{
		Name:    fmt.Sprintf("Load Tester %d", n),
		Email:   fmt.Sprintf("load+%d@example.com", n),
		ArtType: artTypes[n%len(artTypes)],
		Budget:  "₹10,000",
		Message: "Load test inquiry, please ignore.",
	})
	if err != nil {
		panic(err)
	}
	return b
}

func printStats(name string, s *endpointStats, duration float64) {
	success, errors := s.success.Load(), s.errors.Load()
	total := success + errors
	times := s.sorted()

	fmt.Printf("\n[%s]\n", name)
	fmt.Printf("Total requests: %d\n", total)
	fmt.Printf("Successful: %d\n", success)
	fmt.Printf("Failed: %d\n", errors)
	if total > 0 {
		fmt.Printf("Success rate: %.2f%%\n", float64(success)/float64(total)*100)
		fmt.Printf("Actual RPS: %.2f\n", float64(total)/duration)
	}
	if len(times) == 0 {
		return
	}
	sum := 0.0
	for _, t := range times {
		sum += t
	}
	fmt.Printf("Response times:\n")
	fmt.Printf("  Average: %.2f ms\n", sum/float64(len(times))*1000)
	fmt.Printf("  P50: %.2f ms\n", percentile(times, 0.50)*1000)
	fmt.Printf("  P95: %.2f ms\n", percentile(times, 0.95)*1000)
	fmt.Printf("  P99: %.2f ms\n", percentile(times, 0.99)*1000)
	fmt.Printf("  Min: %.2f ms\n", times[0]*1000)
	fmt.Printf("  Max: %.2f ms\n", times[len(times)-1]*1000)
}

func main() {
	config := LoadTestConfig{
		BaseURL:           strings.TrimRight(getEnvOrDefault("TARGET_URL", "http://localhost:8080/api/v1"), "/"),
		RequestsPerSecond: getEnvIntOrDefault("REQUESTS_PER_SECOND", 200),
		DurationSeconds:   getEnvIntOrDefault("DURATION_SECONDS", 30),
		ConcurrentWorkers: getEnvIntOrDefault("CONCURRENT_WORKERS", 50),
		VisitRatio:        getEnvIntOrDefault("VISIT_RATIO", 10),
	}

	fmt.Println("Starting load test...")
	fmt.Printf("Target: %s\n", config.BaseURL)
	fmt.Printf("Target RPS: %d\n", config.RequestsPerSecond)
	fmt.Printf("Visits per inquiry: %d\n", config.VisitRatio)
	fmt.Printf("Concurrent workers: %d\n", config.ConcurrentWorkers)
	fmt.Printf("Duration: %d seconds\n", config.DurationSeconds)
	fmt.Println(strings.Repeat("-", 50))

	inquiries, visits := &endpointStats{}, &endpointStats{}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        config.ConcurrentWorkers,
			MaxIdleConnsPerHost: config.ConcurrentWorkers,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 60 * time.Second,
	}

	jobs := make(chan job, config.RequestsPerSecond)
	var wg sync.WaitGroup
	for i := 0; i < config.ConcurrentWorkers; i++ {
		wg.Add(1)
		go worker(client, jobs, &wg)
	}

	start := time.Now()
	n := 0
	for sec := 0; sec < config.DurationSeconds; sec++ {
		batchStart := time.Now()

		for j := 0; j < config.RequestsPerSecond; j++ {
			n++
			if config.VisitRatio > 0 && n%(config.VisitRatio+1) != 0 {
				jobs <- job{url: config.BaseURL + "/visitors/log", stats: visits}
				continue
			}
			jobs <- job{url: config.BaseURL + "/inquiries", payload: inquiryPayload(n), stats: inquiries}
		}

		fmt.Printf("[%ds] inquiries: %d ok / %d err | visits: %d ok / %d err\n", sec+1,
			inquiries.success.Load(), inquiries.errors.Load(),
			visits.success.Load(), visits.errors.Load())

		if elapsed := time.Since(batchStart); elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}

	close(jobs)
	wg.Wait()
	duration := time.Since(start).Seconds()

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("LOAD TEST RESULTS")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Duration: %.2f seconds\n", duration)
	printStats("POST /inquiries", inquiries, duration)
	printStats("POST /visitors/log", visits, duration)
}
