package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediplan/clinic-scheduler/internal/availability"
	"github.com/mediplan/clinic-scheduler/internal/config"
	"github.com/mediplan/clinic-scheduler/internal/db"
)

// The simulator hammers the booking endpoint with deliberately colliding
// slots to verify that the server-side lock rejects double bookings with
// 409s instead of ever accepting two writes for one slot.

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	ReadRatio    float64
	PatientLimit int
	DoctorLimit  int
	HotDays      int // how few distinct days to spread bookings over; fewer days = more collisions
	PostgresDSN  string
}

type DataPool struct {
	Patients []uuid.UUID
	Doctors  []uuid.UUID
	mu       sync.RWMutex
	created  []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.created = append(dp.created, id)
}

func (dp *DataPool) GetRandomAppointment() (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.created) == 0 {
		return uuid.Nil, false
	}
	return dp.created[rand.Intn(len(dp.created))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Booking      OperationMetrics
	ReadByID     OperationMetrics
	ListPage     OperationMetrics
	Availability OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	dates   []string
	times   []string
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d booking=%.2f read=%.2f hot_days=%d",
		cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.ReadRatio, cfg.HotDays)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	log.Printf("loaded: %d patients, %d doctors", len(dataPool.Patients), len(dataPool.Doctors))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		dates: upcomingWeekdays(cfg.HotDays),
		times: availability.GenerateSlots(availability.DefaultStartHour, availability.DefaultEndHour, availability.DefaultStepMinutes),
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.6),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.4),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 500),
		DoctorLimit:  getInt("SIM_DOCTOR_LIMIT", 5),
		HotDays:      getInt("SIM_HOT_DAYS", 3),
		PostgresDSN:  baseCfg.PostgresDSN,
	}

	total := cfg.BookingRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.HotDays <= 0 {
		return fmt.Errorf("SIM_HOT_DAYS must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	rows, err := pool.Query(ctx, `
		SELECT id FROM patients LIMIT $1
	`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Patients = append(dataPool.Patients, id)
	}

	rows, err = pool.Query(ctx, `
		SELECT id FROM users
		WHERE role = 'medecin'
		LIMIT $1
	`, cfg.DoctorLimit)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Doctors = append(dataPool.Doctors, id)
	}

	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded")
	}
	if len(dataPool.Doctors) == 0 {
		return nil, fmt.Errorf("no doctors loaded")
	}

	return dataPool, nil
}

// upcomingWeekdays returns the next n weekdays as YYYY-MM-DD.
func upcomingWeekdays(n int) []string {
	dates := make([]string, 0, n)
	d := time.Now()
	for len(dates) < n {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if rng.Float64() < s.config.BookingRatio {
				s.doBooking(ctx, rng)
			} else {
				switch rng.Intn(3) {
				case 0:
					s.doReadByID(ctx, rng)
				case 1:
					s.doListPage(ctx, rng)
				case 2:
					s.doAvailability(ctx, rng)
				}
			}
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	doctorID := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]
	patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	date := s.dates[rng.Intn(len(s.dates))]
	slot := s.times[rng.Intn(len(s.times))]

	start := time.Now()

	reqBody := map[string]string{
		"patient_id":       patientID.String(),
		"medecin_id":       doctorID.String(),
		"date_rendez_vous": date,
		"heure":            slot,
		"motif":            "simulated load-test booking request",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+"/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false

	if err == nil {
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			success = true
			var apptResp struct {
				ID uuid.UUID `json:"id"`
			}
			bodyBytes, _ := io.ReadAll(resp.Body)
			if len(bodyBytes) > 0 {
				json.Unmarshal(bodyBytes, &apptResp)
				if apptResp.ID != uuid.Nil {
					s.pool.AddAppointment(apptResp.ID)
				}
			}
		} else if resp.StatusCode == http.StatusConflict {
			conflict = true
		}
	}

	s.metrics.Booking.Record(latency, success, conflict)
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.GetRandomAppointment()
	if !ok {
		return
	}

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/appointments/%s", s.config.APIBaseURL, apptID.String()), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.ReadByID.Record(latency, success, false)
}

func (s *Simulator) doListPage(ctx context.Context, rng *rand.Rand) {
	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/appointments?page=%d&size=20", s.config.APIBaseURL, rng.Intn(5)+1), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.ListPage.Record(latency, success, false)
}

func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	doctorID := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]
	date := s.dates[rng.Intn(len(s.dates))]

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/appointments/availability?medecin_id=%s&date=%s", s.config.APIBaseURL, doctorID.String(), date), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Availability.Record(latency, success, false)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
	printOperationReport("List page", &s.metrics.ListPage)
	printOperationReport("Availability", &s.metrics.Availability)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failures := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failures > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failures, float64(failures)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
