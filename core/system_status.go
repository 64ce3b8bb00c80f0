package core

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// HealthCheck reports whether a backing service answers.
type HealthCheck func(ctx context.Context) error

// SystemStatus は管理画面向けの集約ステータス。
type SystemStatus struct {
	Store struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	} `json:"store"`
	Settings struct {
		Configured bool   `json:"configured"`
		OK         bool   `json:"ok"`
		Error      string `json:"error,omitempty"`
	} `json:"settings"`
	Memory struct {
		UsedBytes  uint64 `json:"used_bytes"`
		TotalBytes uint64 `json:"total_bytes"`
	} `json:"memory"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// StatusReporter probes the session store and settings database on demand.
type StatusReporter struct {
	startedAt time.Time
	store     HealthCheck
	settings  HealthCheck
	timeout   time.Duration
}

// NewStatusReporter builds a reporter. settings is nil when no database is configured.
func NewStatusReporter(startedAt time.Time, store, settings HealthCheck) *StatusReporter {
	return &StatusReporter{startedAt: startedAt, store: store, settings: settings, timeout: 2 * time.Second}
}

// Collect で現在のステータスを集約する。プローブの失敗はエラーではなく各フィールドに載せる。
func (r *StatusReporter) Collect(ctx context.Context) SystemStatus {
	var st SystemStatus

	if r.store != nil {
		if err := r.probe(ctx, r.store); err != nil {
			st.Store.Error = err.Error()
		} else {
			st.Store.OK = true
		}
	}

	if r.settings != nil {
		st.Settings.Configured = true
		if err := r.probe(ctx, r.settings); err != nil {
			st.Settings.Error = err.Error()
		} else {
			st.Settings.OK = true
		}
	}

	used, total := readMemInfo()
	st.Memory.UsedBytes = used
	st.Memory.TotalBytes = total

	if !r.startedAt.IsZero() {
		st.UptimeSeconds = int64(time.Since(r.startedAt).Seconds())
	}
	return st
}

func (r *StatusReporter) probe(ctx context.Context, check HealthCheck) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return check(ctx)
}

// readMemInfo returns used and total bytes from /proc/meminfo, or zeros when unavailable.
func readMemInfo() (used, total uint64) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	return parseMemInfo(bufio.NewScanner(f))
}

func parseMemInfo(scanner *bufio.Scanner) (used, total uint64) {
	var memTotal, memAvailable uint64
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			memTotal = parseKiBLine(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			memAvailable = parseKiBLine(line)
		}
	}
	if memTotal == 0 {
		return 0, 0
	}
	if memAvailable <= memTotal {
		used = memTotal - memAvailable
	}
	// KiB -> bytes
	return used * 1024, memTotal * 1024
}

func parseKiBLine(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
