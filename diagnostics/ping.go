package diagnostics

import (
	"context"
	"errors"
	"math"
	"regexp"
	"runtime"
	"strconv"

	"github.com/seodesk/seodesk/logger"
)

// PingCount is the number of echo requests sent.
const PingCount = 4

var pingTime = regexp.MustCompile(`time[<=](\d+(?:\.\d+)?)`)

// PingResult is the outcome of the ping probe. Times are in milliseconds.
type PingResult struct {
	Status    string    `json:"status"`
	Domain    string    `json:"domain"`
	AvgTime   float64   `json:"avg_time"`
	Times     []float64 `json:"times"`
	RawOutput string    `json:"raw_output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Ping sends PingCount echo requests with the system ping binary and
// averages the round-trip times it prints.
func (p *Prober) Ping(ctx context.Context, target string) PingResult {
	domain := hostOf(target)
	result := PingResult{Domain: domain, Times: []float64{}}

	ctx, cancel := context.WithTimeout(ctx, p.config.CommandTimeout)
	defer cancel()

	stdout, stderr, err := p.runner.Run(ctx, "ping", pingArgs(domain)...)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result.Status = StatusTimeout
		result.Error = "ping timeout"
	case err != nil:
		result.Status = StatusError
		result.Error = stderr
		if result.Error == "" {
			result.Error = err.Error()
		}
		result.RawOutput = stdout
	default:
		result.Status = StatusSuccess
		result.RawOutput = stdout
		result.Times = parsePingTimes(stdout)
		result.AvgTime = mean(result.Times)
	}

	if result.Status != StatusSuccess {
		p.log.Warn("Ping probe failed", logger.String("domain", domain), logger.String("error", result.Error))
	}
	return result
}

func pingArgs(domain string) []string {
	count := strconv.Itoa(PingCount)
	if runtime.GOOS == "windows" {
		return []string{"-n", count, domain}
	}
	return []string{"-c", count, domain}
}

// parsePingTimes collects every "time=N" or "time<N" sample.
func parsePingTimes(output string) []float64 {
	times := []float64{}
	for _, match := range pingTime.FindAllStringSubmatch(output, -1) {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			times = append(times, v)
		}
	}
	return times
}

// mean returns the average rounded to two decimals, or 0 for no samples.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return math.Round(sum/float64(len(values))*100) / 100
}
