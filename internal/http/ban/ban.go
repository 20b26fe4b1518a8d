package ban

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Policy controls when a client that keeps hitting the rate limit is banned.
type Policy struct {
	// MaxStrikes is the number of rejected requests within StrikeWindow
	// that triggers a ban.
	MaxStrikes   int
	StrikeWindow time.Duration
	BanDuration  time.Duration
}

// Tracker counts rate limit strikes per client and keeps the ban list.
type Tracker interface {
	IsBanned(ctx context.Context, target string) (bool, error)
	// AddStrike records one rejected request and reports whether the target
	// is now banned together with its strike count.
	AddStrike(ctx context.Context, target, route string) (banned bool, strikes int, err error)
	// DrainLog returns and clears the ban events recorded since the last call.
	DrainLog(ctx context.Context) ([]BanLogEntry, error)
}

type BanLogEntry struct {
	Target  string    `json:"target"`
	Route   string    `json:"route"`
	Strikes int       `json:"strikes"`
	Time    time.Time `json:"time"`
}

// Summary aggregates ban events for the daily report.
type Summary struct {
	Total    int            `json:"total"`
	ByRoute  map[string]int `json:"by_route"`
	ByTarget map[string]int `json:"by_target"`
}

func Summarize(entries []BanLogEntry) Summary {
	s := Summary{
		Total:    len(entries),
		ByRoute:  make(map[string]int),
		ByTarget: make(map[string]int),
	}
	for _, e := range entries {
		s.ByRoute[e.Route]++
		s.ByTarget[e.Target]++
	}
	return s
}

// nextSummaryTime returns the next 23:59 in now's location.
func nextSummaryTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// StartDailyBanSummary logs a summary of the day's bans every night at 23:59
// until ctx is cancelled.
func StartDailyBanSummary(ctx context.Context, tracker Tracker, logger *zap.Logger) {
	for {
		timer := time.NewTimer(time.Until(nextSummaryTime(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			SendDailyBanSummary(ctx, tracker, logger)
		}
	}
}

// SendDailyBanSummary drains the ban log and writes one summary entry.
// Nothing is logged when there were no bans.
func SendDailyBanSummary(ctx context.Context, tracker Tracker, logger *zap.Logger) {
	entries, err := tracker.DrainLog(ctx)
	if err != nil {
		logger.Error("Failed to read ban log", zap.Error(err))
		return
	}
	if len(entries) == 0 {
		return
	}

	s := Summarize(entries)
	targets := make([]string, 0, len(s.ByTarget))
	for t := range s.ByTarget {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	logger.Warn("Daily ban summary",
		zap.Int("total", s.Total),
		zap.Any("by_route", s.ByRoute),
		zap.Any("by_target", s.ByTarget),
		zap.Strings("targets", targets),
	)
}
