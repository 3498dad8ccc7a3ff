package refdata

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Window is one shift entry. End earlier than Start means the shift runs
// overnight into the following day.
type Window struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// AgentSchedule maps lowercase day names to that day's shift windows.
type AgentSchedule map[string][]Window

// Schedule holds per-agent weekly shift windows. A nil or empty schedule means
// no agent has configured shifts, so every timestamp counts as off-hours.
type Schedule struct {
	Agents map[string]AgentSchedule `yaml:"agents"`
}

// Tickets created 30 minutes ahead of a shift still count as on-shift; agents
// pick up the queue slightly before their start time.
const shiftStartBuffer = 30 * time.Minute

// LoadSchedule reads the YAML schedule configuration.
func LoadSchedule(path string) (Schedule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("read schedule: %w", err)
	}
	var s Schedule
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Schedule{}, fmt.Errorf("parse schedule: %w", err)
	}
	for agent, days := range s.Agents {
		for day, windows := range days {
			for _, w := range windows {
				if _, err := parseClock(w.Start); err != nil {
					return Schedule{}, fmt.Errorf("schedule %s/%s: %w", agent, day, err)
				}
				if _, err := parseClock(w.End); err != nil {
					return Schedule{}, fmt.Errorf("schedule %s/%s: %w", agent, day, err)
				}
			}
		}
	}
	return s, nil
}

var dayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func dayName(wd time.Weekday) string {
	// time.Weekday counts from Sunday; the schedule file counts from Monday.
	return dayNames[(int(wd)+6)%7]
}

func prevDayName(wd time.Weekday) string {
	return dayNames[(int(wd)+5)%7]
}

// OnShift reports whether ts falls inside any configured shift window for the
// agent, including overnight windows that started the previous day. An agent
// with no schedule, or a day with no windows, is off-shift: the "no matching
// shift window" default is deliberately off-hours.
func (s Schedule) OnShift(agent string, ts time.Time) bool {
	days, ok := s.Agents[agent]
	if !ok {
		return false
	}
	minute := ts.Hour()*60 + ts.Minute()

	for _, w := range days[dayName(ts.Weekday())] {
		start, _ := parseClock(w.Start)
		end, _ := parseClock(w.End)
		buffered := start - int(shiftStartBuffer.Minutes())
		if buffered < 0 {
			buffered = 0
		}
		if end < start {
			// Overnight: covers [start, midnight) today.
			if minute >= buffered {
				return true
			}
		} else if minute >= buffered && minute < end {
			return true
		}
	}

	// Overnight spill from yesterday's windows: [midnight, end) today.
	for _, w := range days[prevDayName(ts.Weekday())] {
		start, _ := parseClock(w.Start)
		end, _ := parseClock(w.End)
		if end < start && minute < end {
			return true
		}
	}
	return false
}

// CalendarWeekend reports whether ts falls in the fixed weekend window:
// Friday 18:00 through Monday 05:00 in the display timezone.
func CalendarWeekend(ts time.Time) bool {
	minute := ts.Hour()*60 + ts.Minute()
	switch ts.Weekday() {
	case time.Friday:
		return minute >= 18*60
	case time.Saturday, time.Sunday:
		return true
	case time.Monday:
		return minute < 5*60
	}
	return false
}

func parseClock(v string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", v)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", v)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", v)
	}
	return h*60 + m, nil
}
