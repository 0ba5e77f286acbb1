// Package progress holds the per-player quest progress record and its codec
// to the persisted quest-slot string. Nothing outside this package parses the
// delimited form.
//
// Encoding: <marker>[;<millis>[;<completions>]]
// where marker is "rejected", "done" or the active stage name.
package progress

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nathoo/parley/engine/world"
)

// ErrCorrupt is returned when a persisted progress string cannot be parsed.
var ErrCorrupt = errors.New("corrupt quest progress")

// ErrBadStage is returned for a stage name the persisted form cannot carry.
var ErrBadStage = errors.New("invalid quest stage")

// Status discriminates the lifecycle of a quest for one player.
type Status int

const (
	NotStarted Status = iota
	Rejected
	Active
	Done
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Rejected:
		return "rejected"
	case Active:
		return "active"
	case Done:
		return "done"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

const (
	markerRejected = "rejected"
	markerDone     = "done"
	defaultStage   = "start"
	sep            = ";"
)

// Progress is the decoded state of one quest slot.
type Progress struct {
	Status Status
	// Stage names the substate of an active quest, e.g. the chosen customer.
	Stage string
	// Timestamp is when the quest was accepted (active) or last completed (done).
	Timestamp time.Time
	// Completions counts how many times the quest has been finished.
	Completions int
}

// CheckStage reports whether stage survives a round trip as the marker of an
// active quest. It must not contain the separator or equal another marker.
func CheckStage(stage string) error {
	if strings.Contains(stage, sep) || stage == markerRejected || stage == markerDone {
		return fmt.Errorf("%q: %w", stage, ErrBadStage)
	}
	return nil
}

// Parse decodes a persisted progress string. The empty string is a quest
// that has not been started.
func Parse(s string) (Progress, error) {
	if s == "" {
		return Progress{Status: NotStarted}, nil
	}
	fields := strings.Split(s, sep)
	if len(fields) > 3 || fields[0] == "" {
		return Progress{}, fmt.Errorf("%q: %w", s, ErrCorrupt)
	}

	var p Progress
	switch fields[0] {
	case markerRejected:
		p.Status = Rejected
	case markerDone:
		p.Status = Done
	default:
		p.Status = Active
		p.Stage = fields[0]
	}

	if len(fields) > 1 && fields[1] != "" {
		ms, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || ms < 0 {
			return Progress{}, fmt.Errorf("%q: timestamp: %w", s, ErrCorrupt)
		}
		if ms > 0 {
			p.Timestamp = time.UnixMilli(ms)
		}
	}
	if len(fields) > 2 && fields[2] != "" {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n < 0 {
			return Progress{}, fmt.Errorf("%q: completions: %w", s, ErrCorrupt)
		}
		p.Completions = n
	}
	return p, nil
}

// String encodes the record in its persisted form.
func (p Progress) String() string {
	var marker string
	switch p.Status {
	case NotStarted:
		return ""
	case Rejected:
		marker = markerRejected
	case Done:
		marker = markerDone
	default:
		marker = p.Stage
		if marker == "" {
			marker = defaultStage
		}
	}

	var ms int64
	if !p.Timestamp.IsZero() {
		ms = p.Timestamp.UnixMilli()
	}
	if ms == 0 && p.Completions == 0 {
		return marker
	}
	if p.Completions == 0 {
		return marker + sep + strconv.FormatInt(ms, 10)
	}
	return marker + sep + strconv.FormatInt(ms, 10) + sep + strconv.Itoa(p.Completions)
}

// Read returns the progress stored in a quest slot. Corrupt data is logged
// and read as not started so the conversation can continue.
func Read(p world.Player, slot string, logger zerolog.Logger) Progress {
	if !p.HasQuest(slot) {
		return Progress{Status: NotStarted}
	}
	raw := p.Quest(slot)
	pr, err := Parse(raw)
	if err != nil {
		logger.Warn().Err(err).Str("player", p.Name()).Str("slot", slot).Msg("treating corrupt quest progress as not started")
		return Progress{Status: NotStarted}
	}
	return pr
}

// Write stores progress in a quest slot. Writing NotStarted clears the slot.
func Write(p world.Player, slot string, pr Progress) {
	if pr.Status == NotStarted {
		p.RemoveQuest(slot)
		return
	}
	p.SetQuest(slot, pr.String())
}
