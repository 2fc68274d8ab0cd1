package caretaker

import (
	"context"
	"errors"
	"log/slog"
)

// Caretaker runs observe, triage, decide and act cycles against one run.
type Caretaker struct {
	Observer *Observer
	Actor    *Actor
	Memory   *Memory
}

func New(baseURL, memoryPath string) *Caretaker {
	return &Caretaker{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL),
		Memory:   LoadMemory(memoryPath),
	}
}

// Cycle executes one cycle and returns the decision taken. A rejected
// action is recorded and reported without an error; transport failures
// return the error.
func (c *Caretaker) Cycle(ctx context.Context) (Decision, error) {
	snap, err := c.Observer.Observe(ctx)
	if err != nil {
		return Decision{}, err
	}
	h := Triage(snap)
	d := Decide(snap, h, c.Memory)
	slog.Info("decision made",
		"day", snap.Status.Day,
		"crisis", h.CrisisLevel,
		"top_pressure", h.Top.Resource,
		"action", d.Action,
		"rationale", d.Rationale,
	)

	rec := CycleRecord{
		Day:         snap.Status.Day,
		Action:      d.Action,
		CrisisLevel: h.CrisisLevel,
		TopPressure: h.Top.Resource,
		Rationale:   d.Rationale,
	}
	defer func() {
		c.Memory.Record(rec)
		c.Memory.Save()
	}()

	if d.Action == ActionNone {
		return d, nil
	}
	if _, err := c.Actor.Act(ctx, d); err != nil {
		rec.Failed = true
		var rejected *ErrRejected
		if errors.As(err, &rejected) {
			slog.Warn("action rejected", "action", d.Action, "status", rejected.Status, "reason", rejected.Body)
			return d, nil
		}
		return d, err
	}
	return d, nil
}
