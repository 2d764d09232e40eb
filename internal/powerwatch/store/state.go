package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Keys match the ones the first deployment wrote to Redis, so an existing
// database keeps its history across the upgrade.
const (
	HeartbeatKey      = "power_on_time"
	PowerResumedKey   = "wake_up_time"
	approvalKeyPrefix = "approval:"
)

// Approval is the per-user flag controlling access to status queries.
type Approval string

const (
	ApprovalAbsent Approval = ""
	Approved       Approval = "approved"
	Disapproved    Approval = "disapproved"
)

// State is the typed view over KV: two timestamp slots and the approval
// flags.  It holds no state of its own, so it is as concurrency-safe as
// the KV underneath.
type State struct {
	kv KV
}

func NewState(kv KV) *State {
	return &State{kv: kv}
}

// Heartbeat returns the last "process alive" instant.
func (s *State) Heartbeat(ctx context.Context) (time.Time, error) {
	return s.getTime(ctx, HeartbeatKey)
}

func (s *State) SetHeartbeat(ctx context.Context, t time.Time) error {
	return s.setTime(ctx, HeartbeatKey, t)
}

// PowerResumed returns the instant power was last confirmed to have
// come back.
func (s *State) PowerResumed(ctx context.Context) (time.Time, error) {
	return s.getTime(ctx, PowerResumedKey)
}

func (s *State) SetPowerResumed(ctx context.Context, t time.Time) error {
	return s.setTime(ctx, PowerResumedKey, t)
}

// Approval returns the stored flag for userID.  A user that was never
// approved or disapproved yields ApprovalAbsent with a nil error.
func (s *State) Approval(ctx context.Context, userID int64) (Approval, error) {
	v, err := s.kv.Get(ctx, ApprovalKey(userID))
	if errors.Is(err, ErrNotFound) {
		return ApprovalAbsent, nil
	}
	if err != nil {
		return ApprovalAbsent, err
	}
	return Approval(strings.TrimSpace(v)), nil
}

func (s *State) SetApproval(ctx context.Context, userID int64, a Approval) error {
	if a != Approved && a != Disapproved {
		return fmt.Errorf("set approval %q: %w", a, ErrMalformed)
	}
	return s.kv.Set(ctx, ApprovalKey(userID), string(a))
}

// ApprovalKey is the KV key holding the approval flag of userID.
func ApprovalKey(userID int64) string {
	return approvalKeyPrefix + strconv.FormatInt(userID, 10)
}

func (s *State) getTime(ctx context.Context, key string) (time.Time, error) {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ParseTimestamp(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s: %w", key, err)
	}
	return t, nil
}

func (s *State) setTime(ctx context.Context, key string, t time.Time) error {
	if err := s.kv.Set(ctx, key, FormatTimestamp(t)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// FormatTimestamp encodes t the way every backend stores instants.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp decodes an RFC 3339 instant, with or without fractional
// seconds and with any offset, into UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMalformed
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, ErrMalformed)
}
