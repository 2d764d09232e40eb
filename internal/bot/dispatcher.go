// Package bot routes chat messages to the status query, the approval
// commands and the forwarded-message lookup.
package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/BrandonDHaskell/powerwatch/internal/clock"
	"github.com/BrandonDHaskell/powerwatch/internal/observability/metrics"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/service"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/types"
)

const (
	RefusalText        = "You are not entitled to use this command"
	ApprovedText       = "Approved user"
	DisapprovedText    = "Disapproved user"
	UnknownForwardText = "Can't get user id, ask user directly"

	// StaleAfter drops status queries that sat in the queue while the bot
	// was down; they would be answered with a misleading duration.
	StaleAfter = time.Minute
)

// Approvals is the authorization gate the dispatcher consults.
type Approvals interface {
	Approve(ctx context.Context, userID int64) error
	Disapprove(ctx context.Context, userID int64) error
	IsApproved(ctx context.Context, userID int64) (bool, error)
}

// StatusReader answers the light status query.
type StatusReader interface {
	LightOn(ctx context.Context) (service.Status, error)
}

type Dependencies struct {
	Logger    *log.Logger
	Endpoint  Endpoint
	Approvals Approvals
	Status    StatusReader
	AdminID   int64
	BotName   string // optional; filters "/cmd@otherbot"
	Clock     clock.Clock
}

type Dispatcher struct {
	logger    *log.Logger
	endpoint  Endpoint
	approvals Approvals
	status    StatusReader
	adminID   int64
	botName   string
	clock     clock.Clock

	wg sync.WaitGroup
}

func NewDispatcher(d Dependencies) *Dispatcher {
	clk := d.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &Dispatcher{
		logger:    d.Logger,
		endpoint:  d.Endpoint,
		approvals: d.Approvals,
		status:    d.Status,
		adminID:   d.AdminID,
		botName:   d.BotName,
		clock:     clk,
	}
}

// Run consumes updates until ctx is cancelled or the endpoint closes its
// channel, handling each message on its own goroutine.  It waits for
// in-flight handlers before returning.
func (d *Dispatcher) Run(ctx context.Context) {
	updates := d.endpoint.Updates(ctx)
	defer d.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-updates:
			if !ok {
				return
			}
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				d.Handle(ctx, msg)
			}()
		}
	}
}

// Handle routes a single message.  Errors are logged and counted; they
// never escape, so one bad message cannot affect the next.
func (d *Dispatcher) Handle(ctx context.Context, msg types.Message) {
	name, args, isCmd := parseCommand(msg.Text, d.botName)
	admin := d.isAdmin(msg)

	var (
		route  string
		result string
		err    error
	)
	switch {
	case isCmd && name == cmdStatus:
		route = cmdStatus
		result, err = d.handleStatus(ctx, msg)
	case isCmd && (name == cmdApprove || name == cmdDisapprove) && admin:
		route = name
		result, err = d.handleApproval(ctx, msg, name, args)
	case msg.IsForward() && admin:
		route = "forward"
		result, err = d.handleForward(ctx, msg)
	case isCmd && (name == cmdStart || name == cmdHelp):
		route = cmdHelp
		result, err = metrics.ResultSuccess, d.endpoint.SendTo(ctx, msg.ChatID, helpText(admin))
	default:
		return
	}

	if err != nil {
		d.logger.Printf("dispatch %s: msg=%d chat=%d from=%d: %v", route, msg.ID, msg.ChatID, msg.SenderID, err)
		result = metrics.ResultError
	}
	metrics.IncCommand(route, result)
}

func (d *Dispatcher) isAdmin(msg types.Message) bool {
	return msg.SenderID != 0 && msg.SenderID == d.adminID
}

func (d *Dispatcher) handleStatus(ctx context.Context, msg types.Message) (string, error) {
	if !d.authorized(ctx, msg) {
		return metrics.ResultDenied, d.endpoint.SendTo(ctx, msg.ChatID, RefusalText)
	}

	if d.clock.Now().Sub(msg.SentAt) > StaleAfter {
		return metrics.ResultDropped, nil
	}

	st, err := d.status.LightOn(ctx)
	if err != nil {
		return "", fmt.Errorf("read light status: %w", err)
	}
	if st.OnFor <= 0 {
		// The baseline is "now": nothing meaningful to say.
		return metrics.ResultDropped, nil
	}

	return metrics.ResultSuccess, d.endpoint.Reply(ctx, msg, "Light is on for "+service.FormatDuration(st.OnFor))
}

// authorized fails closed: an unreadable approval flag means no.
func (d *Dispatcher) authorized(ctx context.Context, msg types.Message) bool {
	if d.isAdmin(msg) {
		return true
	}
	if msg.SenderID == 0 {
		return false
	}
	ok, err := d.approvals.IsApproved(ctx, msg.SenderID)
	if err != nil {
		d.logger.Printf("dispatch status: approval lookup for %d: %v", msg.SenderID, err)
		return false
	}
	return ok
}

func (d *Dispatcher) handleApproval(ctx context.Context, msg types.Message, name, args string) (string, error) {
	userID, ok := parseUserID(args)
	if !ok {
		return metrics.ResultError, d.endpoint.SendTo(ctx, msg.ChatID, fmt.Sprintf("Usage: /%s <user_id>", name))
	}

	ack := ApprovedText
	apply := d.approvals.Approve
	if name == cmdDisapprove {
		ack = DisapprovedText
		apply = d.approvals.Disapprove
	}

	if err := apply(ctx, userID); err != nil {
		return "", fmt.Errorf("%s %d: %w", name, userID, err)
	}
	d.logger.Printf("dispatch %s: user=%d", name, userID)

	return metrics.ResultSuccess, d.endpoint.SendTo(ctx, msg.ChatID, ack)
}

func (d *Dispatcher) handleForward(ctx context.Context, msg types.Message) (string, error) {
	if !msg.Forward.Known {
		return metrics.ResultSuccess, d.endpoint.SendTo(ctx, msg.ChatID, UnknownForwardText)
	}
	return metrics.ResultSuccess, d.endpoint.SendTo(ctx, msg.ChatID, fmt.Sprintf("Forwarded from %d", msg.Forward.UserID))
}
