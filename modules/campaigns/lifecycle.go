package campaigns

import (
	"context"
	"fmt"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/statemachine"
)

// Lifecycle events. Submit is fired by the API; the rest belong to the
// queue worker.
const (
	eventSubmit   = statemachine.StringEvent("submit")
	eventStart    = statemachine.StringEvent("start")
	eventComplete = statemachine.StringEvent("complete")
	eventFail     = statemachine.StringEvent("fail")
)

func state(s Status) statemachine.State { return statemachine.StringState(s) }

// lifecycleTransitions is the complete send lifecycle:
// draft -> queued -> sending -> sent | failed. Sent and failed are terminal.
var lifecycleTransitions = []statemachine.TransitionDef{
	{From: state(StatusDraft), To: state(StatusQueued), Event: eventSubmit},
	{From: state(StatusQueued), To: state(StatusSending), Event: eventStart},
	{From: state(StatusSending), To: state(StatusSent), Event: eventComplete},
	{From: state(StatusSending), To: state(StatusFailed), Event: eventFail},
}

// transition fires event against the lifecycle table and writes the
// resulting status back to the campaign. Campaign state lives in the store,
// so each call seeds a fresh machine at the stored status.
func transition(ctx context.Context, c *Campaign, event statemachine.Event) error {
	m, err := statemachine.New(state(c.Status), statemachine.WithTransitions(lifecycleTransitions))
	if err != nil {
		return err
	}
	if err := m.Fire(ctx, event, c); err != nil {
		if statemachine.IsNoTransition(err) {
			return fmt.Errorf("%w: cannot %s a %s campaign", ErrInvalidTransition, event.Name(), c.Status)
		}
		return err
	}
	c.Status = Status(m.Current().Name())
	return nil
}
