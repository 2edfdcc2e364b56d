package campaigns

import "time"

// Status is a campaign's position in the send lifecycle. Transitions between
// statuses go through the lifecycle machine; nothing writes Status directly.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusQueued  Status = "queued"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Campaign is one scheduled send of a template to a recipient list.
type Campaign struct {
	ID         string        `bson:"_id" json:"id"`
	UserID     string        `bson:"user_id" json:"userId"`
	TemplateID string        `bson:"template_id" json:"templateId"`
	Name       string        `bson:"name" json:"name"`
	Subject    string        `bson:"subject" json:"subject"`
	Recipients []string      `bson:"recipients" json:"recipients"`
	Status     Status        `bson:"status" json:"status"`
	SentCount  int           `bson:"sent_count,omitempty" json:"sentCount,omitempty"`
	Failures   []SendFailure `bson:"failures,omitempty" json:"failures,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updatedAt"`
}

// SendFailure records one recipient the sender could not deliver to. A
// failure with an empty Recipient applies to the campaign as a whole, e.g.
// the template no longer renders.
type SendFailure struct {
	Recipient string `bson:"recipient" json:"recipient"`
	Reason    string `bson:"reason" json:"reason"`
}

// SendCampaign is the queue payload for delivering one submitted campaign.
// Its qualified type name doubles as the task routing key, so the worker
// handler registers under "campaigns.SendCampaign" automatically.
type SendCampaign struct {
	CampaignID string `json:"campaignId"`
	UserID     string `json:"userId"`
}
