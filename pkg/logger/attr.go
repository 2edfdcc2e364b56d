package logger

import "log/slog"

// Error records a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID records a request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

// ConversationID records a conversation identifier under the key "conversation_id".
func ConversationID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("conversation_id", id)
}

// TemplateID records a template identifier under the key "template_id".
func TemplateID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("template_id", id)
}

// CampaignID records a campaign identifier under the key "campaign_id".
func CampaignID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("campaign_id", id)
}

// Attempt records a 1-based attempt number under the key "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
