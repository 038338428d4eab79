package model

import "context"

// Session carries the chat context a purchase originated from. It is passed
// through to the fulfillment callback untouched; the market itself only reads
// the user fields for logging.
type Session struct {
	UserID    string
	Username  string
	Platform  string
	ChannelID string
}

// PurchaseCallback delivers a purchased good. It runs after points have been
// deducted; a non-ok Feedback triggers a ledger rollback.
type PurchaseCallback func(ctx context.Context, session *Session) Feedback

// Feedback is the tagged result of a fulfillment callback. Construct it with
// FeedbackOk, FeedbackFailed or FeedbackCode.
type Feedback struct {
	ok   bool
	code int
	msg  string
}

// FeedbackOk reports successful fulfillment.
func FeedbackOk() Feedback {
	return Feedback{ok: true}
}

// FeedbackFailed reports failed fulfillment with a user-facing message.
func FeedbackFailed(msg string) Feedback {
	return Feedback{msg: msg}
}

// FeedbackCode reports fulfillment with a plugin status code; zero means
// success, anything else is a failure described by msg.
func FeedbackCode(code int, msg string) Feedback {
	return Feedback{ok: code == 0, code: code, msg: msg}
}

// Ok reports whether fulfillment succeeded.
func (f Feedback) Ok() bool { return f.ok }

// Code returns the plugin status code (zero unless set via FeedbackCode).
func (f Feedback) Code() int { return f.code }

// Message returns the user-facing message, empty on success.
func (f Feedback) Message() string { return f.msg }

// RegisterOptions describes an item a plugin wants to sell.
type RegisterOptions struct {
	Name        string
	Description string
	Price       int64
	Image       string
	Tags        []string
	// Stock is the initial stock for a brand-new row; nil means 0.
	// Ignored on re-registration, where admin-set stock is kept.
	Stock      *int64
	OnPurchase PurchaseCallback
}

// PurchaseResult is the structured outcome of a purchase attempt. Failures
// are reported here, never as errors.
type PurchaseResult struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Item          *MarketItem `json:"item,omitempty"`
}
