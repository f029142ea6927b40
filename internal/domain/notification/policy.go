package notification

// Booking lifecycle events that produce notifications.
const (
	EventBookingCreated   = "booking.created"
	EventBookingAccepted  = "booking.accepted"
	EventBookingRejected  = "booking.rejected"
	EventBookingOnMyWay   = "booking.on_my_way"
	EventBookingArrived   = "booking.arrived"
	EventBookingCompleted = "booking.completed"
)

// Importance classifies how urgently an event should reach the recipient.
type Importance int

const (
	ImportanceNormal Importance = iota
	ImportanceHigh
)

// Recipient is the booking party an event is addressed to.
type Recipient string

const (
	RecipientClient   Recipient = "client"
	RecipientProvider Recipient = "provider"
)

// SecondaryCondition decides whether the secondary channel is attempted.
type SecondaryCondition int

const (
	SecondaryNever SecondaryCondition = iota
	// SecondaryIfHighImportance attempts the secondary channel for high importance events.
	SecondaryIfHighImportance
	// SecondaryIfPreferred attempts it for high importance events the recipient opted into receiving there.
	SecondaryIfPreferred
)

// Policy is the routing rule for one event.
type Policy struct {
	Recipient  Recipient
	Importance Importance
	Primary    Channel
	Secondary  Channel
	Condition  SecondaryCondition
}

var policies = map[string]Policy{
	EventBookingCreated: {
		Recipient: RecipientProvider, Importance: ImportanceHigh,
		Primary: ChannelPush, Secondary: ChannelWhatsApp, Condition: SecondaryIfHighImportance,
	},
	EventBookingAccepted: {
		Recipient: RecipientClient, Importance: ImportanceHigh,
		Primary: ChannelEmail, Secondary: ChannelWhatsApp, Condition: SecondaryIfPreferred,
	},
	EventBookingRejected: {
		Recipient: RecipientClient, Importance: ImportanceHigh,
		Primary: ChannelEmail, Secondary: ChannelWhatsApp, Condition: SecondaryIfPreferred,
	},
	EventBookingOnMyWay: {
		Recipient: RecipientClient, Importance: ImportanceHigh,
		Primary: ChannelEmail, Secondary: ChannelWhatsApp, Condition: SecondaryIfPreferred,
	},
	EventBookingArrived: {
		Recipient: RecipientClient, Importance: ImportanceNormal,
		Primary: ChannelEmail, Secondary: ChannelWhatsApp, Condition: SecondaryIfPreferred,
	},
	EventBookingCompleted: {
		Recipient: RecipientClient, Importance: ImportanceNormal,
		Primary: ChannelEmail, Condition: SecondaryNever,
	},
}

// PolicyFor returns the routing rule for event.
func PolicyFor(event string) (Policy, bool) {
	p, ok := policies[event]
	return p, ok
}

// Channels returns the channels to attempt, primary first. preferred is the recipient's
// preferred secondary channel, empty when unknown.
func (p Policy) Channels(preferred Channel) []Channel {
	channels := []Channel{p.Primary}
	if p.Secondary == "" || p.Secondary == p.Primary {
		return channels
	}

	var attempt bool
	switch p.Condition {
	case SecondaryIfHighImportance:
		attempt = p.Importance == ImportanceHigh
	case SecondaryIfPreferred:
		attempt = p.Importance == ImportanceHigh && preferred == p.Secondary
	}
	if attempt {
		channels = append(channels, p.Secondary)
	}
	return channels
}
