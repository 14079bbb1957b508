package kafka

const (
	TopicNotifyOffer    = "waitlist.notify.offer"
	TopicNotifyOutcome  = "waitlist.notify.outcome"
	TopicNotifyPosition = "waitlist.notify.position"

	TopicWaitlistJoined = "waitlist.joined"
	TopicWaitlistLeft   = "waitlist.left"

	TopicOfferReply = "waitlist.offer.reply"
)
