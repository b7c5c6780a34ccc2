package bus

import "github.com/wagoodman/go-partybus"

var publisher partybus.Publisher
var active bool

func SetPublisher(p partybus.Publisher) {
	publisher = p
	active = p != nil
}

func Publish(event partybus.Event) {
	if active {
		publisher.Publish(event)
	}
}
