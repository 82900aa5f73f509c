package enums

// OutboxEventType names the domain events relayed through the outbox.
type OutboxEventType string

const (
	EventOrderPlaced    OutboxEventType = "order.placed"
	EventOrderAdvanced  OutboxEventType = "order.advanced"
	EventOrderDelivered OutboxEventType = "order.delivered"
	EventOrderCanceled  OutboxEventType = "order.canceled"
	EventCartExpired    OutboxEventType = "cart.expired"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
	AggregateCart  OutboxAggregateType = "cart"
)

func (t OutboxEventType) String() string {
	return string(t)
}

func (t OutboxAggregateType) String() string {
	return string(t)
}
