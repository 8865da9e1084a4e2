package enums

// OutboxEventType identifies domain events persisted via the outbox.
type OutboxEventType string

const (
	OutboxEventOrderPlaced       OutboxEventType = "order.placed"
	OutboxEventCartUpdated       OutboxEventType = "cart.updated"
	OutboxEventCommissionAccrued OutboxEventType = "affiliate.commission_accrued"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateOrder OutboxAggregateType = "order"
	OutboxAggregateCart  OutboxAggregateType = "cart"
)
