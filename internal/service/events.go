package service

// Ledger events published after a successful commit
const (
	EventInvoiceCreated  = "invoice.created"
	EventInvoiceDeleted  = "invoice.deleted"
	EventCustomerPayment = "customer.payment"
	EventStockLow        = "stock.low"
)

// Notifier fans committed ledger events out to listeners. Publish must not block.
type Notifier interface {
	Publish(event string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, interface{}) {}

// NoopNotifier discards every event.
func NoopNotifier() Notifier {
	return noopNotifier{}
}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
