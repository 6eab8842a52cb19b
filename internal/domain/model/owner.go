package model

// Owner is the external record an order belongs to. It is owned by the owner service
// and only read here.
type Owner struct {
	ID       string
	LastName string
}
