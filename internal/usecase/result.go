package usecase

import "github.com/HannahHaeusler/labor/internal/domain/model"

// CreateResult is the outcome of OrderUseCase.Create. It is either Created or
// ConstraintViolations; callers switch on the concrete type.
type CreateResult interface {
	createResult()
}

// Created carries the persisted order with its id, version and timestamps.
type Created struct {
	Order *model.Order
}

// ConstraintViolations lists every failed constraint, in field order.
type ConstraintViolations struct {
	Violations []model.Violation
}

func (Created) createResult()              {}
func (ConstraintViolations) createResult() {}
