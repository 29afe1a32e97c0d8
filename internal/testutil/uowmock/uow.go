package uowmock

import (
	"context"
	"errors"

	"chitfund-backend/internal/domain/scheme"
	"chitfund-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn       func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinSchemeTxFn func(ctx context.Context, schemeID string, fn func(r uow.Repos, s *scheme.Scheme) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinSchemeTx(fn func(context.Context, string, func(uow.Repos, *scheme.Scheme) error) error) *UoW {
	m.WithinSchemeTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough wires both methods to run fn directly against repos, with
// WithinSchemeTx loading the scheme through repos.Schemes.GetBySchemeIDForUpdate.
func Passthrough(repos uow.Repos) *UoW {
	return New().
		WithWithinTx(func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		}).
		WithWithinSchemeTx(func(ctx context.Context, schemeID string, fn func(uow.Repos, *scheme.Scheme) error) error {
			s, err := repos.Schemes.GetBySchemeIDForUpdate(ctx, schemeID)
			if err != nil {
				return err
			}
			return fn(repos, s)
		})
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinSchemeTx(ctx context.Context, schemeID string, fn func(r uow.Repos, s *scheme.Scheme) error) error {
	if m.WithinSchemeTxFn != nil {
		return m.WithinSchemeTxFn(ctx, schemeID, fn)
	}
	return errUnimplemented
}
