package uowmock

import (
	"context"
	"errors"
	"testing"

	"chitfund-backend/internal/domain/scheme"
	"chitfund-backend/internal/domain/uow"
	"chitfund-backend/internal/testutil/schememock"
	"chitfund-backend/internal/testutil/subscribermock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	schemes := &schememock.Repo{}
	subs := &subscribermock.Repo{}
	repos := uow.Repos{Schemes: schemes, Subscribers: subs}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			if fn == nil {
				t.Fatalf("WithinTx: fn is nil")
			}
			// simulate transaction body
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Schemes != schemes || r.Subscribers != subs {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("boom")

	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error {
			return sentinel
		},
	}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{} // no funcs set
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinSchemeTx(ctx, "SCH-X", func(uow.Repos, *scheme.Scheme) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinSchemeTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_WithinSchemeTx_Happy(t *testing.T) {
	ctx := context.Background()

	schemes := &schememock.Repo{}
	repos := uow.Repos{Schemes: schemes}
	lock := &scheme.Scheme{ID: 7, SchemeID: "SCH-7"}

	m := &UoW{
		WithinSchemeTxFn: func(gotCtx context.Context, schemeID string, fn func(r uow.Repos, s *scheme.Scheme) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinSchemeTx: ctx mismatch")
			}
			if schemeID != "SCH-7" {
				t.Fatalf("WithinSchemeTx: schemeID mismatch, got %s", schemeID)
			}
			return fn(repos, lock)
		},
	}

	innerCalled := false
	err := m.WithinSchemeTx(ctx, "SCH-7", func(r uow.Repos, s *scheme.Scheme) error {
		innerCalled = true
		if r.Schemes != schemes {
			t.Fatalf("WithinSchemeTx: repos not forwarded")
		}
		if s != lock {
			t.Fatalf("WithinSchemeTx: scheme not forwarded correctly: %+v", s)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinSchemeTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinSchemeTx: inner fn not called")
	}
}

func TestPassthrough(t *testing.T) {
	ctx := context.Background()
	want := &scheme.Scheme{SchemeID: "SCH-P"}
	repos := uow.Repos{Schemes: &schememock.Repo{
		GetBySchemeIDForUpdateFn: func(_ context.Context, schemeID string) (*scheme.Scheme, error) {
			if schemeID != "SCH-P" {
				return nil, errors.New("unknown")
			}
			return want, nil
		},
	}}
	m := Passthrough(repos)

	var got *scheme.Scheme
	if err := m.WithinSchemeTx(ctx, "SCH-P", func(_ uow.Repos, s *scheme.Scheme) error {
		got = s
		return nil
	}); err != nil {
		t.Fatalf("WithinSchemeTx: %v", err)
	}
	if got != want {
		t.Fatalf("Passthrough did not load the scheme")
	}
	if err := m.WithinSchemeTx(ctx, "SCH-Q", func(uow.Repos, *scheme.Scheme) error {
		t.Fatalf("fn must not run when load fails")
		return nil
	}); err == nil {
		t.Fatalf("expected load error")
	}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinSchemeTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}

	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinSchemeTx(func(context.Context, string, func(uow.Repos, *scheme.Scheme) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinSchemeTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}

	m.Reset()
	if m.WithinTxFn != nil || m.WithinSchemeTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
