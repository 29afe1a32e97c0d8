package subscribermock

import (
	"context"
	"errors"
	"testing"

	domain "chitfund-backend/internal/domain/subscriber"
)

func TestRepo_UsesFuncs(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("boom")
	var gotBatch []domain.Subscriber

	m := &Repo{
		CreateBatchFn: func(_ context.Context, subs []domain.Subscriber) error {
			gotBatch = subs
			return wantErr
		},
		ListBySchemeRefIDFn: func(_ context.Context, ref uint64) ([]domain.Subscriber, error) {
			return []domain.Subscriber{{SchemeRefID: ref, TicketNumber: 1}}, nil
		},
		DeleteBySchemeRefIDFn: func(_ context.Context, ref uint64) error {
			if ref != 7 {
				t.Fatalf("DeleteBySchemeRefID ref mismatch: %d", ref)
			}
			return nil
		},
	}
	batch := []domain.Subscriber{{TicketNumber: 2}}
	if err := m.CreateBatch(ctx, batch); !errors.Is(err, wantErr) {
		t.Fatalf("CreateBatch: want %v, got %v", wantErr, err)
	}
	if len(gotBatch) != 1 || gotBatch[0].TicketNumber != 2 {
		t.Fatalf("CreateBatch arg mismatch: %+v", gotBatch)
	}
	if got, err := m.ListBySchemeRefID(ctx, 7); err != nil || len(got) != 1 || got[0].SchemeRefID != 7 {
		t.Fatalf("ListBySchemeRefID: got %+v, %v", got, err)
	}
	if err := m.DeleteBySchemeRefID(ctx, 7); err != nil {
		t.Fatalf("DeleteBySchemeRefID: %v", err)
	}
}

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if err := m.CreateBatch(ctx, nil); err != nil {
		t.Fatalf("CreateBatch default: want nil, got %v", err)
	}
	if got, err := m.ListBySchemeRefID(ctx, 1); err != nil || len(got) != 0 {
		t.Fatalf("ListBySchemeRefID default: got %+v, %v", got, err)
	}
	if err := m.DeleteBySchemeRefID(ctx, 1); err != nil {
		t.Fatalf("DeleteBySchemeRefID default: want nil, got %v", err)
	}
}
