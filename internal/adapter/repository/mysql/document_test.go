package mysql

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	documentDomain "chitfund-backend/internal/domain/document"
	"chitfund-backend/internal/testutil/sqlitetest"
	"chitfund-backend/pkg/id"

	"gorm.io/datatypes"
)

func TestDocument_CreateListDelete(t *testing.T) {
	db := sqlitetest.Open(t)
	ctx := context.Background()
	repo := NewDocumentRepository(db)

	now := time.Now().UTC()
	docs := []*documentDomain.Document{
		{
			DocumentID:  id.NewID32(),
			SchemeRefID: 5,
			Kind:        documentDomain.KindFinalAgreement,
			Name:        "agreement.pdf",
			Size:        2048,
			ContentType: "application/pdf",
			Attributes:  datatypes.JSON(`{"pages":12}`),
			UploadedBy:  "FM-1",
			UploadedAt:  now,
		},
		{
			DocumentID:  id.NewID32(),
			SchemeRefID: 5,
			Kind:        documentDomain.KindCommencementCertificate,
			Name:        "form7.pdf",
			Reference:   "F7-001",
			UploadedBy:  "ADM-1",
			UploadedAt:  now.Add(time.Minute),
		},
	}
	for _, d := range docs {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListBySchemeRefID(ctx, 5)
	if err != nil {
		t.Fatalf("ListBySchemeRefID: %v", err)
	}
	if len(got) != 2 || got[0].Kind != documentDomain.KindFinalAgreement || got[1].Reference != "F7-001" {
		t.Fatalf("unexpected documents: %+v", got)
	}
	var attrs map[string]int
	if err := json.Unmarshal(got[0].Attributes, &attrs); err != nil || attrs["pages"] != 12 {
		t.Fatalf("attributes not round-tripped: %s (%v)", got[0].Attributes, err)
	}

	if err := repo.DeleteBySchemeRefID(ctx, 5); err != nil {
		t.Fatalf("DeleteBySchemeRefID: %v", err)
	}
	if got, _ := repo.ListBySchemeRefID(ctx, 5); len(got) != 0 {
		t.Fatalf("want no documents, got %d", len(got))
	}
}
