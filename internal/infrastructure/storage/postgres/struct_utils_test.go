package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

type testCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

type testDocument struct {
	entity.Document
	VendorName string      `db:"vendor_name" json:"vendorName"`
	Total      types.Money `db:"total_amount" json:"totalAmount"`
	Skipped    string      `db:"-" json:"skipped"`
	NoTag      string
}

func TestExtractDBColumns_Catalog(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	assert.Equal(t, []string{"id", "deletion_mark", "version", "code", "name"}, cols)
}

func TestExtractDBColumns_DocumentEmbedding(t *testing.T) {
	cols := ExtractDBColumns[testDocument]()

	for _, expected := range []string{
		"id", "deletion_mark", "version", "created_at", "updated_at",
		"invoice_number", "date", "notes", "vendor_name", "total_amount",
	} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "NoTag")
}

func TestExtractDBColumns_PointerType(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[testCatalog](), ExtractDBColumns[*testCatalog]())
}

func TestStructToMap(t *testing.T) {
	cat := testCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
		},
		Code: "SKU-1",
		Name: "Widget",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "SKU-1", m["code"])
	assert.Equal(t, "Widget", m["name"])
}

func TestStructToMap_SkipsUntaggedAndIgnored(t *testing.T) {
	doc := testDocument{
		Document:   entity.NewDocument("INV-1", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)),
		VendorName: "Acme",
		Total:      types.MustMoney("10"),
		Skipped:    "ignored",
		NoTag:      "ignored",
	}

	m := StructToMap(&doc)

	assert.Equal(t, "Acme", m["vendor_name"])
	assert.Equal(t, "INV-1", m["invoice_number"])
	assert.NotContains(t, m, "-")
	assert.NotContains(t, m, "Skipped")
	assert.NotContains(t, m, "NoTag")
}
