package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockbook/internal/core/entity"
	"stockbook/internal/domain/catalogs/product"
)

func TestExtractDBColumnsWalksEmbedded(t *testing.T) {
	cols := ExtractDBColumns[product.Product]()

	expected := []string{
		"id", "deletion_mark", "version", "created_at", "updated_at",
		"code", "name", "active", "unit", "min_stock", "max_stock",
	}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
}

func TestStructToMapUsesDBTags(t *testing.T) {
	p := product.NewProduct("P-001", "Cardboard box")
	p.Unit = "pcs"
	p.MinStock = 10
	p.Version = 5
	p.DeletionMark = true

	m := StructToMap(p)

	assert.Equal(t, p.ID, m["id"])
	assert.Equal(t, "P-001", m["code"])
	assert.Equal(t, "Cardboard box", m["name"])
	assert.Equal(t, "pcs", m["unit"])
	assert.Equal(t, int64(10), m["min_stock"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, true, m["deletion_mark"])
}

func TestStructToMapNonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("text"))
}

func TestExtractDBColumnsMatchesStructToMapKeys(t *testing.T) {
	cols := ExtractDBColumns[entity.Catalog]()
	m := StructToMap(entity.NewCatalog("C-1", "Catalog"))

	assert.Equal(t, len(cols), len(m))
	for _, col := range cols {
		assert.Contains(t, m, col)
	}
}
