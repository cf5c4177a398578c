package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCategory(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		wantCat  string
		wantDesc string
	}{
		{
			name:     "tagged description",
			encoded:  "[#Groceries] weekly shop",
			wantCat:  "Groceries",
			wantDesc: "weekly shop",
		},
		{
			name:     "tag only",
			encoded:  "[#Rent]",
			wantCat:  "Rent",
			wantDesc: "",
		},
		{
			name:     "no tag",
			encoded:  "weekly shop",
			wantCat:  "",
			wantDesc: "weekly shop",
		},
		{
			name:     "leading whitespace before tag",
			encoded:  "  [#Fuel] petrol",
			wantCat:  "Fuel",
			wantDesc: "petrol",
		},
		{
			name:     "bracket without hash is not a tag",
			encoded:  "[Groceries] weekly shop",
			wantCat:  "",
			wantDesc: "[Groceries] weekly shop",
		},
		{
			name:     "empty string",
			encoded:  "",
			wantCat:  "",
			wantDesc: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, desc := DecodeCategory(tt.encoded)
			assert.Equal(t, tt.wantCat, cat)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		category    string
		description string
	}{
		{"Groceries", "weekly shop"},
		{"Food & Dining", "lunch with team"},
		{"", "untagged entry"},
		{"Rent", ""},
	}

	for _, tt := range tests {
		encoded := EncodeCategory(tt.category, tt.description)
		cat, desc := DecodeCategory(encoded)
		assert.Equal(t, tt.category, cat, "category round trip for %q", encoded)
		assert.Equal(t, tt.description, desc, "description round trip for %q", encoded)
	}
}

func TestTransactionCategoryHelpers(t *testing.T) {
	txn := Transaction{Description: "[#Travel] bus fare"}
	assert.Equal(t, "Travel", txn.Category())
	assert.Equal(t, "bus fare", txn.DisplayDescription())

	plain := Transaction{Description: "bus fare"}
	assert.Equal(t, "", plain.Category())
	assert.Equal(t, "bus fare", plain.DisplayDescription())
}
