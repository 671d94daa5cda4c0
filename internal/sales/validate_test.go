package sales

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tripbook/internal/shared"
)

func TestValidateDraftFieldRules(t *testing.T) {
	v := shared.NewValidator()
	err := ValidateDraft(v, newFakeLedger(kopi()), Draft{Items: []LineItem{{ProductID: "kopi", UnitType: "crate"}}}, nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	fields := shared.FieldErrors(err)
	require.Equal(t, "is required", fields["store"])
	require.Equal(t, "must be greater than 0", fields["items[0].qtySold"])
	require.Equal(t, "must be one of: dozens sack", fields["items[0].unitType"])
	require.Equal(t, "must be greater than 0", fields["items[0].amountSold"])
}

func TestValidateDraftRequiresItems(t *testing.T) {
	v := shared.NewValidator()
	err := ValidateDraft(v, newFakeLedger(), Draft{Store: "Toko"}, nil)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, shared.FieldErrors(err), "items")
}

func TestValidateDraftReferencesAndStock(t *testing.T) {
	v := shared.NewValidator()
	stock := newFakeLedger(kopi(), gula())

	err := ValidateDraft(v, stock, Draft{Store: "Toko", Items: []LineItem{
		dozensItem("kopi", 30, 2000),
		dozensItem("kopi", 1, 2000),
		dozensItem("ghost", 1, 2000),
		sackItem("gula", 5, 18000),
	}}, nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	fields := shared.FieldErrors(err)
	require.Equal(t, "exceeds available stock (25)", fields["items[0].qtySold"])
	require.Equal(t, "duplicates item 0", fields["items[1].id"])
	require.Equal(t, "does not match a product", fields["items[2].id"])
	require.NotContains(t, fields, "items[3].qtySold")
}

func TestValidateDraftCountsOriginalSaleAsReturned(t *testing.T) {
	v := shared.NewValidator()
	stock := newFakeLedger(kopi())
	proc := newTestProcessor(stock, ProcessorConfig{})

	sale, err := proc.Add(Draft{Store: "Toko", Items: []LineItem{dozensItem("kopi", 20, 2000)}})
	require.NoError(t, err)

	revised := Draft{Store: "Toko", Items: []LineItem{dozensItem("kopi", 22, 2000)}}
	require.Error(t, ValidateDraft(v, stock, revised, nil))
	require.NoError(t, ValidateDraft(v, stock, revised, &sale))
	require.InDelta(t, 5, stock.products["kopi"].QtyDozens, 0.0001)
}
