package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressSnapshotScanRoundTrip(t *testing.T) {
	line2 := "Building 4"
	addr := AddressSnapshot{
		FullName:     "Lina Haddad",
		Phone:        "+962790000000",
		Country:      "Jordan",
		City:         "Amman",
		AddressLine1: "Rainbow St 12",
		AddressLine2: &line2,
	}

	value, err := addr.Value()
	require.NoError(t, err)

	var decoded AddressSnapshot
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, addr, decoded)
}

func TestAddressSnapshotValidate(t *testing.T) {
	addr := AddressSnapshot{FullName: "A", Phone: "1", Country: "DZ", City: "Oran"}
	err := addr.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "addressLine1")

	addr.AddressLine1 = "Street 1"
	require.NoError(t, addr.Validate())
}

func TestAddressSnapshotNormalize(t *testing.T) {
	line2 := "  apt 2 "
	addr := AddressSnapshot{FullName: " Amine ", City: " Algiers ", AddressLine2: &line2}
	addr.Normalize()
	assert.Equal(t, "Amine", addr.FullName)
	assert.Equal(t, "Algiers", addr.City)
	assert.Equal(t, "apt 2", *addr.AddressLine2)
}

func TestPurchaseDetailsIsAssisted(t *testing.T) {
	var nilDetails *PurchaseDetails
	assert.False(t, nilDetails.IsAssisted())
	assert.False(t, (&PurchaseDetails{ShippingMethod: "air"}).IsAssisted())
	assert.True(t, (&PurchaseDetails{PurchasePlatform: "Temu"}).IsAssisted())
}

func TestPurchaseDetailsScanNil(t *testing.T) {
	details := PurchaseDetails{PurchasePlatform: "Shein"}
	require.NoError(t, details.Scan(nil))
	assert.Empty(t, details.PurchasePlatform)
}

func TestScanAcceptsBytesAndRejectsOtherTypes(t *testing.T) {
	var details PurchaseDetails
	require.NoError(t, details.Scan([]byte(`{"purchasePlatform":"AliExpress"}`)))
	assert.Equal(t, "AliExpress", details.PurchasePlatform)

	var addr AddressSnapshot
	err := addr.Scan(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address snapshot")
}
