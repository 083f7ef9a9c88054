package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"lowercases and trims", "  Jane@X.COM ", "jane@x.com", true},
		{"already canonical", "jane@x.com", "jane@x.com", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"missing at sign", "janex.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Email(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"formatted", "(614) 555-0100", "6145550100", true},
		{"country code prefix", "16145550100", "6145550100", true},
		{"plus country code", "+1 614 555 0100", "6145550100", true},
		{"bare ten digits", "6145550100", "6145550100", true},
		{"too short", "555-0100", "", false},
		{"eleven digits no leading one", "26145550100", "", false},
		{"empty", "", "", false},
		{"letters only", "call me", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Phone(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name   string
		street string
		zip    string
		want   string
		ok     bool
	}{
		{"suffix word collapses", "123 Main Street", "44903", "123 MAIN ST|44903", true},
		{"suffix abbrev collapses", "123 MAIN ST.", "44903", "123 MAIN ST|44903", true},
		{"avenue to av", "55 Park Avenue", "43065", "55 PARK AV|43065", true},
		{"ave to av", "55 PARK AVE", "43065", "55 PARK AV|43065", true},
		{"directional word", "10 North High Street", "43215", "10 N HIGH ST|43215", true},
		{"zip plus four trimmed to prefix", "123 Main St", "44903-1234", "123 MAIN ST|44903", true},
		{"comma and unit marker", "9 Oak Dr, #4", "45701", "9 OAK DR 4|45701", true},
		{"missing street", "", "44903", "", false},
		{"missing zip", "123 Main St", "", "", false},
		{"short zip", "123 Main St", "4490", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Address(tt.street, tt.zip)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Variant spellings of the same physical address must normalize to one key;
// the address index depends on it.
func TestAddressVariantsConverge(t *testing.T) {
	a, ok := Address("123 North Main Street", "44903")
	require.True(t, ok)
	b, ok := Address("123 N MAIN ST", "44903-9998")
	require.True(t, ok)
	assert.Equal(t, a, b)
}

// Normalizing an already-normalized value must be a no-op for every
// normalizer, so keys can be re-normalized safely at any boundary.
func TestIdempotence(t *testing.T) {
	email, ok := Email("Jane.Doe@Example.COM")
	require.True(t, ok)
	again, ok := Email(email)
	require.True(t, ok)
	assert.Equal(t, email, again)

	phone, ok := Phone("(614) 555-0100")
	require.True(t, ok)
	again, ok = Phone(phone)
	require.True(t, ok)
	assert.Equal(t, phone, again)

	addr, ok := Address("123 North Main Street", "44903")
	require.True(t, ok)
	street, zip, found := cutKey(addr)
	require.True(t, found)
	again, ok = Address(street, zip)
	require.True(t, ok)
	assert.Equal(t, addr, again)
}

func cutKey(key string) (street, zip string, ok bool) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '|' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}

func TestZip5(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain", "44903", "44903", true},
		{"zip plus four", "44903-1234", "44903", true},
		{"trailing noise", "44903 OH", "44903", true},
		{"padded", "  43065 ", "43065", true},
		{"too short", "4490", "", false},
		{"sentinel", "-1", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Zip5(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
