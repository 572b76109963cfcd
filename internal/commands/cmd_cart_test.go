package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	got, err := parseVariant([]string{"size=M", " color = black "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"size": "M", "color": "black"}, got)

	got, err = parseVariant(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseVariant([]string{"size"})
	assert.ErrorContains(t, err, "expected key=value")

	_, err = parseVariant([]string{"=M"})
	assert.Error(t, err)
}

func TestFormatVariant(t *testing.T) {
	assert.Equal(t, "-", formatVariant(nil))
	assert.Equal(t, "color=black,size=M", formatVariant(map[string]string{"size": "M", "color": "black"}))
}

func TestCartProduct(t *testing.T) {
	cmd := &CartCmd{name: "Lamp", price: "49.99", salePrice: "39.50"}

	p, err := cmd.product("p1")
	require.NoError(t, err)
	assert.Equal(t, "49.99", p.Price.String())
	require.NotNil(t, p.SalePrice)
	assert.Equal(t, "39.5", p.SalePrice.String())

	cmd.price = "abc"
	_, err = cmd.product("p1")
	assert.ErrorContains(t, err, "invalid --price")

	cmd.price = "-1"
	_, err = cmd.product("p1")
	assert.Error(t, err)
}
