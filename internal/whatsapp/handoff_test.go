package whatsapp

import (
	"net/url"
	"strings"
	"testing"

	"github.com/sakuraessence/storefront/internal/cart"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLEncodesMessage(t *testing.T) {
	link := URL("34742083046", "Total : 550 MAD\n💖")
	assert.True(t, strings.HasPrefix(link, "https://wa.me/34742083046?text="))
	assert.NotContains(t, link, "\n")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Total : 550 MAD\n💖", parsed.Query().Get("text"))
}

func TestCartMessage(t *testing.T) {
	items := []cart.LineItem{
		{Name: "Oud Impérial", Variant: domain.VolumeVariant(50), UnitPrice: 200, Quantity: 2},
		{Name: "Coffret Rituel", Variant: domain.SizeVariant("M"), UnitPrice: 150, Quantity: 1},
	}

	msg := CartMessage("Sakura Essence", "MAD", items, "Nadia", "0600000000", "n@x.com")

	assert.Contains(t, msg, "*Nouvelle commande Sakura Essence*")
	assert.Contains(t, msg, "- Oud Impérial (50ml) x2 → 400 MAD")
	assert.Contains(t, msg, "- Coffret Rituel (M) x1 → 150 MAD")
	assert.Contains(t, msg, "*Total :* 550 MAD")
	assert.Contains(t, msg, "*Nom :* Nadia")
	assert.Contains(t, msg, "*Email :* n@x.com")
	assert.Contains(t, msg, "*Téléphone :* 0600000000")
}

func TestCartMessagePlaceholders(t *testing.T) {
	msg := CartMessage("Sakura Essence", "MAD", nil, "", "", "")
	assert.Contains(t, msg, "*Nom :* —")
	assert.Contains(t, msg, "*Email :* —")
	assert.Contains(t, msg, "*Téléphone :* —")
}
