package domain

import "strings"

// productGIDPrefix is the Shopify global ID prefix for products. Storefront
// widgets submit bare numeric IDs while webhooks and the Admin API use the
// gid:// form; both refer to the same product.
const productGIDPrefix = "gid://shopify/Product/"

// NumericProductID strips the Shopify global ID prefix, returning the bare
// numeric ID. Bare IDs pass through unchanged.
func NumericProductID(id string) string {
	return strings.TrimPrefix(id, productGIDPrefix)
}

// ProductGID returns the gid:// form of a product ID. IDs already in gid form
// pass through unchanged.
func ProductGID(id string) string {
	if strings.HasPrefix(id, productGIDPrefix) {
		return id
	}
	return productGIDPrefix + id
}

// ProductIDForms returns both representations of a product ID. Every query
// and deletion that matches on product must use both, since stored rows may
// carry either form.
func ProductIDForms(id string) (bare string, gid string) {
	return NumericProductID(id), ProductGID(id)
}
