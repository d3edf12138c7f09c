// Package urls builds the canonical storefront paths.
package urls

import "fmt"

const Cart = "/cart"

func Category(path string, id int64) string { return fmt.Sprintf("/category/%s/%d/", path, id) }

func Brand(path string, id int64) string { return fmt.Sprintf("/brand/%s/%d/", path, id) }

func Collection(slug string, id int64) string { return fmt.Sprintf("/collection/%s/%d/", slug, id) }

func Product(slug string, id int64) string { return fmt.Sprintf("/product/%s/%d/", slug, id) }

func AddToCart(slug string, id int64) string {
	return fmt.Sprintf("/product/%s/%d/add-to-cart", slug, id)
}
