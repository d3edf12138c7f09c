package handlers

import (
	"net/url"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/services"
	"storefront/internal/urls"
)

type productCard struct {
	domain.Product
	URL string
}

// listingView is what the shared listing partial renders.
type listingView struct {
	services.Listing
	Cards   []productCard
	Errors  map[string][]string
	PrevURL string
	NextURL string
}

func newListingView(l services.Listing, self string, params url.Values) listingView {
	v := listingView{Listing: l, Errors: l.FilterSet.Errors()}
	for _, p := range l.Products {
		v.Cards = append(v.Cards, productCard{Product: p, URL: urls.Product(p.Slug(), p.ID)})
	}
	if l.HasPrev() {
		v.PrevURL = pageURL(self, params, l.Page-1)
	}
	if l.HasNext() {
		v.NextURL = pageURL(self, params, l.Page+1)
	}
	return v
}

func pageURL(self string, params url.Values, page int) string {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("page", strconv.Itoa(page))
	return self + "?" + q.Encode()
}

// withQuery keeps the request's query string on a redirect target.
func withQuery(target string, raw []byte) string {
	if len(raw) == 0 {
		return target
	}
	return target + "?" + string(raw)
}
