package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// MaxLineQuantity caps a single add-to-cart request.
const MaxLineQuantity = 50

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// AddForm is the raw add-to-cart input.
type AddForm struct {
	Variant  string
	Quantity string
}

// FormErrors maps form fields to messages.
type FormErrors map[string][]string

func (e FormErrors) add(field, msg string) { e[field] = append(e[field], msg) }

// Add validates form against p and puts the line into the session's cart.
// Validation problems come back as FormErrors with a nil error.
func (s *CartService) Add(ctx context.Context, sessionID string, p domain.Product, form AddForm) (FormErrors, error) {
	errs := FormErrors{}

	qty, err := strconv.Atoi(strings.TrimSpace(form.Quantity))
	switch {
	case strings.TrimSpace(form.Quantity) == "":
		qty = 1
	case err != nil:
		errs.add("quantity", "Enter a whole number.")
	case qty < 1:
		errs.add("quantity", "Ensure this value is greater than or equal to 1.")
	case qty > MaxLineQuantity:
		errs.add("quantity", fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxLineQuantity))
	}

	variants, err := s.Prods.Variants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	variant, ok := pickVariant(variants, strings.TrimSpace(form.Variant), errs)
	if !ok || len(errs) > 0 {
		return errs, nil
	}

	cartID, err := s.Carts.EnsureCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	inCart, err := s.Carts.Qty(ctx, cartID, variant.ID)
	if err != nil {
		return nil, err
	}
	if inCart+qty > variant.Quantity {
		remaining := variant.Quantity - inCart
		if remaining < 0 {
			remaining = 0
		}
		errs.add("quantity", fmt.Sprintf("Only %d remaining in stock.", remaining))
		return errs, nil
	}
	return nil, s.Carts.UpsertItem(ctx, cartID, variant.ID, qty, variant.Price(p))
}

func pickVariant(variants []domain.Variant, raw string, errs FormErrors) (domain.Variant, bool) {
	if len(variants) == 0 {
		errs.add("variant", "This product is not available.")
		return domain.Variant{}, false
	}
	if raw == "" {
		if len(variants) == 1 {
			return variants[0], true
		}
		errs.add("variant", "This field is required.")
		return domain.Variant{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		for _, v := range variants {
			if v.ID == id {
				return v, true
			}
		}
	}
	errs.add("variant", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", raw))
	return domain.Variant{}, false
}

type CartView struct {
	Items []repos.CartItemRow
	Total decimal.Decimal
}

func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	items, total, err := s.Carts.View(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Items: items, Total: total}, nil
}
