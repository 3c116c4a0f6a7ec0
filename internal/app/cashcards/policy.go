package cashcards

import "cashcards/internal/domain"

// AccessPolicy decides what a caller may observe about a card.
//
// A card that does not exist and a card owned by someone else produce the same
// domain.ErrCashCardNotFound, so callers cannot probe for other owners' ids.
// Ownership is strict: no identity other than the owner sees the card.
type AccessPolicy struct{}

func (AccessPolicy) owns(caller string, card *domain.CashCard) bool {
	return caller != "" && card != nil && card.Owner == caller
}

// Read returns card when caller owns it.
func (p AccessPolicy) Read(caller string, card *domain.CashCard) (*domain.CashCard, error) {
	if !p.owns(caller, card) {
		return nil, domain.ErrCashCardNotFound
	}
	return card, nil
}

// AuthorizeMutation allows an update of card by caller.
func (p AccessPolicy) AuthorizeMutation(caller string, card *domain.CashCard) error {
	if !p.owns(caller, card) {
		return domain.ErrCashCardNotFound
	}
	return nil
}

// AuthorizeDelete turns an owner-scoped existence check into a decision.
func (AccessPolicy) AuthorizeDelete(caller string, owned bool) error {
	if caller == "" || !owned {
		return domain.ErrCashCardNotFound
	}
	return nil
}
