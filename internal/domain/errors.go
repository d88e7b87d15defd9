package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrFlashCardNotFound indicates an unknown flash card id.
	ErrFlashCardNotFound = errors.New("flash card not found")
	// ErrQuizNotFound indicates an unknown quiz id.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizBankNotFound indicates the quiz bank has no entry for the id.
	ErrQuizBankNotFound = errors.New("quiz bank entry not found")
	// ErrNoLetter is returned when editing or exporting before a letter exists.
	ErrNoLetter = errors.New("no letter to work with")
	// ErrEmptyWishlist is returned when recommendations are requested with nothing wishlisted.
	ErrEmptyWishlist = errors.New("wishlist is empty")
	// ErrCatalogUnavailable means every catalog call failed; distinct from a true miss.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrNoMatch means the catalog answered but holds no item at all.
	ErrNoMatch = errors.New("no matching product")
)
