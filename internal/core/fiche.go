package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyFiche       = errors.New("fiche has no content")
	ErrInvalidFicheDate = errors.New("fiche date not recognised")
)

// FicheEntry is one free-text trading analysis record.
type FicheEntry struct {
	Date      string `json:"date"`
	Propos    string `json:"propos"`
	Hypothese string `json:"hypothese"`
	Procedure string `json:"procedure"`
	Constat   string `json:"constat"`
}

func (f FicheEntry) Validate() error {
	if strings.TrimSpace(f.Date) == "" {
		return ErrMissingDate
	}
	if _, ok := ParseFicheDate(f.Date); !ok {
		return fmt.Errorf("%q: %w", f.Date, ErrInvalidFicheDate)
	}
	if strings.TrimSpace(f.Propos+f.Hypothese+f.Procedure+f.Constat) == "" {
		return ErrEmptyFiche
	}
	return nil
}
