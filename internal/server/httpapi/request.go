package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", common.ErrorInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", common.ErrorInvalidInput, chi.URLParam(r, "id"))
	}
	return id, nil
}

// queryParser collects the first parse error so handlers can read several
// parameters and check once.
type queryParser struct {
	q   url.Values
	err error
}

func (p *queryParser) fail(name string, v string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: bad %s %q", common.ErrorInvalidInput, name, v)
	}
}

func (p *queryParser) int(name string) *int {
	v := p.q.Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v)
		return nil
	}
	return &n
}

func (p *queryParser) decimal(name string) *decimal.Decimal {
	v := p.q.Get(name)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(name, v)
		return nil
	}
	return &d
}

func (p *queryParser) currency(name string) *models.Currency {
	v := p.q.Get(name)
	if v == "" {
		return nil
	}
	c := models.Currency(v)
	switch c {
	case models.CurrencyBTC, models.CurrencyETH, models.CurrencyUSDC:
		return &c
	}
	p.fail(name, v)
	return nil
}

func (p *queryParser) page() models.Page {
	var page models.Page
	if n := p.int("skip"); n != nil {
		page.Skip = *n
	}
	if n := p.int("limit"); n != nil {
		page.Limit = *n
		page.LimitSet = true
	}
	return page
}
