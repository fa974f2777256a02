package hh

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// hh.ru never returns more than this many results for a single search.
const maxSearchDepth = 2000

var ErrTooDeepPagination = errors.New("too deep pagination")

type SearchParameters struct {
	Text           string
	AreaID         string
	Page           int
	PerPage        int
	OnlyWithSalary bool
}

func (s SearchParameters) Validate() error {

	if s.Page < 0 {
		return fmt.Errorf("page must be non-negative")
	}

	if s.PerPage <= 0 || s.PerPage > 100 {
		return fmt.Errorf("per page must be between 1 and 100")
	}

	maxPage := maxSearchDepth / s.PerPage
	if s.Page >= maxPage {
		return ErrTooDeepPagination
	}

	return nil
}

func (s SearchParameters) ToUrlParams() url.Values {

	params := url.Values{}
	params.Add("text", s.Text)

	if s.AreaID != "" {
		params.Add("area", s.AreaID)
	}

	params.Add("per_page", strconv.Itoa(s.PerPage))
	params.Add("page", strconv.Itoa(s.Page))
	params.Add("only_with_salary", strconv.FormatBool(s.OnlyWithSalary))

	return params
}
