package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/form"
	"github.com/samber/lo"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

const (
	paramPage     = "page"
	paramSize     = "size"
	paramSort     = "sort"
	paramDistinct = "distinct"
)

type (
	pageParams struct {
		Page *int     `form:"page"`
		Size *int     `form:"size"`
		Sort []string `form:"sort"`
	}

	// requestBinder turns query parameters into a criteria and a page
	// request. Every problem is collected before anything is compiled.
	requestBinder struct {
		decoder         *form.Decoder
		defaultPageSize uint
		maxPageSize     uint
	}
)

func newRequestBinder(defaultPageSize, maxPageSize uint) requestBinder {
	if defaultPageSize == 0 {
		defaultPageSize = model.DefaultPageSize
	}

	if maxPageSize == 0 {
		maxPageSize = model.MaxPageSize
	}

	return requestBinder{
		decoder:         form.NewDecoder(),
		defaultPageSize: min(defaultPageSize, maxPageSize),
		maxPageSize:     maxPageSize,
	}
}

// bindCriteria reads "field.operator=value" parameters. Dotted keys must
// name a known field and an operator its kind supports; undotted keys other
// than distinct are left to the paging binder or ignored.
func (b requestBinder) bindCriteria(values url.Values) (*model.PersonCriteria, error) {
	criteria := model.NewPersonCriteria()
	errs := model.NewValidationErrors()

	keys := lo.Keys(values)
	slices.Sort(keys)

	for _, key := range keys {
		raw := values[key]

		if key == paramDistinct {
			distinct, err := strconv.ParseBool(strings.TrimSpace(raw[len(raw)-1]))
			if err != nil {
				errs.Add(key, fmt.Sprintf("invalid boolean %q", raw[len(raw)-1]), codeBadRequest)

				continue
			}

			criteria.SetDistinct(distinct)

			continue
		}

		name, op, dotted := strings.Cut(key, ".")
		if !dotted {
			continue
		}

		field, ok := model.LookupPersonField(name)
		if !ok {
			errs.Add(key, fmt.Sprintf("unknown filter field %q", name), codeBadRequest)

			continue
		}

		if err := field.Bind(criteria, model.FilterOperator(op), raw); err != nil {
			addBindingError(errs, key, err)
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return criteria, nil
}

// bindPage applies the default size when size is absent or below one and
// caps it at the maximum. Negative pages read as the first page; pages past
// the largest representable offset are rejected.
func (b requestBinder) bindPage(values url.Values) (model.PageRequest, error) {
	var params pageParams

	if err := b.decoder.Decode(&params, lo.PickByKeys(values, []string{paramPage, paramSize, paramSort})); err != nil {
		errs := model.NewValidationErrors()

		var decodeErrs form.DecodeErrors
		if errors.As(err, &decodeErrs) {
			keys := lo.Keys(decodeErrs)
			slices.Sort(keys)

			for _, key := range keys {
				errs.Add(key, "must be an integer", codeBadRequest)
			}
		} else {
			errs.Add("page", err.Error(), codeBadRequest)
		}

		return model.PageRequest{}, errs
	}

	page := model.PageRequest{Size: b.defaultPageSize}

	if params.Page != nil && *params.Page > 0 {
		page.Number = uint(*params.Page)
	}

	if params.Size != nil && *params.Size > 0 {
		page.Size = min(uint(*params.Size), b.maxPageSize)
	}

	if err := page.Validate(); err != nil {
		errs := model.NewValidationErrors()
		addBindingError(errs, paramPage, err)

		return model.PageRequest{}, errs
	}

	sorting, err := model.ParseSort(params.Sort)
	if err != nil {
		errs := model.NewValidationErrors()
		addBindingError(errs, paramSort, err)

		return model.PageRequest{}, errs
	}

	page.Sort = sorting

	return page, nil
}

func addBindingError(errs *model.ValidationErrors, key string, err error) {
	var bindingErr *model.BindingError
	if errors.As(err, &bindingErr) {
		errs.Add(bindingErr.Parameter, bindingErr.Error(), codeBadRequest)

		return
	}

	errs.Add(key, err.Error(), codeBadRequest)
}
