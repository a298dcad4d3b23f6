package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

const (
	totalCountHeader = "X-Total-Count"
	linkHeader       = "Link"
)

// setPaginationHeaders writes X-Total-Count and a Link header with next,
// prev, last and first relations built from the request URL.
func setPaginationHeaders[T any](w http.ResponseWriter, r *http.Request, page model.Page[T]) {
	w.Header().Set(totalCountHeader, strconv.FormatInt(page.TotalElements, 10))

	if page.Size == 0 {
		return
	}

	lastPage := max(page.TotalPages()-1, 0)

	links := make([]string, 0, 4)

	if page.HasNext() {
		links = append(links, pageLink(r.URL, page.Number+1, page.Size, "next"))
	}

	if page.HasPrevious() {
		links = append(links, pageLink(r.URL, page.Number-1, page.Size, "prev"))
	}

	links = append(links,
		pageLink(r.URL, uint(lastPage), page.Size, "last"),
		pageLink(r.URL, 0, page.Size, "first"),
	)

	w.Header().Set(linkHeader, strings.Join(links, ","))
}

func pageLink(current *url.URL, number, size uint, rel string) string {
	query := current.Query()
	query.Set(paramPage, strconv.FormatUint(uint64(number), 10))
	query.Set(paramSize, strconv.FormatUint(uint64(size), 10))

	target := url.URL{Path: current.Path, RawQuery: query.Encode()}

	return fmt.Sprintf("<%s>; rel=%q", target.String(), rel)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
