package page

import (
	"net/url"
	"strconv"
)

// NextPageURL derives the same-origin URL for the page after current, or
// nil on the last page. The current query is carried over minus "page",
// so filtered listings keep their filters across reloads. Clients must
// never be handed upstream pagination URLs.
func NextPageURL(route string, query url.Values, currentPage, lastPage int) *string {
	if currentPage >= lastPage {
		return nil
	}
	next := url.Values{}
	for key, values := range query {
		if key == "page" {
			continue
		}
		next[key] = values
	}
	next.Set("page", strconv.Itoa(currentPage+1))
	result := route + "?" + next.Encode()
	return &result
}
