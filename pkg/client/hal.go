package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

// Item is one element of a HAL collection.
type Item struct {
	Self string
	Raw  gjson.Result
}

// Get returns a field of the item by gjson path.
func (i Item) Get(path string) gjson.Result {
	return i.Raw.Get(path)
}

// Page is a decoded HAL collection response.
type Page struct {
	Items         []Item
	Self          string
	Number        int64
	Size          int64
	TotalElements int64
	TotalPages    int64
}

// ParseCollection reads _embedded.<resource>, each item's _links.self.href
// and the page block of a HAL collection body.
func ParseCollection(raw []byte, resource string) *Page {
	doc := gjson.ParseBytes(raw)
	page := &Page{
		Self:          doc.Get("_links.self.href").String(),
		Number:        doc.Get("page.number").Int(),
		Size:          doc.Get("page.size").Int(),
		TotalElements: doc.Get("page.totalElements").Int(),
		TotalPages:    doc.Get("page.totalPages").Int(),
	}
	doc.Get("_embedded." + resource).ForEach(func(_, item gjson.Result) bool {
		page.Items = append(page.Items, Item{
			Self: item.Get("_links.self.href").String(),
			Raw:  item,
		})
		return true
	})
	if page.TotalElements == 0 && !doc.Get("page.totalElements").Exists() {
		page.TotalElements = int64(len(page.Items))
	}
	return page
}

// List fetches one page of a HAL collection.
func (c *Client) List(ctx context.Context, resource string, number, size int, filters url.Values) (*Page, error) {
	query := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("page", strconv.Itoa(number))
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}

	resp, err := c.Request(ctx, "GET", "/"+resource+"?"+query.Encode())
	if err != nil {
		return nil, err
	}
	return ParseCollection(resp.Raw, resource), nil
}
