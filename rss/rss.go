package rss

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/html/charset"
	"golang.org/x/xerrors"

	"github.com/misp-feeds/ics-stix-update/utils"
)

const itemElement = "item"

// element is an open element while walking the feed.
type element struct {
	item int     // index in items when the element is an <item>, -1 otherwise
	text *string // text collected for a child of an item, nil otherwise
	done bool    // text ends at the first nested element
}

// Parse returns every un-namespaced <item> of the feed in document order, at any
// depth and including items nested in other items. Only the first un-namespaced
// child of each name is read, the way ElementPath find does. title, link and
// description are required on each item; all items lacking one are reported
// together as *MissingFieldError values and no item is returned.
func Parse(b []byte) ([]Item, error) {
	// Some feeds declare labels such as "utf8" or "ISO-8859-1"
	decoder := xml.NewDecoder(bytes.NewReader(b))
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		raws  []rawItem
		stack []*element
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, xerrors.Errorf("failed to decode RSS feed: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			var parent *element
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
				parent.done = true
			}

			e := &element{item: -1}
			switch {
			case t.Name.Space != "":
				// atom:link, dc:creator and the like are neither items nor item fields
			case t.Name.Local == itemElement:
				raws = append(raws, rawItem{})
				e.item = len(raws) - 1
			case parent != nil && parent.item >= 0:
				if field := raws[parent.item].child(t.Name.Local); field != nil && *field == nil {
					*field = new(string)
					e.text = *field
				}
			}
			stack = append(stack, e)
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if e := stack[len(stack)-1]; e.text != nil && !e.done {
				*e.text += string(t)
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	items := make([]Item, 0, len(raws))
	var result *multierror.Error
	for i, raw := range raws {
		item, errs := convert(i, raw)
		if len(errs) > 0 {
			result = multierror.Append(result, errs...)
			continue
		}
		items = append(items, item)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, xerrors.Errorf("incomplete RSS items: %w", err)
	}
	return items, nil
}

func convert(index int, raw rawItem) (Item, []error) {
	var errs []error
	// the text is kept as written, the link is fingerprinted byte for byte
	required := func(field string, v *string) string {
		if v == nil || strings.TrimSpace(*v) == "" {
			errs = append(errs, &MissingFieldError{Index: index, Field: field})
			return ""
		}
		return *v
	}

	item := Item{
		Title:       required("title", raw.Title),
		Link:        required("link", raw.Link),
		Description: required("description", raw.Description),
	}
	if raw.GUID != nil {
		item.GUID = utils.TrimSpaceNewline(*raw.GUID)
	}
	// an unparsable date is not fatal, the indicator falls back to the run time
	if raw.PubDate != nil {
		if t, err := dateparse.ParseIn(utils.TrimSpaceNewline(*raw.PubDate), time.UTC); err == nil {
			item.Published = t.UTC()
		}
	}
	return item, errs
}
