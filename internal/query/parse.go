// Package query builds paginated document-store queries from raw
// query-string parameters: filtering with comparison operators, field
// selection, sorting and pagination.
package query

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var reservedParams = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

// operatorParam matches keys of the form field[op], e.g. tuition[gte].
var operatorParam = regexp.MustCompile(`^(.+)\[(gt|gte|lt|lte|in)\]$`)

const (
	DefaultPage  = int64(1)
	DefaultLimit = int64(25)
)

type Options struct {
	Filter     bson.M
	Projection bson.D
	Sort       bson.D
	Page       int64
	Limit      int64
}

// Parse translates raw query-string parameters into store query options.
// It is a purely syntactic rewrite: no check is made that a filtered field
// exists or that the value type matches, so a malformed filter yields an
// empty result instead of an error.
func Parse(values url.Values) Options {
	opts := Options{
		Filter: bson.M{},
		Page:   DefaultPage,
		Limit:  DefaultLimit,
	}

	for key, raws := range values {
		if reservedParams[key] || len(raws) == 0 {
			continue
		}
		raw := raws[0]

		if m := operatorParam.FindStringSubmatch(key); m != nil {
			field, op := m[1], "$"+m[2]
			var value interface{}
			if op == "$in" {
				parts := strings.Split(raw, ",")
				list := make([]interface{}, 0, len(parts))
				for _, p := range parts {
					list = append(list, parseValue(p))
				}
				value = list
			} else {
				value = parseValue(raw)
			}

			// Two operators on the same field merge into one comparison doc,
			// e.g. tuition[gte]=1&tuition[lte]=9.
			if existing, ok := opts.Filter[field].(bson.M); ok {
				existing[op] = value
			} else {
				opts.Filter[field] = bson.M{op: value}
			}
			continue
		}

		opts.Filter[key] = parseValue(raw)
	}

	if sel := strings.TrimSpace(values.Get("select")); sel != "" {
		for _, field := range strings.Split(sel, ",") {
			if field = strings.TrimSpace(field); field != "" {
				opts.Projection = append(opts.Projection, bson.E{Key: field, Value: 1})
			}
		}
	}

	if sort := strings.TrimSpace(values.Get("sort")); sort != "" {
		for _, field := range strings.Split(sort, ",") {
			field = strings.TrimSpace(field)
			switch {
			case field == "" || field == "-":
			case strings.HasPrefix(field, "-"):
				opts.Sort = append(opts.Sort, bson.E{Key: field[1:], Value: -1})
			default:
				opts.Sort = append(opts.Sort, bson.E{Key: field, Value: 1})
			}
		}
	}
	if len(opts.Sort) == 0 {
		opts.Sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	if page, err := strconv.ParseInt(values.Get("page"), 10, 64); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.ParseInt(values.Get("limit"), 10, 64); err == nil && limit > 0 {
		opts.Limit = limit
	}

	return opts
}

// Exclude guarantees the named fields never appear in results, whether or
// not the caller supplied a select list.
func (o *Options) Exclude(fields ...string) {
	if len(o.Projection) == 0 {
		for _, field := range fields {
			o.Projection = append(o.Projection, bson.E{Key: field, Value: 0})
		}
		return
	}

	drop := make(map[string]bool, len(fields))
	for _, field := range fields {
		drop[field] = true
	}
	kept := o.Projection[:0]
	for _, e := range o.Projection {
		if !drop[e.Key] {
			kept = append(kept, e)
		}
	}
	// A select list made up entirely of excluded fields must not collapse
	// into "no projection": fall back to excluding them outright.
	if len(kept) == 0 {
		o.Projection = nil
		o.Exclude(fields...)
		return
	}
	o.Projection = kept
}

// parseValue converts a raw parameter into the type the store compares
// with: bools and numbers are typed, everything else stays a string.
func parseValue(raw string) interface{} {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
