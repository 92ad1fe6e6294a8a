package query

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Page struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

type Pagination struct {
	Prev *Page `json:"prev,omitempty"`
	Next *Page `json:"next,omitempty"`
}

type Result struct {
	Count      int
	Pagination Pagination
	Data       []bson.M
}

// Collection is the slice of *mongo.Collection the runner needs; narrowed
// so tests can drive Run without a live server.
type Collection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Join describes an explicit relationship-expansion step performed after the
// primary fetch. With only LocalField set it replaces a reference id on each
// result with the referenced document (many-to-one). With ForeignField set it
// attaches the list of documents whose ForeignField points back at the result
// (one-to-many).
type Join struct {
	Col          Collection
	LocalField   string
	ForeignField string
	As           string
	Fields       []string
}

// Run executes the built query and returns the paginated result envelope.
// The total used for pagination is a count of the whole collection, not the
// filtered set; list endpoints have always behaved this way and callers
// depend on the cursor math staying stable.
func Run(ctx context.Context, col Collection, opts Options, joins ...Join) (Result, error) {
	type countOut struct {
		total int64
		err   error
	}
	countCh := make(chan countOut, 1)
	go func() {
		total, err := col.CountDocuments(ctx, bson.M{})
		countCh <- countOut{total, err}
	}()

	skip := (opts.Page - 1) * opts.Limit
	findOpts := options.Find().
		SetSort(opts.Sort).
		SetSkip(skip).
		SetLimit(opts.Limit)
	if len(opts.Projection) > 0 {
		findOpts.SetProjection(opts.Projection)
	}

	filter := opts.Filter
	if filter == nil {
		filter = bson.M{}
	}

	cursor, err := col.Find(ctx, filter, findOpts)
	if err != nil {
		return Result{}, err
	}
	data := make([]bson.M, 0)
	if err := cursor.All(ctx, &data); err != nil {
		return Result{}, err
	}

	count := <-countCh
	if count.err != nil {
		return Result{}, count.err
	}

	for _, join := range joins {
		if join.ForeignField == "" {
			err = attachRefs(ctx, data, join)
		} else {
			err = attachChildren(ctx, data, join)
		}
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		Count:      len(data),
		Pagination: paginate(opts.Page, opts.Limit, count.total),
		Data:       data,
	}, nil
}

// paginate emits a next cursor iff pages remain past this one and a prev
// cursor iff any documents were skipped.
func paginate(page, limit, total int64) Pagination {
	var p Pagination
	if page*limit < total {
		p.Next = &Page{Page: page + 1, Limit: limit}
	}
	if (page-1)*limit > 0 {
		p.Prev = &Page{Page: page - 1, Limit: limit}
	}
	return p
}

func fieldProjection(fields []string) bson.D {
	proj := bson.D{}
	for _, field := range fields {
		proj = append(proj, bson.E{Key: field, Value: 1})
	}
	return proj
}

// attachRefs replaces each document's reference id with the referenced
// document, fetched in a single query and optionally projected.
func attachRefs(ctx context.Context, data []bson.M, join Join) error {
	as := join.As
	if as == "" {
		as = join.LocalField
	}

	seen := make(map[string]bool)
	ids := make([]string, 0, len(data))
	for _, doc := range data {
		if id, ok := doc[join.LocalField].(string); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	findOpts := options.Find()
	if len(join.Fields) > 0 {
		findOpts.SetProjection(fieldProjection(join.Fields))
	}
	cursor, err := join.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOpts)
	if err != nil {
		return err
	}
	var refs []bson.M
	if err := cursor.All(ctx, &refs); err != nil {
		return err
	}

	byID := make(map[string]bson.M, len(refs))
	for _, ref := range refs {
		if id, ok := ref["_id"].(string); ok {
			byID[id] = ref
		}
	}
	for _, doc := range data {
		if id, ok := doc[join.LocalField].(string); ok {
			if ref, found := byID[id]; found {
				doc[as] = ref
			}
		}
	}
	return nil
}

// attachChildren attaches to each document the list of documents referencing
// it, the derived reverse collection that is computed rather than stored.
func attachChildren(ctx context.Context, data []bson.M, join Join) error {
	ids := make([]string, 0, len(data))
	for _, doc := range data {
		if id, ok := doc["_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	findOpts := options.Find()
	if len(join.Fields) > 0 {
		proj := fieldProjection(join.Fields)
		proj = append(proj, bson.E{Key: join.ForeignField, Value: 1})
		findOpts.SetProjection(proj)
	}
	cursor, err := join.Col.Find(ctx, bson.M{join.ForeignField: bson.M{"$in": ids}}, findOpts)
	if err != nil {
		return err
	}
	var children []bson.M
	if err := cursor.All(ctx, &children); err != nil {
		return err
	}

	byParent := make(map[string][]bson.M)
	for _, child := range children {
		if parent, ok := child[join.ForeignField].(string); ok {
			byParent[parent] = append(byParent[parent], child)
		}
	}
	for _, doc := range data {
		id, _ := doc["_id"].(string)
		group := byParent[id]
		if group == nil {
			group = []bson.M{}
		}
		doc[join.As] = group
	}
	return nil
}
