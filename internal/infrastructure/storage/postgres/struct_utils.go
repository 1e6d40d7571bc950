package postgres

import (
	"reflect"
	"sync"
)

// column is one "db"-tagged field; index is its path through embedded
// structs such as entity.BaseEntity.
type column struct {
	name  string
	index []int
}

// plans caches the column list of each record type.
var plans sync.Map // reflect.Type -> []column

func planOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := plans.Load(t); ok {
		return cached.([]column)
	}
	cols := collectColumns(t, nil)
	plans.Store(t, cols)
	return cols
}

func collectColumns(t reflect.Type, prefix []int) []column {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), prefix...), i)
		if f.Anonymous {
			cols = append(cols, collectColumns(f.Type, path)...)
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{name: tag, index: path})
	}
	return cols
}

// ExtractDBColumns lists the "db" columns of T in declaration order,
// embedded structs inline. Line items and other untagged fields are left
// out.
//
//	ExtractDBColumns[chart.Account]() // id, version, tenant_id, code, ...
func ExtractDBColumns[T any]() []string {
	plan := planOf(reflect.TypeOf((*T)(nil)).Elem())
	out := make([]string, len(plan))
	for i, c := range plan {
		out[i] = c.name
	}
	return out
}

// StructToMap returns the column values of a record, for squirrel SetMap.
func StructToMap(v any) map[string]any {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	plan := planOf(rv.Type())
	res := make(map[string]any, len(plan))
	for _, c := range plan {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}

// Values returns the values of cols from v in column order, for COPY rows
// and multi-row inserts.
func Values(v any, cols []string) []any {
	m := StructToMap(v)
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = m[c]
	}
	return out
}

// Without returns cols minus the excluded names.
func Without(cols []string, exclude ...string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := skip[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
