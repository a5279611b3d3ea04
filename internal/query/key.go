package query

import "strconv"

// Key identifies one cache entry: a logical query name plus its parameter.
type Key struct {
	Name  string
	Param string
}

func (k Key) String() string {
	return k.Name + ":" + k.Param
}

// Query names used by the job API.
const (
	JobItemName  = "job-item"
	JobItemsName = "job-items"
)

// JobItemKey keys a single-item lookup.
func JobItemKey(id int) Key {
	return Key{Name: JobItemName, Param: strconv.Itoa(id)}
}

// JobItemsKey keys a text search.
func JobItemsKey(searchText string) Key {
	return Key{Name: JobItemsName, Param: searchText}
}
