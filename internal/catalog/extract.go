package catalog

import (
	"sort"
)

// topLevelLists are checked, in order, directly on the envelope.
var topLevelLists = []string{"data", "results", "searchCodeSearchResult"}

// dataLists are checked, in order, on the object under "data".
var dataLists = []string{
	"books", "list", "lists", "results", "contentInfos", "series",
	"search_data", "episodeList", "shortPlayEpisodeInfos", "episodes",
}

// noisyKeys are arrays that never hold content items.
var noisyKeys = map[string]struct{}{
	"shadedWordSearchResult": {},
}

// ExtractList locates the array of raw item records inside an arbitrarily
// shaped response envelope. Non-object array elements are dropped. A total
// mismatch yields an empty slice.
func ExtractList(envelope any) []Record {
	if list, ok := asList(envelope); ok {
		return records(list)
	}
	root, ok := asRecord(envelope)
	if !ok {
		return []Record{}
	}

	for _, k := range topLevelLists {
		if list, ok := asList(root[k]); ok {
			return records(list)
		}
	}

	if data, ok := asRecord(root["data"]); ok {
		if out := extractDataLists(data); len(out) > 0 {
			return out
		}
		if out := extractCellBooks(data); len(out) > 0 {
			return out
		}
	}

	// Last resort: the first array-valued key. Key order is sorted so the
	// choice does not depend on map iteration order.
	keys := make([]string, 0, len(root))
	for k := range root {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, noisy := noisyKeys[k]; noisy {
			continue
		}
		if list, ok := asList(root[k]); ok {
			return records(list)
		}
	}
	return []Record{}
}

// extractDataLists stops at the first array-valued key, even when it is
// empty, matching how the search wrappers signal "no hits".
func extractDataLists(data Record) []Record {
	for _, k := range dataLists {
		list, ok := asList(data[k])
		if !ok {
			continue
		}
		if k == "search_data" && len(list) > 0 {
			if first, ok := asRecord(list[0]); ok {
				if books, ok := asList(first["books"]); ok {
					return records(books)
				}
			}
		}
		return records(list)
	}
	return nil
}

// extractCellBooks flattens the cell layouts used by Melolo feeds:
// data.cell.cell_data[].books, data.cell_data[].books and data.cell.books.
func extractCellBooks(data Record) []Record {
	var cellData []any
	if v, ok := nested(data, "cell", "cell_data"); ok {
		cellData, _ = asList(v)
	} else if v, ok := asList(data["cell_data"]); ok {
		cellData = v
	}

	var out []Record
	for _, c := range cellData {
		cell, ok := asRecord(c)
		if !ok {
			continue
		}
		for _, k := range []string{"books", "list"} {
			if books, ok := asList(cell[k]); ok {
				out = append(out, records(books)...)
				break
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	if v, ok := nested(data, "cell", "books"); ok {
		if books, ok := asList(v); ok {
			return records(books)
		}
	}
	return nil
}
