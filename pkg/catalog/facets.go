package catalog

import "slices"

// TagCount is a tag with the number of books carrying it
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Facets are the filter options available for a working set
type Facets struct {
	Categories []string   `json:"categories"`
	Authors    []string   `json:"authors"`
	TopTags    []TagCount `json:"topTags"`
}

// ExtractFacets collects distinct categories and authors in first seen order
// and the tagLimit most used tags (tagLimit <= 0 keeps all of them).
// It is meant to run on the unfiltered working set.
func ExtractFacets(records []Book, tagLimit int) Facets {
	facets := Facets{
		Categories: []string{},
		Authors:    []string{},
		TopTags:    []TagCount{},
	}

	categories := make(map[string]struct{})
	authors := make(map[string]struct{})
	tagIndex := make(map[string]int)

	for _, b := range records {
		if _, ok := categories[b.Category]; !ok {
			categories[b.Category] = struct{}{}
			facets.Categories = append(facets.Categories, b.Category)
		}
		if _, ok := authors[b.Author]; !ok {
			authors[b.Author] = struct{}{}
			facets.Authors = append(facets.Authors, b.Author)
		}

		// a tag repeated on the same book counts once
		counted := make(map[string]struct{}, len(b.Tags))
		for _, tag := range b.Tags {
			if _, dup := counted[tag]; dup {
				continue
			}
			counted[tag] = struct{}{}

			i, ok := tagIndex[tag]
			if !ok {
				i = len(facets.TopTags)
				tagIndex[tag] = i
				facets.TopTags = append(facets.TopTags, TagCount{Tag: tag})
			}
			facets.TopTags[i].Count++
		}
	}

	// stable sort keeps first-encountered order among equal counts
	slices.SortStableFunc(facets.TopTags, func(a, b TagCount) int {
		return b.Count - a.Count
	})
	if tagLimit > 0 && len(facets.TopTags) > tagLimit {
		facets.TopTags = facets.TopTags[:tagLimit]
	}

	return facets
}
