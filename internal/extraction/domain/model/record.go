package model

// Record is one schema-less document from the remote source. Only the two
// fields named by the dataset's IndexSpec are relied upon.
type Record map[string]interface{}

// SourceIDField holds an identifier the source sent under "_id". The store
// assigns its own _id so a re-fetched item is inserted again instead of
// colliding with the earlier copy.
const SourceIDField = "source_id"

// Document returns a copy of r ready for insertion, with any incoming _id
// moved to SourceIDField. r itself is not modified.
func (r Record) Document() Record {
	doc := make(Record, len(r))
	for k, v := range r {
		doc[k] = v
	}
	if id, ok := doc["_id"]; ok {
		delete(doc, "_id")
		doc[SourceIDField] = id
	}
	return doc
}

// Link is a continuation link in a page body
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Page is the decoded body of one paginated response
type Page struct {
	Items []Record `json:"items"`
	Links []Link   `json:"links"`
}

// RelNext is the relation label that continues pagination
const RelNext = "next"

// Next returns the href of the first link labelled "next".
func (p *Page) Next() (string, bool) {
	if p == nil {
		return "", false
	}
	for _, l := range p.Links {
		if l.Rel == RelNext && l.Href != "" {
			return l.Href, true
		}
	}
	return "", false
}

// Counts is a named set of per-run tallies, e.g. {"inserted": 40}
type Counts map[string]int

// LoadResult summarizes one Loader invocation
type LoadResult struct {
	Pages    int `json:"pages"`
	Inserted int `json:"inserted"`
	Failed   int `json:"failed"`
}

// PurgeResult summarizes one Purger invocation
type PurgeResult struct {
	Scanned     int `json:"scanned"`
	Deleted     int `json:"deleted"`
	Unparseable int `json:"unparseable"`
	Failed      int `json:"failed"`
}

// Counts returns the result as named tallies
func (r LoadResult) Counts() Counts {
	return Counts{"pages": r.Pages, "inserted": r.Inserted, "failed": r.Failed}
}

// Counts returns the result as named tallies
func (r PurgeResult) Counts() Counts {
	return Counts{"scanned": r.Scanned, "deleted": r.Deleted, "unparseable": r.Unparseable, "failed": r.Failed}
}
