package search

import "github.com/starford/quickseq/internal/rpc"

// Query templates bind the search term through :in; user text never appears
// in the template itself.
const (
	pagesByNameQuery = `[:find (pull ?p [:db/id :block/uuid :block/name :block/original-name :block/properties])
 :in $ ?term
 :where
 [?p :block/name]
 [?p :block/original-name ?name]
 [(clojure.string/includes? ?name ?term)]]`

	blocksByContentQuery = `[:find (pull ?b [:db/id :block/uuid :block/content {:block/page [:block/name :block/original-name]}])
 :in $ ?term
 :where
 [?b :block/content ?content]
 [(clojure.string/includes? ?content ?term)]]`
)

func pagesQuery(term string) rpc.Query {
	return rpc.Query{Template: pagesByNameQuery, Inputs: []any{term}}
}

func blocksQuery(term string) rpc.Query {
	return rpc.Query{Template: blocksByContentQuery, Inputs: []any{term}}
}
