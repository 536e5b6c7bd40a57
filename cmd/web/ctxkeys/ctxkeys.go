package ctxkeys

type Key int

const (
	Language    Key = iota // string: negotiated BCP 47 base code for <html lang>
	SearchQuery            // string: current search query, echoed in the nav search box
	RequestURI             // string: path and query of the page, joined to the site URL for rel=canonical
)
