package categorize

// DefaultKeywords is the maintained keyword table scanned when SKU based
// methods fail. Order is significant: the first matching keyword wins.
// Keywords are matched case- and accent-insensitively against the product
// display name.
var DefaultKeywords = []KeywordRule{
	{Keyword: "barra", Category: "BARRAS"},
	{Keyword: "barrita", Category: "BARRAS"},
	{Keyword: "turron", Category: "TURRONES"},
	{Keyword: "chocolate", Category: "CHOCOLATES"},
	{Keyword: "bombon", Category: "CHOCOLATES"},
	{Keyword: "galleta", Category: "GALLETAS"},
	{Keyword: "cookie", Category: "GALLETAS"},
	{Keyword: "crema", Category: "CREMAS"},
	{Keyword: "mantequilla", Category: "CREMAS"},
	{Keyword: "granola", Category: "GRANOLAS"},
	{Keyword: "pack", Category: "PACKS"},
	{Keyword: "lote", Category: "PACKS"},
	{Keyword: "caja master", Category: "master box"},
}
