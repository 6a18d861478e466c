package db

// VectorScoreField is the synthetic field FT.SEARCH reports the KNN
// distance under for a vector field named "vector".
const VectorScoreField = "__vector_score"

// KNNQuery describes a vector similarity search over an FT index.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchEntry is a single FT.SEARCH hit.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the parsed outcome of an FT.SEARCH call.
// Entries preserve the order the server returned them in.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
