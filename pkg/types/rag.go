// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RAGFilters is the retrieval oracle's structured filter vocabulary.
type RAGFilters struct {
	Organism   []string `json:"organism,omitempty" yaml:"organism,omitempty"`
	MissionEnv []string `json:"mission_env,omitempty" yaml:"mission_env,omitempty"`
	Exposure   []string `json:"exposure,omitempty" yaml:"exposure,omitempty"`
	System     []string `json:"system,omitempty" yaml:"system,omitempty"`
	Tissue     []string `json:"tissue,omitempty" yaml:"tissue,omitempty"`
	Assay      []string `json:"assay,omitempty" yaml:"assay,omitempty"`

	// YearRange is a closed [from, to] interval.
	YearRange *[2]int `json:"year_range,omitempty" yaml:"year_range,omitempty"`
}

// IsEmpty reports whether no filter is set. An empty RAGFilters must be
// omitted from the request entirely rather than sent as {}.
func (f RAGFilters) IsEmpty() bool {
	return len(f.Organism) == 0 && len(f.MissionEnv) == 0 && len(f.Exposure) == 0 &&
		len(f.System) == 0 && len(f.Tissue) == 0 && len(f.Assay) == 0 && f.YearRange == nil
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Query     string      `json:"query" yaml:"query"`
	Filters   *RAGFilters `json:"filters,omitempty" yaml:"filters,omitempty"`
	TopK      int         `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	SessionID string      `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

// ArticleStatistics carries size information scraped with an article.
type ArticleStatistics struct {
	WordCount int `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	Sections  int `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// ArticleMetadata is the nested article record attached to citations and
// documents. When present its fields take precedence over top-level ones.
type ArticleMetadata struct {
	Title      string             `json:"title,omitempty" yaml:"title,omitempty"`
	Authors    []string           `json:"authors,omitempty" yaml:"authors,omitempty"`
	PMCID      string             `json:"pmc_id,omitempty" yaml:"pmc_id,omitempty"`
	DOI        string             `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL        string             `json:"url,omitempty" yaml:"url,omitempty"`
	ScrapedAt  string             `json:"scraped_at,omitempty" yaml:"scraped_at,omitempty"`
	Year       *int               `json:"year,omitempty" yaml:"year,omitempty"`
	Abstract   string             `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Statistics *ArticleStatistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

// CitationMetadata wraps the nested article metadata of a citation.
type CitationMetadata struct {
	ArticleMetadata *ArticleMetadata `json:"article_metadata,omitempty" yaml:"article_metadata,omitempty"`
}

// Citation is one evidence unit returned by the semantic retrieval oracle.
type Citation struct {
	SourceID string `json:"source_id" yaml:"source_id"`
	DOI      string `json:"doi,omitempty" yaml:"doi,omitempty"`
	OSDRID   string `json:"osdr_id,omitempty" yaml:"osdr_id,omitempty"`
	Section  string `json:"section,omitempty" yaml:"section,omitempty"`
	Snippet  string `json:"snippet" yaml:"snippet"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Year     *int   `json:"year,omitempty" yaml:"year,omitempty"`
	Organism string `json:"organism,omitempty" yaml:"organism,omitempty"`

	SimilarityScore *float64 `json:"similarity_score,omitempty" yaml:"similarity_score,omitempty"`
	SectionBoost    *float64 `json:"section_boost,omitempty" yaml:"section_boost,omitempty"`
	FinalScore      *float64 `json:"final_score,omitempty" yaml:"final_score,omitempty"`
	RelevanceReason string   `json:"relevance_reason,omitempty" yaml:"relevance_reason,omitempty"`

	Metadata *CitationMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Article returns the nested article metadata, or nil.
func (c Citation) Article() *ArticleMetadata {
	if c.Metadata == nil {
		return nil
	}
	return c.Metadata.ArticleMetadata
}

// ResponseMetrics are the oracle-reported quality metrics of one answer.
type ResponseMetrics struct {
	LatencyMS           float64        `json:"latency_ms" yaml:"latency_ms"`
	RetrievedK          int            `json:"retrieved_k" yaml:"retrieved_k"`
	GroundedRatio       float64        `json:"grounded_ratio" yaml:"grounded_ratio"`
	DedupCount          int            `json:"dedup_count" yaml:"dedup_count"`
	SectionDistribution map[string]int `json:"section_distribution,omitempty" yaml:"section_distribution,omitempty"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Answer      string           `json:"answer" yaml:"answer"`
	Citations   []Citation       `json:"citations" yaml:"citations"`
	UsedFilters *RAGFilters      `json:"used_filters,omitempty" yaml:"used_filters,omitempty"`
	Metrics     *ResponseMetrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	SessionID   string           `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

// DocumentSearchRequest is the body of POST /api/front/documents/search.
// Skip and Limit travel in the query string.
type DocumentSearchRequest struct {
	Tags       []string `json:"tags,omitempty"`
	SearchText string   `json:"search_text,omitempty"`

	Skip  int `json:"-"`
	Limit int `json:"-"`
}

// Document is one record returned by structured document search.
type Document struct {
	PK              string           `json:"pk" yaml:"pk"`
	Title           string           `json:"title" yaml:"title"`
	Tags            []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	Category        string           `json:"category,omitempty" yaml:"category,omitempty"`
	SourceType      string           `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	ArticleMetadata *ArticleMetadata `json:"article_metadata,omitempty" yaml:"article_metadata,omitempty"`
}

// DocumentSearchResponse is the body returned by structured document search.
type DocumentSearchResponse struct {
	Total     int        `json:"total" yaml:"total"`
	Documents []Document `json:"documents" yaml:"documents"`
}

// FilterValues lists the facet values the backend knows about.
type FilterValues struct {
	Categories     []string `json:"categories" yaml:"categories"`
	Tags           []string `json:"tags" yaml:"tags"`
	SourceTypes    []string `json:"source_types" yaml:"source_types"`
	TotalDocuments int      `json:"total_documents" yaml:"total_documents"`
	TotalChunks    int      `json:"total_chunks" yaml:"total_chunks"`
}

// Stats is the aggregate count payload of GET /api/front/stats.
type Stats struct {
	TotalDocuments int `json:"total_documents" yaml:"total_documents"`
	TotalChunks    int `json:"total_chunks" yaml:"total_chunks"`
	YearMin        int `json:"year_min,omitempty" yaml:"year_min,omitempty"`
	YearMax        int `json:"year_max,omitempty" yaml:"year_max,omitempty"`
	MissionCount   int `json:"mission_count,omitempty" yaml:"mission_count,omitempty"`
	SpeciesCount   int `json:"species_count,omitempty" yaml:"species_count,omitempty"`
}

// HealthResponse is the body of GET /diag/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DefaultDiagTopK is the chunk count of a retrieval diagnostic when none
// is given.
const DefaultDiagTopK = 5

// EmbeddingRequest is the body of POST /diag/emb.
type EmbeddingRequest struct {
	Text string `json:"text"`
}

// EmbeddingResponse is the vector the backend computed for a text.
type EmbeddingResponse struct {
	Embedding []float64 `json:"embedding" yaml:"embedding"`
	Dimension int       `json:"dimension" yaml:"dimension"`
}

// RetrievalRequest is the body of POST /diag/retrieval.
type RetrievalRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// RetrievalResponse lists the raw chunks retrieved for a query, before any
// answer is generated.
type RetrievalResponse struct {
	Query      string     `json:"query" yaml:"query"`
	Chunks     []Citation `json:"chunks" yaml:"chunks"`
	TotalFound int        `json:"total_found" yaml:"total_found"`
}
