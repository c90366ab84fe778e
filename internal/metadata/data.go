package metadata

/*
scrapeStats
  - Represents a terminal, derived summary of a completed scrape run
  - Contains only aggregate counts and durations
  - Is computed by the scheduler after the run ends
  - Is recorded exactly once
  - Must not influence scheduling or run termination
*/
type scrapeStats struct {
	totalPages   int
	failedPages  int
	totalMatches int
	durationMs   int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

  - Failure caused by network transport or remote availability
    (timeouts, DNS failures, connection resets, 5xx).

# CausePolicyDisallow

  - The remote side refused the request (403, 401, 429).

# CauseContentInvalid

  - Content was fetched but could not be processed meaningfully
    (non-HTML responses, unparsable markup).

# CauseStorageFailure

  - Failure while writing the run report.

# CauseInvalidInput

  - A URL or configuration value supplied by the caller is malformed.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseInvalidInput
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrMessage    AttributeKey = "message"
	AttrSeed       AttributeKey = "seed"
)

// CacheOutcome describes how a document cache lookup was served.
type CacheOutcome string

const (
	// CacheMiss: the caller triggered the fetch+parse.
	CacheMiss CacheOutcome = "miss"
	// CacheHit: the entry was already settled.
	CacheHit CacheOutcome = "hit"
	// CacheShared: the caller joined a fetch already in flight.
	CacheShared CacheOutcome = "shared"
)

type ArtifactKind string

const (
	ArtifactReport ArtifactKind = "report"
)
