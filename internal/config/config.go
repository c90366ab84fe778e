package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/rohmanhakim/cobweb/internal/build"
	"github.com/rohmanhakim/cobweb/pkg/urlutil"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHops        = 0
	DefaultConcurrency = 10
	DefaultTimeout     = 10 * time.Second
	DefaultMaxBodySize = int64(5 << 20)
)

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Page the scrape starts from, in canonical form
	seedURL url.URL
	// Number of anchors on the seed page examined for links. 0 scrapes the seed alone.
	hops int

	//===============
	// Extraction
	//===============
	// Element names for the by-element pass; class and attribute rules pair with them
	tags []string
	// Class names, combined with every tag
	classes []string
	// CSS selectors. The literal "id" also looks up every idValue
	selectors []string
	// Element ids resolved when the "id" selector is configured
	idValues []string
	// Attribute names, combined with every tag and attribute value
	attributes []string
	// Attribute values, matched exactly
	attrValues []string

	//===============
	// Fetch
	//===============
	// Maximum number of pages fetched at the same time
	concurrency int
	// Maximum time of a single fetch request, redirects included
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string
	// Response bodies larger than this are rejected
	maxBodySize int64
}

// configDTO mirrors the config file. Key names follow the original YAML
// format; the camelCase spellings are accepted as aliases.
type configDTO struct {
	URL         string   `json:"url" yaml:"url"`
	Hops        *int     `json:"hops,omitempty" yaml:"hops,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Classes     []string `json:"classes,omitempty" yaml:"classes,omitempty"`
	Selectors   []string `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	IDvalue     []string `json:"IDvalue,omitempty" yaml:"IDvalue,omitempty"`
	IDValue     []string `json:"idValue,omitempty" yaml:"idValue,omitempty"`
	Attributes  []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Attrs       []string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	AttrV       []string `json:"attrV,omitempty" yaml:"attrV,omitempty"`
	AttrValues  []string `json:"attrValues,omitempty" yaml:"attrValues,omitempty"`
	Concurrency int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Timeout     string   `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent   string   `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	MaxBodySize int64    `json:"maxBodySize,omitempty" yaml:"maxBodySize,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	if strings.TrimSpace(dto.URL) == "" {
		return Config{}, &ConfigurationError{Field: "url", Reason: "is required"}
	}
	seed, err := url.Parse(strings.TrimSpace(dto.URL))
	if err != nil {
		return Config{}, &ConfigurationError{Field: "url", Reason: err.Error(), Err: err}
	}

	cfg := WithDefault(*seed)

	if dto.Hops != nil {
		cfg.hops = *dto.Hops
	}

	cfg.tags = dto.Tags
	cfg.classes = dto.Classes
	cfg.selectors = dto.Selectors
	cfg.idValues = firstNonEmpty(dto.IDvalue, dto.IDValue)
	cfg.attributes = firstNonEmpty(dto.Attributes, dto.Attrs)
	cfg.attrValues = firstNonEmpty(dto.AttrV, dto.AttrValues)

	// For fetch fields, only override if non-zero value is provided
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}
	if dto.Timeout != "" {
		timeout, err := parseDuration(dto.Timeout)
		if err != nil {
			return Config{}, &ConfigurationError{Field: "timeout", Reason: err.Error()}
		}
		cfg.timeout = timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.MaxBodySize != 0 {
		cfg.maxBodySize = dto.MaxBodySize
	}

	return cfg.Build()
}

// WithConfigFile loads a YAML (.yaml, .yml) or JSON (.json) config file.
// Other extensions are read as YAML, which also accepts JSON documents.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(configContent, &cfgDTO)
	default:
		err = yaml.Unmarshal(configContent, &cfgDTO)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided seed URL and default values for all other fields.
// The seed is validated by Build.
func WithDefault(seedURL url.URL) *Config {
	defaultConfig := Config{
		seedURL:     seedURL,
		hops:        DefaultHops,
		tags:        []string{},
		classes:     []string{},
		selectors:   []string{},
		idValues:    []string{},
		attributes:  []string{},
		attrValues:  []string{},
		concurrency: DefaultConcurrency,
		timeout:     DefaultTimeout,
		userAgent:   build.UserAgent(),
		maxBodySize: DefaultMaxBodySize,
	}
	return &defaultConfig
}

func (c *Config) WithSeedURL(seedURL url.URL) *Config {
	c.seedURL = seedURL
	return c
}

func (c *Config) WithHops(hops int) *Config {
	c.hops = hops
	return c
}

func (c *Config) WithTags(tags []string) *Config {
	c.tags = tags
	return c
}

func (c *Config) WithClasses(classes []string) *Config {
	c.classes = classes
	return c
}

func (c *Config) WithSelectors(selectors []string) *Config {
	c.selectors = selectors
	return c
}

func (c *Config) WithIDValues(ids []string) *Config {
	c.idValues = ids
	return c
}

func (c *Config) WithAttributes(attributes []string) *Config {
	c.attributes = attributes
	return c
}

func (c *Config) WithAttrValues(values []string) *Config {
	c.attrValues = values
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxBodySize(size int64) *Config {
	c.maxBodySize = size
	return c
}

// Build validates the config and returns a copy with the seed in
// canonical form. Errors are *ConfigurationError.
func (c *Config) Build() (Config, error) {
	seed, err := urlutil.Normalize(c.seedURL.String())
	if err != nil {
		return Config{}, &ConfigurationError{Field: "url", Reason: err.Error()}
	}
	if !urlutil.IsHTTP(seed) {
		return Config{}, &ConfigurationError{
			Field:  "url",
			Reason: fmt.Sprintf("scheme %q is not http or https", seed.Scheme),
		}
	}
	if c.hops < 0 {
		return Config{}, &ConfigurationError{Field: "hops", Reason: "must be >= 0"}
	}
	if c.concurrency < 1 {
		return Config{}, &ConfigurationError{Field: "concurrency", Reason: "must be >= 1"}
	}
	if c.timeout < 0 {
		return Config{}, &ConfigurationError{Field: "timeout", Reason: "must not be negative"}
	}
	if c.maxBodySize < 0 {
		return Config{}, &ConfigurationError{Field: "maxBodySize", Reason: "must not be negative"}
	}

	built := *c
	built.seedURL = seed
	built.tags = normalizeList(c.tags)
	built.classes = normalizeList(c.classes)
	built.selectors = normalizeList(c.selectors)
	built.idValues = normalizeList(c.idValues)
	built.attributes = normalizeList(c.attributes)
	built.attrValues = normalizeList(c.attrValues)

	for _, selector := range built.selectors {
		if _, err := cascadia.Compile(selector); err != nil {
			return Config{}, &ConfigurationError{
				Field:  "selectors",
				Reason: fmt.Sprintf("%q is not a valid CSS selector: %v", selector, err),
			}
		}
	}
	return built, nil
}

func (c Config) SeedURL() url.URL {
	return c.seedURL
}

func (c Config) Hops() int {
	return c.hops
}

func (c Config) Tags() []string {
	return copyList(c.tags)
}

func (c Config) Classes() []string {
	return copyList(c.classes)
}

func (c Config) Selectors() []string {
	return copyList(c.selectors)
}

func (c Config) IDValues() []string {
	return copyList(c.idValues)
}

func (c Config) Attributes() []string {
	return copyList(c.attributes)
}

func (c Config) AttrValues() []string {
	return copyList(c.attrValues)
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) MaxBodySize() int64 {
	return c.maxBodySize
}

// parseDuration accepts Go duration strings ("10s", "1m30s") or a bare
// number of seconds.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func firstNonEmpty(lists ...[]string) []string {
	for _, list := range lists {
		if len(list) > 0 {
			return list
		}
	}
	return []string{}
}

// normalizeList trims entries and drops blank ones; order is kept.
func normalizeList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func copyList(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
