package config_test

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rohmanhakim/cobweb/internal/build"
	"github.com/rohmanhakim/cobweb/internal/config"
	"github.com/rohmanhakim/cobweb/pkg/urlutil"
)

func seed(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return *u
}

func writeConfig(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestWithDefault(t *testing.T) {
	cfg := config.WithDefault(seed(t, "https://Example.org"))

	if cfg == nil {
		t.Fatal("WithDefault() returned nil")
	}

	builtCfg, err := cfg.Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if gotSeed := builtCfg.SeedURL(); gotSeed.String() != "https://example.org/" {
		t.Errorf("expected canonical seed, got %s", gotSeed.String())
	}
	if builtCfg.Hops() != 0 {
		t.Errorf("expected Hops 0, got %d", builtCfg.Hops())
	}
	if builtCfg.Concurrency() != 10 {
		t.Errorf("expected Concurrency 10, got %d", builtCfg.Concurrency())
	}
	if builtCfg.Timeout() != 10*time.Second {
		t.Errorf("expected Timeout 10s, got %v", builtCfg.Timeout())
	}
	if builtCfg.UserAgent() != build.UserAgent() {
		t.Errorf("expected UserAgent %q, got %q", build.UserAgent(), builtCfg.UserAgent())
	}
	if builtCfg.MaxBodySize() != 5<<20 {
		t.Errorf("expected MaxBodySize 5MiB, got %d", builtCfg.MaxBodySize())
	}

	lists := map[string][]string{
		"tags":       builtCfg.Tags(),
		"classes":    builtCfg.Classes(),
		"selectors":  builtCfg.Selectors(),
		"idValues":   builtCfg.IDValues(),
		"attributes": builtCfg.Attributes(),
		"attrValues": builtCfg.AttrValues(),
	}
	for name, list := range lists {
		if list == nil || len(list) != 0 {
			t.Errorf("expected %s to be an empty list, got %#v", name, list)
		}
	}
}

func TestBuilderChain(t *testing.T) {
	builtCfg, err := config.WithDefault(seed(t, "https://a.test/docs/")).
		WithHops(4).
		WithTags([]string{"h1", " p ", ""}).
		WithClasses([]string{"lead"}).
		WithSelectors([]string{"main > p", "id"}).
		WithIDValues([]string{"top"}).
		WithAttributes([]string{"rel"}).
		WithAttrValues([]string{"author"}).
		WithConcurrency(3).
		WithTimeout(2 * time.Second).
		WithUserAgent("TestBot/1.0").
		WithMaxBodySize(1024).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotSeed := builtCfg.SeedURL(); gotSeed.String() != "https://a.test/docs" {
		t.Errorf("unexpected seed %s", gotSeed.String())
	}
	if builtCfg.Hops() != 4 {
		t.Errorf("expected Hops 4, got %d", builtCfg.Hops())
	}
	if !reflect.DeepEqual(builtCfg.Tags(), []string{"h1", "p"}) {
		t.Errorf("expected trimmed tags, got %v", builtCfg.Tags())
	}
	if !reflect.DeepEqual(builtCfg.Selectors(), []string{"main > p", "id"}) {
		t.Errorf("unexpected selectors %v", builtCfg.Selectors())
	}
	if !reflect.DeepEqual(builtCfg.IDValues(), []string{"top"}) {
		t.Errorf("unexpected id values %v", builtCfg.IDValues())
	}
	if builtCfg.Concurrency() != 3 {
		t.Errorf("expected Concurrency 3, got %d", builtCfg.Concurrency())
	}
	if builtCfg.Timeout() != 2*time.Second {
		t.Errorf("expected Timeout 2s, got %v", builtCfg.Timeout())
	}
	if builtCfg.UserAgent() != "TestBot/1.0" {
		t.Errorf("expected UserAgent 'TestBot/1.0', got '%s'", builtCfg.UserAgent())
	}
	if builtCfg.MaxBodySize() != 1024 {
		t.Errorf("expected MaxBodySize 1024, got %d", builtCfg.MaxBodySize())
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	builtCfg, err := config.WithDefault(seed(t, "https://a.test/")).
		WithTags([]string{"h1"}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tags := builtCfg.Tags()
	tags[0] = "script"

	if builtCfg.Tags()[0] != "h1" {
		t.Errorf("config was modified through accessor: %v", builtCfg.Tags())
	}
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *config.Config
		field string
	}{
		{
			name:  "missing scheme",
			cfg:   config.WithDefault(seed(t, "a.test/page")),
			field: "url",
		},
		{
			name:  "missing host",
			cfg:   config.WithDefault(seed(t, "https:///page")),
			field: "url",
		},
		{
			name:  "unsupported scheme",
			cfg:   config.WithDefault(seed(t, "ftp://a.test/pub")),
			field: "url",
		},
		{
			name:  "negative hops",
			cfg:   config.WithDefault(seed(t, "https://a.test/")).WithHops(-1),
			field: "hops",
		},
		{
			name:  "zero concurrency",
			cfg:   config.WithDefault(seed(t, "https://a.test/")).WithConcurrency(0),
			field: "concurrency",
		},
		{
			name:  "negative timeout",
			cfg:   config.WithDefault(seed(t, "https://a.test/")).WithTimeout(-time.Second),
			field: "timeout",
		},
		{
			name:  "invalid selector",
			cfg:   config.WithDefault(seed(t, "https://a.test/")).WithSelectors([]string{"div[["}),
			field: "selectors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			var cfgErr *config.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestWithConfigFile_FileDoesNotExist(t *testing.T) {
	_, err := config.WithConfigFile("/nonexistent/path/config.yaml")

	if err == nil {
		t.Fatal("expected error for non-existent file, got nil")
	}

	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got: %v", err)
	}
}

func TestWithConfigFile_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "invalid.json", "{invalid json content}")

	_, err := config.WithConfigFile(path)

	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got: %v", err)
	}
}

func TestWithConfigFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid.yaml", "url: [unclosed")

	_, err := config.WithConfigFile(path)

	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got: %v", err)
	}
}

func TestWithConfigFile_OriginalYAMLKeys(t *testing.T) {
	path := writeConfig(t, "scrape.yml", `
url: https://stackoverflow.com/
hops: 5
tags:
  - h1
  - p
classes:
  - question-hyperlink
selectors:
  - id
  - div.s-post-summary
IDvalue:
  - content
attrs:
  - rel
attrV:
  - nofollow
concurrency: 4
timeout: 30s
userAgent: ScrapeBot/2.0
`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error loading valid config: %v", err)
	}

	if gotSeed := cfg.SeedURL(); gotSeed.String() != "https://stackoverflow.com/" {
		t.Errorf("unexpected seed %s", gotSeed.String())
	}
	if cfg.Hops() != 5 {
		t.Errorf("expected Hops 5, got %d", cfg.Hops())
	}
	if !reflect.DeepEqual(cfg.Tags(), []string{"h1", "p"}) {
		t.Errorf("unexpected tags %v", cfg.Tags())
	}
	if !reflect.DeepEqual(cfg.Classes(), []string{"question-hyperlink"}) {
		t.Errorf("unexpected classes %v", cfg.Classes())
	}
	if !reflect.DeepEqual(cfg.Selectors(), []string{"id", "div.s-post-summary"}) {
		t.Errorf("unexpected selectors %v", cfg.Selectors())
	}
	if !reflect.DeepEqual(cfg.IDValues(), []string{"content"}) {
		t.Errorf("unexpected id values %v", cfg.IDValues())
	}
	if !reflect.DeepEqual(cfg.Attributes(), []string{"rel"}) {
		t.Errorf("unexpected attributes %v", cfg.Attributes())
	}
	if !reflect.DeepEqual(cfg.AttrValues(), []string{"nofollow"}) {
		t.Errorf("unexpected attribute values %v", cfg.AttrValues())
	}
	if cfg.Concurrency() != 4 {
		t.Errorf("expected Concurrency 4, got %d", cfg.Concurrency())
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected Timeout 30s, got %v", cfg.Timeout())
	}
	if cfg.UserAgent() != "ScrapeBot/2.0" {
		t.Errorf("expected UserAgent 'ScrapeBot/2.0', got '%s'", cfg.UserAgent())
	}
}

func TestWithConfigFile_JSONAliases(t *testing.T) {
	path := writeConfig(t, "scrape.json", `{
		"url": "http://a.test",
		"hops": 2,
		"tags": ["a"],
		"attributes": ["rel"],
		"attrValues": ["author"],
		"idValue": ["main"],
		"timeout": "1500ms",
		"maxBodySize": 2048
	}`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotSeed := cfg.SeedURL(); gotSeed.String() != "http://a.test/" {
		t.Errorf("unexpected seed %s", gotSeed.String())
	}
	if !reflect.DeepEqual(cfg.Attributes(), []string{"rel"}) {
		t.Errorf("unexpected attributes %v", cfg.Attributes())
	}
	if !reflect.DeepEqual(cfg.AttrValues(), []string{"author"}) {
		t.Errorf("unexpected attribute values %v", cfg.AttrValues())
	}
	if !reflect.DeepEqual(cfg.IDValues(), []string{"main"}) {
		t.Errorf("unexpected id values %v", cfg.IDValues())
	}
	if cfg.Timeout() != 1500*time.Millisecond {
		t.Errorf("expected Timeout 1.5s, got %v", cfg.Timeout())
	}
	if cfg.MaxBodySize() != 2048 {
		t.Errorf("expected MaxBodySize 2048, got %d", cfg.MaxBodySize())
	}
	// unset fields keep their defaults
	if cfg.Concurrency() != config.DefaultConcurrency {
		t.Errorf("expected default Concurrency, got %d", cfg.Concurrency())
	}
}

func TestWithConfigFile_PartialConfig(t *testing.T) {
	path := writeConfig(t, "partial.yaml", "url: https://partial-example.com/docs\n")

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Hops() != 0 {
		t.Errorf("expected Hops 0, got %d", cfg.Hops())
	}
	if len(cfg.Tags()) != 0 {
		t.Errorf("expected no tags, got %v", cfg.Tags())
	}
	if cfg.Timeout() != config.DefaultTimeout {
		t.Errorf("expected default Timeout, got %v", cfg.Timeout())
	}
}

func TestWithConfigFile_MissingURL(t *testing.T) {
	path := writeConfig(t, "nourl.yaml", "hops: 3\ntags: [h1]\n")

	_, err := config.WithConfigFile(path)

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "url" {
		t.Errorf("expected url ConfigurationError, got %v", err)
	}
}

func TestBuild_InvalidURLKeepsCause(t *testing.T) {
	_, err := config.WithDefault(seed(t, "/relative/only")).Build()

	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "url" {
		t.Fatalf("expected url ConfigurationError, got %v", err)
	}
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	var urlErr *urlutil.InvalidURLError
	if !errors.As(err, &urlErr) {
		t.Fatalf("expected the InvalidURLError to be reachable, got %v", err)
	}
	if urlErr.Cause != urlutil.ErrCauseMissingScheme {
		t.Errorf("expected missing scheme, got %v", urlErr.Cause)
	}
}

func TestWithConfigFile_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"negative hops", "url: https://a.test/\nhops: -2\n", "hops"},
		{"bad timeout", "url: https://a.test/\ntimeout: soon\n", "timeout"},
		{"bad selector", "url: https://a.test/\nselectors: ['p >']\n", "selectors"},
		{"relative url", "url: /docs\n", "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tt.content)

			_, err := config.WithConfigFile(path)

			var cfgErr *config.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}
