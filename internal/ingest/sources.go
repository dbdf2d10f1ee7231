package ingest

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sources maps a feed source name to its feed URL
type Sources map[string]string

// sourcesFile is the on-disk layout of FEED_SOURCES_FILE
type sourcesFile struct {
	Sources map[string]string `yaml:"sources"`
}

// DefaultSources returns the built-in feed sources
func DefaultSources() Sources {
	return Sources{
		"react-native": "https://reactnative.dev/blog/rss.xml",
		"expo":         "https://blog.expo.dev/feed",
	}
}

// LoadSources reads a YAML source registry from path
func LoadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feed sources file: %w", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing feed sources file: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("feed sources file %s defines no sources", path)
	}

	sources := make(Sources, len(f.Sources))
	for name, feedURL := range f.Sources {
		name = strings.TrimSpace(name)
		if !isAbsoluteHTTP(feedURL) {
			return nil, fmt.Errorf("feed source %q has invalid url %q", name, feedURL)
		}
		sources[name] = strings.TrimSpace(feedURL)
	}
	return sources, nil
}

// Resolve returns the feed URL for source; absolute http(s) URLs resolve to themselves
func (s Sources) Resolve(source string) (string, error) {
	source = strings.TrimSpace(source)
	if feedURL, ok := s[source]; ok {
		return feedURL, nil
	}
	if isAbsoluteHTTP(source) {
		return source, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, source)
}

// Names lists registered source names in sorted order
func (s Sources) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
