package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/docsite/internal/dateutil"
	"github.com/alnah/docsite/internal/fileutil"
	"github.com/alnah/docsite/internal/yamlutil"
)

// AppName names the user config directory (e.g. ~/.config/docsite/).
const AppName = "docsite"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTitleLength   = 200  // Site or section title
	MaxDomainLength  = 253  // RFC 1035
	MaxRouteLength   = 100  // "/docs/"
	MaxPathLength    = 4096 // PATH_MAX
	MaxURLLength     = 2048 // Browser limit
	MaxRepoLength    = 200  // "owner/name"
	MaxNameLength    = 100  // Contributor, author, branch, asset names
	MaxEmailLength   = 254  // RFC 5321
	MaxMessageLength = 500  // Commit message
	MaxPatternLength = 500  // Regular expressions
	MaxDateLength    = 60   // "auto:MMMM D, YYYY"
	MaxNestingDepth  = 4    // Nested structure sections
)

// Default values.
const (
	DefaultTitle          = "Documentation"
	DefaultDocsRoute      = "/docs/"
	DefaultDocsDir        = "docs"
	DefaultGeneratedDir   = "components-generated"
	DefaultOutputDir      = "dist"
	DefaultRepo           = "trooba/trooba"
	DefaultRemoteTimeout  = "30s"
	DefaultPublishRemote  = "origin"
	DefaultPublishBranch  = "gh-pages"
	DefaultPublishMessage = "Publish documentation"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultStyle          = "default"
	DefaultTemplates      = "default"
	DefaultHighlightStyle = "github"
	DefaultServeAddr      = "localhost:8080"
)

// Config holds all configuration for building a documentation site.
type Config struct {
	Site           SiteConfig          `yaml:"site"`
	Paths          PathsConfig         `yaml:"paths"`
	Remote         RemoteConfig        `yaml:"remote"`
	Structure      []Section           `yaml:"structure"`
	Contributors   map[string][]string `yaml:"contributors"` // document name -> contributor handles
	Patterns       PatternsConfig      `yaml:"patterns"`
	Publish        PublishConfig       `yaml:"publish"`
	Serve          ServeConfig         `yaml:"serve"`
	Log            LogConfig           `yaml:"log"`
	Workers        int                 `yaml:"workers"`        // 0 = auto
	Style          string              `yaml:"style"`          // Site style name or path
	Templates      string              `yaml:"templates"`      // Template set name
	HighlightStyle string              `yaml:"highlightStyle"` // chroma style name
}

// SiteConfig defines site-wide identity and routing.
type SiteConfig struct {
	Title     string `yaml:"title"`
	Domain    string `yaml:"domain"`    // Canonical host, e.g. "trooba.github.io"
	DocsRoute string `yaml:"docsRoute"` // Route serving documentation pages
	BaseDir   string `yaml:"baseDir"`   // Base for virtual template paths (empty = cwd)
	Date      string `yaml:"date"`      // Page footer date: literal, "auto" or "auto:FORMAT"
}

// PathsConfig defines input and output locations.
type PathsConfig struct {
	Docs      []string `yaml:"docs"`      // Local document directories, merged in order
	Generated string   `yaml:"generated"` // Generated component artifacts
	Output    string   `yaml:"output"`    // Static build output
	Assets    string   `yaml:"assets"`    // Custom styles/templates base path (empty = embedded)
}

// RemoteConfig defines externally hosted documents.
type RemoteConfig struct {
	DefaultRepo string           `yaml:"defaultRepo"` // Repo for local documents' edit links
	Timeout     string           `yaml:"timeout"`     // Per-request timeout, e.g. "30s"
	Documents   []RemoteDocument `yaml:"documents"`
}

// TimeoutDuration returns the parsed timeout, or zero when unset.
// Validate guarantees the value parses.
func (r RemoteConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(r.Timeout)
	return d
}

// RemoteDocument is one document fetched over HTTP at startup.
type RemoteDocument struct {
	URL          string `yaml:"url"`
	DocumentName string `yaml:"documentName"` // e.g. "color-picker.md"
	Repo         string `yaml:"repo"`         // "owner/name"
	RepoFilePath string `yaml:"repoFilePath"` // e.g. "README.md"
}

// PatternsConfig overrides the Markdown rewrite patterns.
type PatternsConfig struct {
	DocLink    string `yaml:"docLink"`
	Invocation string `yaml:"invocation"`
}

// PublishConfig defines how the build is pushed to its hosting branch.
type PublishConfig struct {
	Remote      string `yaml:"remote"` // Remote name or URL
	Branch      string `yaml:"branch"`
	CNAME       string `yaml:"cname"`
	Message     string `yaml:"message"`
	AuthorName  string `yaml:"authorName"`
	AuthorEmail string `yaml:"authorEmail"`
}

// ServeConfig defines the development server.
type ServeConfig struct {
	Addr  string `yaml:"addr"`
	Watch bool   `yaml:"watch"`
}

// LogConfig defines structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Validate checks field values and lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	for i := range c.Structure {
		if err := c.Structure[i].validate(fmt.Sprintf("structure[%d]", i), 1); err != nil {
			return err
		}
	}
	for doc, people := range c.Contributors {
		for i, p := range people {
			if err := validateFieldLength(fmt.Sprintf("contributors.%s[%d]", doc, i), p, MaxNameLength); err != nil {
				return err
			}
		}
	}
	if err := validatePattern("patterns.docLink", c.Patterns.DocLink, 0); err != nil {
		return err
	}
	if err := validatePattern("patterns.invocation", c.Patterns.Invocation, 1); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers: must be >= 0, got %d", ErrInvalidField, c.Workers)
	}
	if err := validateFieldLength("style", c.Style, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("templates", c.Templates, MaxNameLength); err != nil {
		return err
	}
	return validateFieldLength("highlightStyle", c.HighlightStyle, MaxNameLength)
}

func (c *Config) validateSite() error {
	if err := validateFieldLength("site.title", c.Site.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.domain", c.Site.Domain, MaxDomainLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Site.Domain, "/: ") {
		return fmt.Errorf("%w: site.domain: host only, got %q", ErrInvalidField, c.Site.Domain)
	}
	if err := validateFieldLength("site.docsRoute", c.Site.DocsRoute, MaxRouteLength); err != nil {
		return err
	}
	if c.Site.DocsRoute != "" && (!strings.HasPrefix(c.Site.DocsRoute, "/") || !strings.HasSuffix(c.Site.DocsRoute, "/")) {
		return fmt.Errorf("%w: site.docsRoute: must start and end with \"/\", got %q", ErrInvalidField, c.Site.DocsRoute)
	}
	if err := validateFieldLength("site.baseDir", c.Site.BaseDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.date", c.Site.Date, MaxDateLength); err != nil {
		return err
	}
	if c.Site.Date != "" {
		if _, err := dateutil.ResolveDate(c.Site.Date, time.Now()); err != nil {
			return fmt.Errorf("site.date: %w", err)
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	for i, dir := range c.Paths.Docs {
		if dir == "" {
			return fmt.Errorf("%w: paths.docs[%d]: empty path", ErrInvalidField, i)
		}
		if err := validateFieldLength(fmt.Sprintf("paths.docs[%d]", i), dir, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("paths.generated", c.Paths.Generated, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("paths.output", c.Paths.Output, MaxPathLength); err != nil {
		return err
	}
	return validateFieldLength("paths.assets", c.Paths.Assets, MaxPathLength)
}

func (c *Config) validateRemote() error {
	if err := validateRepo("remote.defaultRepo", c.Remote.DefaultRepo); err != nil {
		return err
	}
	if c.Remote.Timeout != "" {
		d, err := time.ParseDuration(c.Remote.Timeout)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: remote.timeout: %q is not a positive duration", ErrInvalidField, c.Remote.Timeout)
		}
	}

	seen := make(map[string]bool, len(c.Remote.Documents))
	for i, doc := range c.Remote.Documents {
		field := fmt.Sprintf("remote.documents[%d]", i)
		if !fileutil.IsURL(doc.URL) {
			return fmt.Errorf("%w: %s.url: must be an http(s) URL, got %q", ErrInvalidField, field, doc.URL)
		}
		if err := validateFieldLength(field+".url", doc.URL, MaxURLLength); err != nil {
			return err
		}
		if !strings.HasSuffix(doc.DocumentName, ".md") || strings.ContainsAny(doc.DocumentName, "/\\") {
			return fmt.Errorf("%w: %s.documentName: must be a file name ending in .md, got %q",
				ErrInvalidField, field, doc.DocumentName)
		}
		if seen[doc.DocumentName] {
			return fmt.Errorf("%w: %s.documentName: duplicate %q", ErrInvalidField, field, doc.DocumentName)
		}
		seen[doc.DocumentName] = true
		if err := validateRepo(field+".repo", doc.Repo); err != nil {
			return err
		}
		if err := validateFieldLength(field+".repoFilePath", doc.RepoFilePath, MaxPathLength); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validatePublish() error {
	p := c.Publish
	if err := validateFieldLength("publish.remote", p.Remote, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("publish.branch", p.Branch, MaxNameLength); err != nil {
		return err
	}
	if strings.ContainsAny(p.Branch, " ~^:?*[\\") {
		return fmt.Errorf("%w: publish.branch: invalid branch name %q", ErrInvalidField, p.Branch)
	}
	if err := validateFieldLength("publish.cname", p.CNAME, MaxDomainLength); err != nil {
		return err
	}
	if err := validateFieldLength("publish.message", p.Message, MaxMessageLength); err != nil {
		return err
	}
	if err := validateFieldLength("publish.authorName", p.AuthorName, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("publish.authorEmail", p.AuthorEmail, MaxEmailLength); err != nil {
		return err
	}
	if p.AuthorEmail != "" && !strings.Contains(p.AuthorEmail, "@") {
		return fmt.Errorf("%w: publish.authorEmail: %q", ErrInvalidField, p.AuthorEmail)
	}
	return nil
}

func (c *Config) validateLog() error {
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level: %q (must be debug, info, warn, or error)", ErrInvalidField, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format: %q (must be text or json)", ErrInvalidField, c.Log.Format)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateRepo accepts an empty value or "owner/name".
func validateRepo(fieldName, repo string) error {
	if repo == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, repo, MaxRepoLength); err != nil {
		return err
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %s: must be \"owner/name\", got %q", ErrInvalidField, fieldName, repo)
	}
	return nil
}

// validatePattern compiles a non-empty pattern and checks its capture groups.
func validatePattern(fieldName, pattern string, minGroups int) error {
	if pattern == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, pattern, MaxPatternLength); err != nil {
		return err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidField, fieldName, err)
	}
	if re.NumSubexp() < minGroups {
		return fmt.Errorf("%w: %s: needs at least %d capture group(s)", ErrInvalidField, fieldName, minGroups)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Title:     DefaultTitle,
			DocsRoute: DefaultDocsRoute,
		},
		Paths: PathsConfig{
			Docs:      []string{DefaultDocsDir},
			Generated: DefaultGeneratedDir,
			Output:    DefaultOutputDir,
		},
		Remote: RemoteConfig{
			DefaultRepo: DefaultRepo,
			Timeout:     DefaultRemoteTimeout,
		},
		Publish: PublishConfig{
			Remote:  DefaultPublishRemote,
			Branch:  DefaultPublishBranch,
			Message: DefaultPublishMessage,
		},
		Serve: ServeConfig{
			Addr:  DefaultServeAddr,
			Watch: true,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Style:          DefaultStyle,
		Templates:      DefaultTemplates,
		HighlightStyle: DefaultHighlightStyle,
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFile(configPath, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files tried for a config name, in order:
// name.yaml and name.yml in the current directory, then in the user
// config directory (e.g. ~/.config/docsite/).
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
