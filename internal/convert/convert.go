// Package convert turns raw markdown posts into Zola content files with
// TOML front matter.
package convert

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

const defaultDescription = "Technical blog post about networking and system administration."

var (
	draftMarker     = regexp.MustCompile(`(?i)#\s*DRAFT`)
	markdownMarks   = regexp.MustCompile("[#*`]")
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	slugForbidden   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSeparators  = regexp.MustCompile(`[\s-]+`)
	titleSeparators = regexp.MustCompile(`[-_]`)
)

// DefaultTagMapping maps a keyword found in a post to the tags it implies
func DefaultTagMapping() map[string][]string {
	return map[string][]string{
		"openbsd":   {"openbsd", "bsd", "unix"},
		"freebsd":   {"freebsd", "bsd", "unix"},
		"wireguard": {"wireguard", "vpn", "networking"},
		"docker":    {"docker", "containers", "devops"},
		"dns":       {"dns", "networking"},
		"dhcp":      {"dhcp", "networking"},
		"firewall":  {"firewall", "security", "networking"},
		"iptables":  {"iptables", "firewall", "networking"},
		"vpn":       {"vpn", "networking", "security"},
		"vps":       {"vps", "hosting", "cloud"},
		"ssh":       {"ssh", "security"},
		"nginx":     {"nginx", "web-server"},
		"apache":    {"apache", "web-server"},
		"lxc":       {"lxc", "containers"},
		"samba":     {"samba", "file-sharing"},
		"nat":       {"nat", "networking"},
		"vlan":      {"vlan", "networking"},
		"tunnel":    {"tunnel", "networking"},
		"debugging": {"debugging", "troubleshooting"},
		"backup":    {"backup", "storage"},
		"ubuntu":    {"ubuntu", "linux"},
		"nixos":     {"nixos", "linux"},
	}
}

// Status is the outcome for a single file
type Status string

const (
	StatusConverted    Status = "converted"
	StatusSkippedEmpty Status = "skipped-empty"
	StatusSkippedDraft Status = "skipped-draft"
	StatusMissing      Status = "missing"
)

// Result describes what happened to one file
type Result struct {
	File   string
	Status Status
	Title  string
	Slug   string
	Tags   []string
}

// Report summarizes a ConvertAll run
type Report struct {
	Results []Result
}

// Count returns how many files ended with status
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// FrontMatter is the TOML header of a converted post
type FrontMatter struct {
	Title       string   `toml:"title"`
	Date        string   `toml:"date"`
	Description string   `toml:"description"`
	Tags        []string `toml:"tags"`
	Categories  []string `toml:"categories"`
}

// Converter converts raw posts from RawDir into OutputDir
type Converter struct {
	RawDir     string
	OutputDir  string
	TagMapping map[string][]string
	Now        func() time.Time
}

// NewConverter creates a converter with the default tag mapping
func NewConverter(rawDir, outputDir string) *Converter {
	return &Converter{
		RawDir:     rawDir,
		OutputDir:  outputDir,
		TagMapping: DefaultTagMapping(),
		Now:        time.Now,
	}
}

// ConvertAll converts every .md file in RawDir
func (c *Converter) ConvertAll() (*Report, error) {
	if _, err := os.Stat(c.RawDir); err != nil {
		return nil, fmt.Errorf("raw directory not found: %w", err)
	}
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(c.RawDir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to list raw posts: %w", err)
	}
	sort.Strings(files)
	log.Printf("Found %d files to convert in %s", len(files), c.RawDir)

	report := &Report{}
	for _, path := range files {
		res, err := c.ConvertFile(filepath.Base(path))
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// ConvertFile converts a single file from RawDir
func (c *Converter) ConvertFile(name string) (Result, error) {
	res := Result{File: name}
	input := filepath.Join(c.RawDir, name)

	data, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: %s not found", input)
			res.Status = StatusMissing
			return res, nil
		}
		return res, fmt.Errorf("failed to read %s: %w", input, err)
	}
	content := string(data)

	if strings.TrimSpace(content) == "" {
		log.Printf("Skipping empty file: %s", name)
		res.Status = StatusSkippedEmpty
		return res, nil
	}
	if IsDraft(content) {
		log.Printf("Skipping draft file: %s", name)
		res.Status = StatusSkippedDraft
		return res, nil
	}

	fm := c.FrontMatter(name, content)
	header, err := toml.Marshal(fm)
	if err != nil {
		return res, fmt.Errorf("failed to encode front matter for %s: %w", name, err)
	}

	var out bytes.Buffer
	out.WriteString("+++\n")
	out.Write(bytes.TrimRight(header, "\n"))
	out.WriteString("\n+++\n\n")
	out.WriteString(strings.TrimSpace(content))
	out.WriteString("\n")

	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.OutputDir, name), out.Bytes(), 0644); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", name, err)
	}
	log.Printf("Converted: %s", name)

	res.Status = StatusConverted
	res.Title = fm.Title
	res.Slug = Slug(name)
	res.Tags = fm.Tags
	return res, nil
}

// FrontMatter derives the front matter for a post
func (c *Converter) FrontMatter(name, content string) FrontMatter {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return FrontMatter{
		Title:       TitleFromFilename(name),
		Date:        now().Format("2006-01-02"),
		Description: Description(content),
		Tags:        c.Tags(content),
		Categories:  []string{"technical"},
	}
}

// Tags returns the sorted tags implied by the content
func (c *Converter) Tags(content string) []string {
	lower := strings.ToLower(content)
	set := make(map[string]struct{})

	for keyword, tags := range c.TagMapping {
		if strings.Contains(lower, keyword) {
			for _, tag := range tags {
				set[tag] = struct{}{}
			}
		}
	}
	if containsAny(lower, "tutorial", "setup", "guide") {
		set["tutorial"] = struct{}{}
	}
	if containsAny(lower, "debug", "troubleshoot") {
		set["debugging"] = struct{}{}
	}
	if containsAny(lower, "architecture", "design") {
		set["architecture"] = struct{}{}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TitleFromFilename turns "my-first_post.md" into "My First Post"
func TitleFromFilename(name string) string {
	title := strings.ReplaceAll(name, ".md", "")
	title = titleSeparators.ReplaceAllString(title, " ")
	return titleCase(title)
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Description returns the first prose paragraph, stripped of markdown
// marks and cut at 200 characters
func Description(content string) string {
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") || len([]rune(para)) <= 20 {
			continue
		}
		desc := markdownMarks.ReplaceAllString(para, "")
		desc = whitespaceRuns.ReplaceAllString(desc, " ")
		if runes := []rune(desc); len(runes) > 200 {
			return string(runes[:200]) + "..."
		}
		return desc
	}
	return defaultDescription
}

// Slug returns a URL-friendly slug for a file name
func Slug(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(name, ".md", ""))
	slug = slugForbidden.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// IsDraft reports whether one of the first five lines carries a DRAFT marker
func IsDraft(content string) bool {
	lines := strings.SplitN(content, "\n", 6)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		if draftMarker.MatchString(line) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
