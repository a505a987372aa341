package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
)

func TestTitleFromFilename(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Openbsd Router Setup", TitleFromFilename("openbsd-router_setup.md"))
	require.Equal(t, "Wireguard Vpn", TitleFromFilename("WireGuard-VPN.md"))
	require.Equal(t, "2024Recap", TitleFromFilename("2024recap.md"))
}

func TestSlug(t *testing.T) {
	t.Parallel()
	require.Equal(t, "openbsd-router-setup", Slug("OpenBSD Router -- Setup.md"))
	require.Equal(t, "whats-new", Slug("-What's new!-.md"))
}

func TestDescription(t *testing.T) {
	t.Parallel()

	content := "# Heading\n\nShort one.\n\nThis is the **first** real paragraph\nspanning   two lines with `code`.\n\nSecond paragraph."
	require.Equal(t, "This is the first real paragraph spanning two lines with code.", Description(content))

	long := strings.Repeat("word ", 60)
	desc := Description(long)
	require.True(t, strings.HasSuffix(desc, "..."))
	require.Len(t, []rune(desc), 203)

	require.Equal(t, defaultDescription, Description("# Only a heading\n\nshort"))
}

func TestTags(t *testing.T) {
	t.Parallel()
	c := NewConverter("", "")

	tags := c.Tags("A guide to WireGuard and a firewall on OpenBSD. Design notes included.")
	require.Equal(t, []string{
		"architecture", "bsd", "firewall", "networking", "openbsd",
		"security", "tutorial", "unix", "vpn", "wireguard",
	}, tags)

	require.Empty(t, c.Tags("Nothing relevant here."))
}

func TestIsDraft(t *testing.T) {
	t.Parallel()
	require.True(t, IsDraft("Title\n\n#draft\nbody"))
	require.True(t, IsDraft("# DRAFT\nbody"))
	require.False(t, IsDraft("1\n2\n3\n4\n5\n# DRAFT"))
	require.False(t, IsDraft("No marker at all"))
}

func TestConvertAll(t *testing.T) {
	t.Parallel()
	raw := t.TempDir()
	out := filepath.Join(t.TempDir(), "content")

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(raw, name), []byte(content), 0644))
	}
	write("ssh-hardening.md", "# SSH\n\nKey only logins and rate limits for ssh on the firewall.\n")
	write("empty.md", "   \n")
	write("wip.md", "# DRAFT\n\nNot ready yet, still writing this one up.")
	write("notes.txt", "ignored")

	c := NewConverter(raw, out)
	c.Now = func() time.Time { return time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC) }

	report, err := c.ConvertAll()
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	require.Equal(t, 1, report.Count(StatusConverted))
	require.Equal(t, 1, report.Count(StatusSkippedEmpty))
	require.Equal(t, 1, report.Count(StatusSkippedDraft))

	data, err := os.ReadFile(filepath.Join(out, "ssh-hardening.md"))
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasPrefix(text, "+++\n"))
	require.True(t, strings.HasSuffix(text, "# SSH\n\nKey only logins and rate limits for ssh on the firewall.\n"))

	parts := strings.SplitN(text, "+++\n", 3)
	require.Len(t, parts, 3)
	var fm FrontMatter
	require.NoError(t, toml.Unmarshal([]byte(parts[1]), &fm))
	require.Equal(t, FrontMatter{
		Title:       "Ssh Hardening",
		Date:        "2025-03-14",
		Description: "Key only logins and rate limits for ssh on the firewall.",
		Tags:        []string{"firewall", "networking", "security", "ssh"},
		Categories:  []string{"technical"},
	}, fm)

	_, err = os.Stat(filepath.Join(out, "wip.md"))
	require.True(t, os.IsNotExist(err))
}

func TestConvertFileMissing(t *testing.T) {
	t.Parallel()
	c := NewConverter(t.TempDir(), t.TempDir())
	res, err := c.ConvertFile("absent.md")
	require.NoError(t, err)
	require.Equal(t, StatusMissing, res.Status)
}

func TestConvertAllMissingRawDir(t *testing.T) {
	t.Parallel()
	c := NewConverter(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	_, err := c.ConvertAll()
	require.Error(t, err)
}
