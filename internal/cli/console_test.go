package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/magaru/shortly/config"
	"github.com/magaru/shortly/internal/app/repository"
	"github.com/magaru/shortly/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Link.TTLSeconds = 3600
	cfg.Link.DefaultClickLimit = 100
	cfg.Shortener.CodeLength = 6
	cfg.Shortener.Domain = "short.ly"
	return cfg
}

func newTestService() *service.LinkService {
	return service.NewLinkService(service.LinkServiceOptions{
		Users:             repository.NewUserRepository(),
		Links:             repository.NewLinkRepository(),
		Codes:             service.NewShortCodeGenerator(6),
		LinkTTL:           time.Hour,
		DefaultClickLimit: 100,
	})
}

// runScript feeds the given lines to a console session and returns the
// produced output.
func runScript(t *testing.T, svc *service.LinkService, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	console := New(nil, svc, testConfig(), strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	console.openBrowser = func(string) error { return nil }
	require.NoError(t, console.Run())
	return out.String()
}

func TestConsole_CreateAndList(t *testing.T) {
	svc := newTestService()

	out := runScript(t, svc,
		"", // bootstrap: create a new user
		"create https://example.com 2",
		"list",
		"exit",
	)

	assert.Contains(t, out, "Created a new user.")
	assert.Contains(t, out, "short.ly/")
	assert.Contains(t, out, "clicks 0/2")
	assert.Contains(t, out, "Bye!")
}

func TestConsole_SignInWithExistingUser(t *testing.T) {
	svc := newTestService()
	id := svc.CreateUser()

	out := runScript(t, svc, id.String(), "uuid", "exit")

	assert.Contains(t, out, "Signed in.")
	assert.Contains(t, out, id.String())
}

func TestConsole_ErrorsAreMessagesNotCrashes(t *testing.T) {
	svc := newTestService()

	out := runScript(t, svc,
		"",
		"create not-a-url",
		"open nosuch",
		"update nosuch 5",
		"delete nosuch",
		"frobnicate",
		"exit",
	)

	assert.Contains(t, out, "Could not create the link")
	assert.Contains(t, out, "Link unavailable")
	assert.Contains(t, out, "Could not update the link")
	assert.Contains(t, out, "Could not delete the link")
	assert.Contains(t, out, "Unknown command")
}

func TestConsole_OpenCountsClick(t *testing.T) {
	svc := newTestService()
	owner := svc.CreateUser()
	link, err := svc.CreateLink("https://example.com", owner, nil)
	require.NoError(t, err)

	var opened []string
	var out bytes.Buffer
	console := New(nil, svc, testConfig(), strings.NewReader("\nopen "+link.ShortCode+"\nexit\n"), &out)
	console.openBrowser = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	require.NoError(t, console.Run())

	assert.Equal(t, []string{"https://example.com"}, opened)
	info, ok := svc.Info(link.ShortCode)
	require.True(t, ok)
	assert.Equal(t, 1, info.ClickCount)
}

func TestConsole_Stats(t *testing.T) {
	svc := newTestService()

	out := runScript(t, svc, "", "stats", "exit")
	assert.Contains(t, out, "Users: 1, links: 0")
}
