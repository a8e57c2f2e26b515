// Package cli implements the interactive console for the shortener. It
// is a thin presentation layer: every command maps onto a LinkService
// operation, and domain errors become friendly messages rather than
// crashes.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/magaru/shortly/config"
	"github.com/magaru/shortly/internal/app/model"
	"github.com/magaru/shortly/internal/app/service"
	"go.uber.org/zap"
)

const timeFormat = "2006-01-02 15:04:05"

// Console runs an interactive session against the link service.
type Console struct {
	logger       *zap.Logger
	service      *service.LinkService
	domain       string
	defaultLimit int
	ttl          time.Duration
	in           *bufio.Scanner
	out          io.Writer
	openBrowser  func(url string) error
	userID       uuid.UUID
}

// New creates a console reading commands from in and writing to out.
func New(logger *zap.Logger, svc *service.LinkService, cfg *config.Config, in io.Reader, out io.Writer) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		logger:       logger,
		service:      svc,
		domain:       cfg.Shortener.Domain,
		defaultLimit: cfg.Link.DefaultClickLimit,
		ttl:          cfg.Link.TTL(),
		in:           bufio.NewScanner(in),
		out:          out,
		openBrowser:  openInBrowser,
	}
}

// Run starts the session: user bootstrap followed by the command loop.
// It returns when the user exits or input is exhausted.
func (c *Console) Run() error {
	fmt.Fprintln(c.out, "=== Shortly: URL shortener ===")
	fmt.Fprintln(c.out, "Type 'help' for the list of commands.")

	c.bootstrapUser()

	for {
		fmt.Fprint(c.out, "\n> ")
		if !c.in.Scan() {
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		if !c.dispatch(line) {
			return nil
		}
	}
}

func (c *Console) bootstrapUser() {
	fmt.Fprint(c.out, "\nEnter your user ID (or press Enter to create a new one): ")
	var input string
	if c.in.Scan() {
		input = strings.TrimSpace(c.in.Text())
	}

	if input != "" {
		id, err := uuid.Parse(input)
		if err == nil && c.service.UserExists(id) {
			c.userID = id
			fmt.Fprintln(c.out, "Signed in.")
			return
		}
		fmt.Fprintln(c.out, "Unknown or malformed user ID, creating a new account.")
	}

	c.userID = c.service.CreateUser()
	fmt.Fprintf(c.out, "Created a new user.\nYour ID: %s\nKeep it to sign in again later.\n", c.userID)
}

// dispatch handles one command line; it returns false when the session
// should end.
func (c *Console) dispatch(line string) bool {
	fields := strings.Fields(line)
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "help":
		c.printHelp()
	case "create":
		c.handleCreate(args)
	case "open":
		c.handleOpen(args)
	case "list":
		c.handleList()
	case "info":
		c.handleInfo(args)
	case "update":
		c.handleUpdate(args)
	case "delete":
		c.handleDelete(args)
	case "stats":
		c.handleStats()
	case "uuid":
		fmt.Fprintf(c.out, "Your ID: %s\n", c.userID)
	case "cleanup":
		deleted := c.service.CleanupExpired()
		fmt.Fprintf(c.out, "Cleanup finished, removed %d expired link(s).\n", deleted)
	case "exit", "quit":
		fmt.Fprintln(c.out, "Bye!")
		return false
	default:
		fmt.Fprintln(c.out, "Unknown command. Type 'help' for the list of commands.")
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintf(c.out, `
Commands:
  create <URL> [limit]   create a short link (limit defaults to %s)
  open <code>            resolve a short code and open it in the browser
  list                   list your links
  info <code>            show details of a link
  update <code> <limit>  change the click limit (owner only, -1 = unlimited)
  delete <code>          delete a link (owner only)
  stats                  system statistics
  uuid                   print your user ID
  cleanup                remove expired links now
  help                   this help
  exit, quit             leave
`, formatLimit(c.defaultLimit))
}

func (c *Console) handleCreate(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: create <URL> [limit]")
		return
	}

	var limit *int
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(c.out, "Malformed limit, using the default.")
		} else {
			limit = &parsed
		}
	}

	link, err := c.service.CreateLink(args[0], c.userID, limit)
	if err != nil {
		fmt.Fprintf(c.out, "Could not create the link: %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Short link created.\n  code:       %s\n  short url:  %s/%s\n  target:     %s\n  expires:    %s\n  click limit: %s\n",
		link.ShortCode,
		c.domain, link.ShortCode,
		link.OriginalURL,
		link.ExpiresAt.Format(timeFormat),
		formatLimit(link.ClickLimit))
}

func (c *Console) handleOpen(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: open <code>")
		return
	}

	target, err := c.service.Access(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Link unavailable: %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Opening %s\n", target)
	if err := c.openBrowser(target); err != nil {
		c.logger.Warn("failed to open browser", zap.Error(err))
		fmt.Fprintf(c.out, "Could not launch a browser, copy the link instead: %s\n", target)
	}
}

func (c *Console) handleList() {
	links := c.service.LinksByOwner(c.userID)
	if len(links) == 0 {
		fmt.Fprintln(c.out, "You have no links yet.")
		return
	}

	fmt.Fprintf(c.out, "Your links (%d):\n", len(links))
	now := time.Now()
	for _, link := range links {
		fmt.Fprintf(c.out, "  [%s] %s -> %s\n      clicks %d/%s, expires %s\n",
			statusLabel(link, now),
			link.ShortCode,
			truncate(link.OriginalURL, 60),
			link.ClickCount, formatLimit(link.ClickLimit),
			link.ExpiresAt.Format(timeFormat))
	}
}

func (c *Console) handleInfo(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: info <code>")
		return
	}

	link, ok := c.service.Info(args[0])
	if !ok {
		fmt.Fprintln(c.out, "Link not found.")
		return
	}

	ownerLabel := "someone else"
	if link.OwnedBy(c.userID) {
		ownerLabel = "you"
	}
	fmt.Fprintf(c.out, "Link %s\n  short url:  %s/%s\n  target:     %s\n  owner:      %s\n  created:    %s\n  expires:    %s\n  clicks:     %d/%s\n  status:     %s\n",
		link.ShortCode,
		c.domain, link.ShortCode,
		link.OriginalURL,
		ownerLabel,
		link.CreatedAt.Format(timeFormat),
		link.ExpiresAt.Format(timeFormat),
		link.ClickCount, formatLimit(link.ClickLimit),
		statusLabel(link, time.Now()))
}

func (c *Console) handleUpdate(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: update <code> <limit>")
		return
	}

	limit, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(c.out, "Malformed limit: expected an integer or -1 for unlimited.")
		return
	}

	if err := c.service.UpdateClickLimit(args[0], c.userID, limit); err != nil {
		fmt.Fprintf(c.out, "Could not update the link: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Click limit updated: %s\n", formatLimit(limit))
}

func (c *Console) handleDelete(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: delete <code>")
		return
	}

	if err := c.service.Delete(args[0], c.userID); err != nil {
		fmt.Fprintf(c.out, "Could not delete the link: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Link deleted.")
}

func (c *Console) handleStats() {
	users, links := c.service.Statistics()
	fmt.Fprintf(c.out, "Users: %d, links: %d\n", users, links)
	fmt.Fprintf(c.out, "Default TTL: %s, default click limit: %s\n",
		c.ttl, formatLimit(c.defaultLimit))
}

func statusLabel(link *model.Link, now time.Time) string {
	switch {
	case link.Expired(now):
		return "expired"
	case link.LimitReached():
		return "limit reached"
	default:
		return "active"
	}
}

func formatLimit(limit int) string {
	if limit == model.UnlimitedClicks {
		return "unlimited"
	}
	return strconv.Itoa(limit)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// openInBrowser launches the platform browser; best effort only.
func openInBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
