package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"slskseek/api"
	"slskseek/audio"
	"slskseek/cache"
	"slskseek/config"
	"slskseek/db"
	"slskseek/logging"
	"slskseek/slskd"
)

var log = logging.GetLogger()

const (
	pollInterval = time.Second
	pollDeadline = time.Minute
	cacheTTL     = 5 * time.Minute
)

type CLI struct {
	output io.Writer
	client *slskd.Client
	repo   *db.SearchRepository // nil when the history store is unavailable
}

func (c *CLI) Run(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(c.output, "Usage:")
		fmt.Fprintln(c.output, "  search <query> [filter flags]    - Submit a search and print filtered results")
		fmt.Fprintln(c.output, "  searches                         - List searches known to the daemon")
		fmt.Fprintln(c.output, "  state <id>                       - Show the state of a search")
		fmt.Fprintln(c.output, "  responses <id> [filter flags]    - Print a search's responses, filtered")
		fmt.Fprintln(c.output, "  stop <id>                        - Stop an in-progress search")
		fmt.Fprintln(c.output, "  delete <id>                      - Remove a search from the daemon")
		fmt.Fprintln(c.output, "  history                          - Show locally recorded searches")
		fmt.Fprintln(c.output, "  upgrade <file>                   - Search for better copies of a local track")
		fmt.Fprintln(c.output, "  serve                            - Start the HTTP proxy server")
		return fmt.Errorf("no command provided")
	}

	command := args[0]
	switch command {
	case "search":
		if len(args) < 2 {
			return fmt.Errorf("search requires a query")
		}
		cfg, err := parseFilterFlags(args[2:])
		if err != nil {
			return err
		}
		return c.search(args[1], cfg)

	case "searches":
		searches, err := c.client.Searches()
		if err != nil {
			return err
		}
		for _, s := range searches {
			fmt.Fprintf(c.output, "%s  %-12s  %q (%d responses, %d files)\n",
				s.ID, s.State, s.SearchText, s.ResponseCount, s.FileCount)
		}

	case "state":
		if len(args) < 2 {
			return fmt.Errorf("state requires a search id")
		}
		search, err := c.client.State(args[1], false)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.output, "%s  %s  %q (%d responses, %d files)\n",
			search.ID, search.State, search.SearchText, search.ResponseCount, search.FileCount)

	case "responses":
		if len(args) < 2 {
			return fmt.Errorf("responses requires a search id")
		}
		cfg, err := parseFilterFlags(args[2:])
		if err != nil {
			return err
		}
		responses, err := c.client.Responses(args[1])
		if err != nil {
			return err
		}
		c.printResponses(slskd.FilterResponses(responses, cfg))

	case "stop":
		if len(args) < 2 {
			return fmt.Errorf("stop requires a search id")
		}
		if !c.client.Stop(args[1]) {
			return fmt.Errorf("could not stop search %s", args[1])
		}
		fmt.Fprintf(c.output, "Search %s stopped\n", args[1])

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("delete requires a search id")
		}
		if !c.client.Delete(args[1]) {
			return fmt.Errorf("could not delete search %s", args[1])
		}
		if c.repo != nil {
			if err := c.repo.Delete(args[1]); err != nil {
				log.Warn("could not remove search from history", "id", args[1], "err", err)
			}
		}
		fmt.Fprintf(c.output, "Search %s deleted\n", args[1])

	case "history":
		if c.repo == nil {
			return fmt.Errorf("search history is unavailable")
		}
		records, err := c.repo.List(50)
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Fprintf(c.output, "%s  %s  %-12s  %q (%d responses, %d files)\n",
				rec.StartedAt.Format(time.DateTime), rec.ID, rec.State, rec.Query, rec.ResponseCount, rec.FileCount)
		}

	case "upgrade":
		if len(args) < 2 {
			return fmt.Errorf("upgrade requires a path to a local audio file")
		}
		return c.upgrade(args[1])

	case "serve":
		return c.startServer()

	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	return nil
}

// search submits a query, waits for the search to finish, and prints the
// responses that survive the filter.
func (c *CLI) search(query string, cfg slskd.FilterConfig) error {
	search, err := c.client.Search(query, "", slskd.DefaultSearchOptions())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.output, "Searching for: %s (search %s)\n", query, search.ID)

	if c.repo != nil {
		if err := c.repo.Insert(search.ID, query, time.Now()); err != nil {
			log.Warn("could not record search", "id", search.ID, "err", err)
		}
	}

	search, err = c.waitForSearch(search.ID)
	if err != nil {
		return err
	}

	responses, err := c.client.Responses(search.ID)
	if err != nil {
		return err
	}

	if c.repo != nil {
		if err := c.repo.UpdateState(search.ID, string(search.State), search.FileCount, search.ResponseCount); err != nil {
			log.Warn("could not update search history", "id", search.ID, "err", err)
		}
	}

	filtered := slskd.FilterResponses(responses, cfg)
	fmt.Fprintf(c.output, "%d of %d responses matched\n", len(filtered), len(responses))
	c.printResponses(filtered)
	return nil
}

// waitForSearch polls the daemon until the search reaches a terminal state
// or the deadline passes, returning the last descriptor seen.
func (c *CLI) waitForSearch(id string) (slskd.Search, error) {
	deadline := time.Now().Add(pollDeadline)
	for {
		search, err := c.client.State(id, false)
		if err != nil {
			return search, err
		}
		if search.IsComplete || search.State.IsTerminal() {
			return search, nil
		}
		if time.Now().After(deadline) {
			log.Warn("search still running, showing partial results", "id", id, "state", search.State)
			return search, nil
		}
		time.Sleep(pollInterval)
	}
}

// upgrade searches for copies of a local track at the same or better bit
// rate, preferring lossless.
func (c *CLI) upgrade(path string) error {
	info, err := audio.ReadTrackInfo(path)
	if err != nil {
		return err
	}

	exts := []string{"flac"}
	if info.Extension != "flac" {
		exts = append(exts, info.Extension)
	}
	cfg := slskd.FilterConfig{
		MinBitRate:     info.BitRate,
		FileExtensions: exts,
	}

	query := audio.SearchQuery(path)
	fmt.Fprintf(c.output, "Local track: %s (%d kbps, %ds)\n", filepath.Base(path), info.BitRate, info.DurationSeconds)
	return c.search(query, cfg)
}

func (c *CLI) printResponses(responses []slskd.SearchResponse) {
	for _, r := range responses {
		slot := "no free slot"
		if r.HasFreeUploadSlot {
			slot = "free slot"
		}
		fmt.Fprintf(c.output, "%s (%s, queue %d, %d B/s)\n", r.Username, slot, r.QueueLength, r.UploadSpeed)
		for _, f := range r.Files {
			fmt.Fprintf(c.output, "  %s  %d bytes", f.Filename, f.Size)
			if f.BitRate > 0 {
				fmt.Fprintf(c.output, "  %d kbps", f.BitRate)
			}
			if f.Length > 0 {
				fmt.Fprintf(c.output, "  %ds", f.Length)
			}
			fmt.Fprintln(c.output)
		}
	}
}

// parseFilterFlags maps command-line flags onto a FilterConfig.
func parseFilterFlags(args []string) (slskd.FilterConfig, error) {
	var cfg slskd.FilterConfig
	var exts string

	fs := flag.NewFlagSet("filters", flag.ContinueOnError)
	fs.IntVar(&cfg.MinBitRate, "min-bitrate", 0, "minimum bit rate in kbps")
	fs.Int64Var(&cfg.MinSize, "min-size", 0, "minimum file size in bytes")
	fs.IntVar(&cfg.MinLength, "min-length", 0, "minimum track length in seconds")
	fs.IntVar(&cfg.MaxQueueLength, "max-queue", 0, "maximum peer queue length")
	fs.IntVar(&cfg.MinUploadSpeed, "min-speed", 0, "minimum peer upload speed in bytes/s")
	fs.BoolVar(&cfg.HasFreeSlot, "free-slot", false, "require a free upload slot")
	fs.StringVar(&exts, "ext", "", "comma-separated list of allowed file extensions")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if exts != "" {
		for _, ext := range strings.Split(exts, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				cfg.FileExtensions = append(cfg.FileExtensions, ext)
			}
		}
	}
	return cfg, nil
}

func (c *CLI) startServer() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.REDIS_URI,
		Password: config.REDIS_PASSWORD,
		DB:       config.REDIS_DB,
	})
	responseCache := cache.NewResponseCache(rdb, cacheTTL)

	handler := api.NewHandler(c.client, responseCache, log)

	fmt.Fprintf(c.output, "Starting HTTP server on %s\n", config.HTTP_ADDR)
	return http.ListenAndServe(config.HTTP_ADDR, handler.Routes())
}

func main() {
	client := slskd.NewClient(config.ApiURL(), config.SLSKD_API_KEY, log)

	var repo *db.SearchRepository
	database, err := db.NewSqliteDB(config.DB_PATH)
	if err != nil {
		log.Warn("search history disabled", "err", err)
	} else {
		defer database.Close()
		repo = db.NewSearchRepository(database)
	}

	cli := &CLI{
		output: os.Stdout,
		client: client,
		repo:   repo,
	}

	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
