package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vectorlog/internal/config"
	"vectorlog/internal/node"
	"vectorlog/internal/storage"
	"vectorlog/internal/vlog"
)

const syncTimeout = 5 * time.Second

const logUsage = `usage: vlog <command> [flags] [content]

commands:
  init                       create a log holding only the root entry
  append -p P CONTENT        stamp and append CONTENT for P
  list                       print entries in append order
  verify                     check the causal stamping of every entry
  sync -peer ID|ADDR         ask a peer node to sync (not implemented)

flags (all commands):
  -config FILE   YAML config supplying defaults
  -dir DIR       data directory
  -log NAME      log name
`

type logOptions struct {
	cfg         *config.Config
	participant string
	peer        string
	store       storage.Store
	logger      zerolog.Logger
}

// RunLog runs the vlog tool.
func RunLog(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, logUsage)
		return exitUsage
	}
	cmd := args[0]

	fs := flag.NewFlagSet("vlog "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	dir := fs.String("dir", "", "data directory")
	logName := fs.String("log", "", "log name")
	participant := fs.String("p", "", "participant ID")
	peer := fs.String("peer", "", "peer ID or address")
	if err := fs.Parse(args[1:]); err != nil {
		return exitUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "vlog: %v\n", err)
			return exitUsage
		}
		cfg = loaded
	}
	if *dir != "" {
		cfg.DataDir = *dir
	}
	if *logName != "" {
		cfg.LogName = *logName
	}
	if *participant == "" {
		*participant = cfg.ParticipantID
	}

	level, err := cfg.ZerologLevel()
	if err != nil {
		fmt.Fprintf(stderr, "vlog: %v\n", err)
		return exitUsage
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		Level(level).With().Timestamp().Logger()

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(stderr, "vlog: %v\n", err)
		return exitUsage
	}

	opts := logOptions{
		cfg:         cfg,
		participant: *participant,
		peer:        *peer,
		store:       store,
		logger:      logger,
	}
	if err := runLogCommand(cmd, opts, fs.Args(), stdout); err != nil {
		fmt.Fprintf(stderr, "vlog %s: %v\n", cmd, err)
		if errors.Is(err, errLogInvalid) {
			return exitFalse
		}
		return exitUsage
	}
	return exitOK
}

var errLogInvalid = errors.New("log invalid")

func runLogCommand(cmd string, opts logOptions, args []string, stdout io.Writer) error {
	name := opts.cfg.LogName

	switch cmd {
	case "init":
		_, err := opts.store.Load(name)
		if err == nil {
			return fmt.Errorf("log %s already exists", name)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if err := opts.store.Save(name, vlog.New()); err != nil {
			return err
		}
		opts.logger.Info().Str("log", name).Str("dir", opts.cfg.DataDir).Msg("created log")
		return nil

	case "append":
		if len(args) == 0 {
			return errors.New("expected content")
		}
		l, err := opts.store.Load(name)
		if err != nil {
			return err
		}
		entry, err := l.Append(opts.participant, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := opts.store.Save(name, l); err != nil {
			return err
		}
		opts.logger.Debug().Str("writer", entry.Writer).Stringer("clock", entry.Clock).Msg("appended entry")
		return nil

	case "list":
		l, err := opts.store.Load(name)
		if err != nil {
			return err
		}
		for _, e := range l.Entries() {
			fmt.Fprintln(stdout, FormatEntry(e))
		}
		return nil

	case "verify":
		l, err := opts.store.Load(name)
		if err != nil {
			return fmt.Errorf("%w: %v", errLogInvalid, err)
		}
		fmt.Fprintf(stdout, "ok: %d entries\n", l.Len())
		return nil

	case "sync":
		return syncWithPeer(opts)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func syncWithPeer(opts logOptions) error {
	if opts.peer == "" {
		return errors.New("expected -peer")
	}
	addr := opts.peer
	if p, ok := opts.cfg.Peer(opts.peer); ok {
		addr = p.Addr
	}

	client, err := node.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	opts.logger.Info().Str("peer", addr).Msg("requesting sync")
	return client.Sync(ctx, opts.participant)
}

// FormatEntry renders an entry as "<a=1,b=2> writer:: content". The root
// entry's writer is shown as "-".
func FormatEntry(e vlog.Entry) string {
	parts := make([]string, 0, e.Clock.Len())
	for _, p := range e.Clock.Participants() {
		c, _ := e.Clock.Get(p)
		parts = append(parts, fmt.Sprintf("%s=%d", p, c))
	}
	writer := e.Writer
	if e.IsRoot() {
		writer = "-"
	}
	return fmt.Sprintf("<%s> %s:: %s", strings.Join(parts, ","), writer, e.Content)
}
