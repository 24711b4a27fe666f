package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"vectorlog/internal/clock"
	"vectorlog/internal/order"
)

const (
	exitOK    = 0
	exitFalse = 1
	exitUsage = 2
)

var errNoParticipant = errors.New("participant unset (use -p)")

const clockUsage = `usage: vclock <command> [-p participant] [stamp...]

commands:
  init -p P                  new clock with one event for P
  increment -p P STAMP       add one event for P
  sync -p P STAMP...         join all stamps, then add one event for P
  list STAMP                 print participant counters
  orderable STAMP...         exit 0 if the stamps sort into a causal chain
  increasing STAMP...        exit 0 if the stamps are increasing as given
`

// RunClock runs the vclock tool.
func RunClock(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, clockUsage)
		return exitUsage
	}
	cmd := args[0]

	fs := flag.NewFlagSet("vclock "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	participant := fs.String("p", "", "participant ID")
	if err := fs.Parse(args[1:]); err != nil {
		return exitUsage
	}

	stamps, err := decodeStamps(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "vclock: %v\n", err)
		return exitUsage
	}

	code, err := runClockCommand(cmd, *participant, stamps, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "vclock %s: %v\n", cmd, err)
		return exitUsage
	}
	return code
}

func runClockCommand(cmd, participant string, stamps []clock.VectorClock, stdout, stderr io.Writer) (int, error) {
	switch cmd {
	case "init":
		if participant == "" {
			return exitUsage, errNoParticipant
		}
		return exitOK, printStamp(stdout, clock.New().Increment(participant))

	case "increment":
		if participant == "" {
			return exitUsage, errNoParticipant
		}
		if len(stamps) != 1 {
			return exitUsage, fmt.Errorf("expected 1 stamp, got %d", len(stamps))
		}
		return exitOK, printStamp(stdout, stamps[0].Increment(participant))

	case "sync":
		if participant == "" {
			return exitUsage, errNoParticipant
		}
		if len(stamps) == 0 {
			return exitUsage, errors.New("expected at least 1 stamp")
		}
		joined := stamps[0]
		for _, c := range stamps[1:] {
			joined = joined.Join(c)
		}
		return exitOK, printStamp(stdout, joined.Increment(participant))

	case "list":
		if len(stamps) != 1 {
			return exitUsage, fmt.Errorf("expected 1 stamp, got %d", len(stamps))
		}
		for _, p := range stamps[0].Participants() {
			c, _ := stamps[0].Get(p)
			fmt.Fprintf(stdout, "%s :: %d\n", p, c)
		}
		return exitOK, nil

	case "orderable", "orderable?":
		if !order.IsOrderable(stamps) {
			return exitFalse, nil
		}
		return exitOK, nil

	case "increasing", "increasing?":
		if i := order.FirstViolation(stamps); i >= 0 {
			fmt.Fprintf(stderr, "stamp %d %v is not <= stamp %d %v\n", i, stamps[i], i+1, stamps[i+1])
			return exitFalse, nil
		}
		return exitOK, nil

	default:
		return exitUsage, fmt.Errorf("unknown command %q", cmd)
	}
}

func decodeStamps(args []string) ([]clock.VectorClock, error) {
	stamps := make([]clock.VectorClock, len(args))
	for i, arg := range args {
		c, err := clock.DecodeStamp(arg)
		if err != nil {
			return nil, fmt.Errorf("stamp %d: %w", i, err)
		}
		stamps[i] = c
	}
	return stamps, nil
}

func printStamp(w io.Writer, c clock.VectorClock) error {
	stamp, err := clock.EncodeStamp(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, stamp)
	return err
}
