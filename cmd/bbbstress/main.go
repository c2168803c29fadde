// bbbstress loads a BigBlueButton server with synthetic participants driven
// through real browser sessions.
//
// Usage:
//
//	go run ./cmd/bbbstress -server https://bbb.example.com -secret <api secret> \
//	    -meeting demo -cameras 2 -microphones 5 -listeners 20 -duration 10m
//
// Participants ramp up one at a time in a fixed order (camera, microphone,
// listen-only), the meeting is held for -duration, then the shared browser
// is shut down.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"bbbstress/pkg/bbb"
	"bbbstress/pkg/browser"
	"bbbstress/pkg/join"
	"bbbstress/pkg/loadtest"
)

func main() {
	server := flag.String("server", "", "BigBlueButton server URL (required)")
	secret := flag.String("secret", "", "BigBlueButton shared API secret (required)")
	meeting := flag.String("meeting", "loadtest", "meeting ID to join")
	cameras := flag.Int("cameras", 0, "number of webcam-sharing participants")
	microphones := flag.Int("microphones", 0, "number of microphone-only participants")
	listeners := flag.Int("listeners", 0, "number of listen-only participants")
	duration := flag.Duration("duration", time.Minute, "how long to hold the meeting after ramp-up")
	concurrency := flag.Int("concurrency", 1, "join attempts in flight at once")
	headless := flag.Bool("headless", true, "run Chrome headless")
	create := flag.Bool("create", false, "create the meeting before joining")
	prefix := flag.String("name-prefix", "loadtest", "participant name prefix")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	setLogLevel(*logLevel)

	if *server == "" || *secret == "" {
		log.Fatalf("-server and -secret are required")
	}
	if *cameras < 0 || *microphones < 0 || *listeners < 0 {
		log.Fatalf("participant counts must not be negative")
	}
	counts := loadtest.Counts{
		Camera:     *cameras,
		Microphone: *microphones,
		ListenOnly: *listeners,
	}
	if counts.Total() == 0 {
		log.Fatalf("at least one participant is required")
	}

	gateway, err := bbb.NewClient(*server, *secret)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if *create {
		if _, err := gateway.CreateMeeting(ctx, *meeting, ""); err != nil {
			log.Fatalf("create meeting: %v", err)
		}
	}

	fmt.Printf("BBB Load Test\n")
	fmt.Printf("=============\n")
	fmt.Printf("Server:   %s\n", *server)
	fmt.Printf("Meeting:  %s\n", *meeting)
	fmt.Printf("Clients:  %d camera / %d microphone / %d listen-only\n",
		counts.Camera, counts.Microphone, counts.ListenOnly)
	fmt.Printf("Duration: %v\n", *duration)
	fmt.Printf("\n")

	runner := &loadtest.Runner{
		Gateway: gateway,
		Launch: func(context.Context) (loadtest.Session, error) {
			cfg := browser.DefaultConfig()
			cfg.Headless = *headless
			return browser.Launch(cfg)
		},
		Joiner: func(s loadtest.Session) loadtest.Joiner {
			return join.NewClient(s.(*browser.Session))
		},
		Pacing: loadtest.Pacing{Concurrency: *concurrency},
	}

	run, err := runner.Run(ctx, loadtest.Spec{
		MeetingID:  *meeting,
		Duration:   *duration,
		Counts:     counts,
		NamePrefix: *prefix,
	})
	if err != nil {
		log.Fatal(err)
	}

	printSummary(run)
}

func printSummary(run *loadtest.TestRun) {
	fmt.Printf("\nRun complete\n")
	fmt.Printf("============\n")
	fmt.Printf("Joined:  %d/%d\n", run.Succeeded(), len(run.Roster))
	fmt.Printf("Elapsed: %v\n", run.EndedAt.Sub(run.StartedAt).Round(time.Second))
	for _, o := range run.Outcomes {
		if !o.Succeeded {
			fmt.Printf("  FAILED %s: %s\n", o.Participant.Identity, o.FailureReason)
		}
	}
	if run.Succeeded() < len(run.Roster) {
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	var verbosity log.Lvl
	switch strings.ToLower(level) {
	case "debug":
		verbosity = log.DEBUG
	case "info":
		verbosity = log.INFO
	case "warn":
		verbosity = log.WARN
	case "error":
		fallthrough
	default:
		verbosity = log.ERROR
	}
	log.SetLevel(verbosity)
	log.SetHeader("(${short_file}:${line}) ${time_rfc3339} ${level}: ")
}
